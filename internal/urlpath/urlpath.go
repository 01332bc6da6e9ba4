// Package urlpath provides the slash-separated path value type used for
// every documentation, browse and include URL in the generated site.
package urlpath

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnrepresentablePath indicates a filesystem path that cannot be expressed
// as a URL path (e.g. a Windows volume prefix or a parent traversal).
var ErrUnrepresentablePath = errors.New("path not representable as url path")

// Path is an ordered sequence of URL segments. Segments are never empty;
// the zero value is the empty path (used by the root namespace, which never
// carries a URL segment).
type Path struct {
	segments []string
}

// New builds a Path from the given segments, dropping empty ones.
func New(segments ...string) Path {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return Path{segments: out}
}

// Parse splits a slash-separated string into a Path. Consecutive, leading and
// trailing slashes collapse; segment order is preserved.
func Parse(raw string) Path {
	return New(strings.Split(raw, "/")...)
}

// FromFilePath converts a filesystem path into a Path. Relative components
// ("..") and volume prefixes have no URL representation.
func FromFilePath(p string) (Path, error) {
	if filepath.VolumeName(p) != "" {
		return Path{}, ErrUnrepresentablePath
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == "." {
		return Path{}, nil
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return Path{}, ErrUnrepresentablePath
		}
	}
	return Parse(clean), nil
}

// Join appends other's segments after p's.
func (p Path) Join(other Path) Path {
	if other.IsEmpty() {
		return p
	}
	segs := make([]string, 0, len(p.segments)+len(other.segments))
	segs = append(segs, p.segments...)
	segs = append(segs, other.segments...)
	return Path{segments: segs}
}

// StripPrefix removes prefix from the front of p. If p does not start with
// prefix, p is returned unchanged.
func (p Path) StripPrefix(prefix Path) Path {
	if len(prefix.segments) > len(p.segments) {
		return p
	}
	for i, seg := range prefix.segments {
		if p.segments[i] != seg {
			return p
		}
	}
	rest := p.segments[len(prefix.segments):]
	segs := make([]string, len(rest))
	copy(segs, rest)
	return Path{segments: segs}
}

// Segments returns a copy of the path's segments in order.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool { return len(p.segments) == 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// First returns the first segment, or "" for the empty path.
func (p Path) First() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[0]
}

// String renders the path as a slash-separated string. Parse(p.String())
// round-trips for any valid path.
func (p Path) String() string {
	return strings.Join(p.segments, "/")
}

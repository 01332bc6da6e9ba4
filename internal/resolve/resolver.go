// Package resolve computes every documentation, browse and include URL for
// tree entities. All queries are pure and read-only; once the tree is
// finalized they may be issued from any goroutine.
package resolve

import (
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/urlpath"
)

// cppreferenceBase is where standard-library entities redirect to; no local
// page is ever generated for them.
const cppreferenceBase = "https://en.cppreference.com/w/cpp"

// Resolver answers URL queries against the finished tree and configuration.
type Resolver struct {
	cfg *config.Config
}

// NewResolver creates a resolver for the given configuration.
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Header returns the entity's defining header path relative to the input
// root (or as-is when outside it). ok is false when the provider knows no
// defining file.
func (r *Resolver) Header(n cppast.Node) (string, bool) {
	file := n.File()
	if file == "" {
		return "", false
	}
	input := strings.TrimSuffix(filepath.ToSlash(r.cfg.InputDir), "/")
	clean := filepath.ToSlash(file)
	if input != "" && input != "." {
		if rel := strings.TrimPrefix(clean, input+"/"); rel != clean {
			return rel, true
		}
	}
	return clean, true
}

// RelativeURL returns the entity's docs URL below the site base:
// <category>/<qualified name segments>. ok is false for entities whose kind
// has no documentation category.
func (r *Resolver) RelativeURL(n cppast.Node) (urlpath.Path, bool) {
	kind, ok := doctree.Classify(n)
	if !ok {
		return urlpath.Path{}, false
	}
	return urlpath.New(kind.CategorySegment()).
		Join(urlpath.New(cppast.QualifiedName(n)...)), true
}

// AbsoluteURL returns the full documentation URL for the entity. Entities
// under the standard-library namespace redirect to cppreference, synthesized
// from the defining header's file name and the entity's simple name;
// everything else joins RelativeURL onto the configured site base.
func (r *Resolver) AbsoluteURL(n cppast.Node) (string, bool) {
	qual := cppast.QualifiedName(n)
	if len(qual) > 0 && qual[0] == cppast.StdNamespace {
		file := n.File()
		name := n.Name()
		if file == "" || name == "" {
			return "", false
		}
		return cppreferenceBase + "/" + path.Base(filepath.ToSlash(file)) + "/" + name, true
	}
	rel, ok := r.RelativeURL(n)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(r.cfg.OutputURL, "/") + "/" + rel.String(), true
}

// BrowseLink is a source-browsing link; ExistsOnline gates whether the link
// should be rendered live.
type BrowseLink struct {
	URL          string
	ExistsOnline bool
}

// BrowseURL resolves the entity's defining header to a source-browsing URL:
// the matched external library's repository root when the header lives in
// one, else the project's own source-tree base joined with the header's path
// relative to the input root. Standard-library entities and headers without
// a configured tree base have no browse link.
func (r *Resolver) BrowseURL(n cppast.Node) (BrowseLink, bool) {
	qual := cppast.QualifiedName(n)
	if len(qual) > 0 && qual[0] == cppast.StdNamespace {
		return BrowseLink{}, false
	}
	if lib := r.externalLib(n); lib != nil {
		return BrowseLink{URL: lib.Repository, ExistsOnline: lib.ExistsOnline}, true
	}
	header, ok := r.Header(n)
	if !ok || r.cfg.Project.Tree == "" {
		return BrowseLink{}, false
	}
	rel, err := urlpath.FromFilePath(header)
	if err != nil {
		return BrowseLink{}, false
	}
	return BrowseLink{URL: r.cfg.Project.Tree + rel.String(), ExistsOnline: true}, true
}

// IncludePath returns the text to render in #include snippets: the bare file
// name for system headers, otherwise the header path relative to its owning
// configured source root.
func (r *Resolver) IncludePath(n cppast.Node) (urlpath.Path, bool) {
	header, ok := r.Header(n)
	if !ok {
		return urlpath.Path{}, false
	}
	if n.InSystemHeader() {
		return urlpath.New(path.Base(header)), true
	}
	src := r.cfg.SourceFor(header)
	if src == nil {
		return urlpath.Path{}, false
	}
	rel, err := urlpath.FromFilePath(header)
	if err != nil {
		return urlpath.Path{}, false
	}
	srcPath, err := urlpath.FromFilePath(src.Dir)
	if err != nil {
		return urlpath.Path{}, false
	}
	return rel.StripPrefix(srcPath), true
}

// ItemRelativeURL returns the docs URL for a tree item. The root namespace
// never carries a URL segment.
func (r *Resolver) ItemRelativeURL(it doctree.Item) (urlpath.Path, bool) {
	if ns, ok := it.(*doctree.Namespace); ok && ns.IsRoot() {
		return urlpath.Path{}, true
	}
	if it.Node() == nil {
		return urlpath.Path{}, false
	}
	return r.RelativeURL(it.Node())
}

// ItemAbsoluteURL returns the full documentation URL for a tree item; the
// root resolves to the site base itself.
func (r *Resolver) ItemAbsoluteURL(it doctree.Item) (string, bool) {
	if ns, ok := it.(*doctree.Namespace); ok && ns.IsRoot() {
		return strings.TrimSuffix(r.cfg.OutputURL, "/"), true
	}
	if it.Node() == nil {
		return "", false
	}
	return r.AbsoluteURL(it.Node())
}

// externalLib returns the configured external library owning the entity's
// defining header, if the entity sits in a system header at all.
func (r *Resolver) externalLib(n cppast.Node) *config.ExternalLib {
	if !n.InSystemHeader() {
		return nil
	}
	return r.cfg.ExternalLibFor(n.File())
}

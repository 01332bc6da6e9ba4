package doctree

import (
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/diag"
	"git.home.luguber.info/inful/flashdoc/internal/logfields"
)

// internalNamePrefixes are first characters implausible for a user-written
// identifier; a name starting with one is almost certainly a compiler or
// provider artifact.
const internalNamePrefixes = "()<>[]"

// Builder walks translation-unit scopes and assembles the documentation
// tree. Construction is single-threaded: AST traversal depends on
// parser-internal state that is not safe to share across goroutines.
type Builder struct {
	cfg  *config.Config
	diag diag.Collector
}

// NewBuilder creates a tree builder. A nil collector logs diagnostics via
// slog.
func NewBuilder(cfg *config.Config, collector diag.Collector) *Builder {
	if collector == nil {
		collector = diag.NewLogger(nil)
	}
	return &Builder{cfg: cfg, diag: collector}
}

// BuildRoot builds the documentation tree from the given translation-unit
// scopes. Namespace fragments with the same qualified name merge across
// units. After loading, namespaces left empty by filtering are removed
// recursively; the root itself never is.
func (b *Builder) BuildRoot(units ...cppast.Node) *Namespace {
	root := newRootNamespace()
	for _, tu := range units {
		b.loadEntries(root, tu)
	}
	b.cleanEmptyNamespaces(root)
	return root
}

func (b *Builder) loadEntries(ns *Namespace, scope cppast.Node) {
	for _, child := range scope.Children() {
		name := child.Name()
		// skip unnamed items
		if name == "" {
			continue
		}
		fqn := cppast.QualifiedNameString(child)

		// skip stuff from external headers unless an external-library rule
		// claims the header
		if child.InSystemHeader() && b.cfg.ExternalLibFor(child.File()) == nil {
			continue
		}

		// skip specializations of std stuff and compiler-synthesized names
		if strings.HasPrefix(fqn, cppast.StdNamespace+"::") ||
			strings.Contains(name, "deduction guide for") ||
			strings.Contains(name, "unnamed ") {
			continue
		}

		if first, _ := utf8.DecodeRuneInString(name); strings.ContainsRune(internalNamePrefixes, first) {
			b.diag.Warn("name is probably an internal identifier, skipping",
				logfields.Entity(fqn))
			continue
		}

		if b.ignored(fqn, name) {
			continue
		}

		kind, ok := Classify(child)
		if !ok {
			continue
		}
		switch kind {
		case ItemNamespace:
			entry := NewNamespace(child)
			b.loadEntries(entry, child)
			if existing, ok := ns.Entries[entry.Name()].(*Namespace); ok {
				existing.Merge(entry)
			} else {
				ns.Entries[entry.Name()] = entry
			}

		case ItemClass:
			if child.IsDefinition() {
				entry := NewClass(child)
				ns.Entries[entry.Name()] = entry
			}

		case ItemStruct:
			if child.IsDefinition() {
				entry := NewStruct(child)
				ns.Entries[entry.Name()] = entry
			}

		case ItemFunction:
			entry := NewFunction(child)
			ns.Entries[entry.Name()] = entry
		}
	}
}

// ignored applies the configured ignore rules; the qualified-name list is
// checked before the simple-name list, first match wins.
func (b *Builder) ignored(fqn, name string) bool {
	ig := b.cfg.Ignore
	if ig == nil {
		return false
	}
	if ig.MatchQualified(fqn) {
		b.diag.Debug("skipping ignored entity", logfields.Entity(fqn))
		return true
	}
	if ig.MatchName(name) {
		b.diag.Debug("skipping ignored entity", logfields.Entity(fqn))
		return true
	}
	return false
}

// cleanEmptyNamespaces removes namespaces whose entry set is empty once
// their own children have been cleaned, one diagnostic per removal.
func (b *Builder) cleanEmptyNamespaces(ns *Namespace) {
	for key, entry := range ns.Entries {
		sub, ok := entry.(*Namespace)
		if !ok {
			continue
		}
		b.cleanEmptyNamespaces(sub)
		if len(sub.Entries) == 0 {
			fqn := sub.Name()
			if sub.Node() != nil {
				fqn = cppast.QualifiedNameString(sub.Node())
			}
			b.diag.Warn("removing empty namespace", logfields.Entity(fqn))
			delete(ns.Entries, key)
		}
	}
}

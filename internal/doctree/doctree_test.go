package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/diag"
)

func tu(kids ...*cppast.Decl) *cppast.Decl {
	root := &cppast.Decl{DeclKind: cppast.KindTranslationUnit, Definition: true}
	return root.Add(kids...)
}

func ns(name string, kids ...*cppast.Decl) *cppast.Decl {
	d := &cppast.Decl{DeclKind: cppast.KindNamespace, DeclName: name, Definition: true}
	return d.Add(kids...)
}

func class(name string, kids ...*cppast.Decl) *cppast.Decl {
	d := &cppast.Decl{DeclKind: cppast.KindClass, DeclName: name, DefFile: "include/w.hpp", Definition: true, SymbolUSR: "c:" + name}
	return d.Add(kids...)
}

func fn(name string) *cppast.Decl {
	return &cppast.Decl{DeclKind: cppast.KindFunction, DeclName: name, DefFile: "include/w.hpp"}
}

func testConfig() *config.Config {
	return &config.Config{
		Project:   config.ProjectConfig{Name: "widgets"},
		OutputURL: "https://example.com/docs",
	}
}

func newTestBuilder(t *testing.T, cfg *config.Config) (*Builder, *diag.Recorder) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	rec := diag.NewRecorder()
	return NewBuilder(cfg, rec), rec
}

func TestBuildRootClassifiesEntries(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(
		ns("ns",
			class("Widget"),
			&cppast.Decl{DeclKind: cppast.KindStruct, DeclName: "Point", Definition: true},
			fn("frobnicate"),
		),
	))

	nsItem, ok := root.Entries["ns"].(*Namespace)
	require.True(t, ok, "ns must be a namespace item")
	assert.Equal(t, ItemClass, nsItem.Entries["Widget"].ItemKind())
	assert.Equal(t, ItemStruct, nsItem.Entries["Point"].ItemKind())
	assert.Equal(t, ItemFunction, nsItem.Entries["frobnicate"].ItemKind())
}

func TestBuildRootSkipsForwardDeclarations(t *testing.T) {
	fwd := &cppast.Decl{DeclKind: cppast.KindClass, DeclName: "Widget", DefFile: "include/w.hpp"}
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(ns("ns", fwd)))

	// the namespace empties out and is cleaned as well
	assert.Empty(t, root.Entries)
}

func TestBuildRootFunctionDeclarationsSurvive(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(fn("frobnicate")))
	assert.Contains(t, root.Entries, "frobnicate")
}

func TestBuildRootSkipsUnnamedAndSynthetic(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(
		&cppast.Decl{DeclKind: cppast.KindClass, DeclName: "", Definition: true},
		&cppast.Decl{DeclKind: cppast.KindFunction, DeclName: "deduction guide for Widget"},
		&cppast.Decl{DeclKind: cppast.KindClass, DeclName: "unnamed struct at w.hpp:3", Definition: true},
	))
	assert.Empty(t, root.Entries)
}

func TestBuildRootSkipsStdSpecializations(t *testing.T) {
	stdNS := ns("std", class("hash"))
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(stdNS))

	// std itself loads as a namespace but nothing under std:: does, so
	// cleanup removes it.
	assert.Empty(t, root.Entries)
}

func TestBuildRootWarnsOnInternalNames(t *testing.T) {
	b, rec := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(
		&cppast.Decl{DeclKind: cppast.KindFunction, DeclName: "(unnamed)"},
	))
	assert.Empty(t, root.Entries)
	require.Len(t, rec.Warnings(), 1)
}

func TestBuildRootKeepsMultibyteLeadingNames(t *testing.T) {
	// the internal-name check inspects the first rune, not the first byte
	b, rec := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(fn("überraschung")))
	assert.Contains(t, root.Entries, "überraschung")
	assert.Empty(t, rec.Warnings())
}

func TestBuildRootSystemHeaderFiltering(t *testing.T) {
	sysClass := &cppast.Decl{
		DeclKind: cppast.KindClass, DeclName: "basic_format", Definition: true,
		DefFile: "/usr/include/fmt/core.h", SystemHeader: true,
	}
	otherSys := &cppast.Decl{
		DeclKind: cppast.KindClass, DeclName: "vector", Definition: true,
		DefFile: "/usr/include/c++/vector", SystemHeader: true,
	}

	cfg := testConfig()
	cfg.ExternalLibs = []config.ExternalLib{{Pattern: "fmt", Repository: "https://github.com/fmtlib/fmt"}}
	b, _ := newTestBuilder(t, cfg)
	root := b.BuildRoot(tu(sysClass, otherSys))

	assert.Contains(t, root.Entries, "basic_format", "external-lib header must be allowed in")
	assert.NotContains(t, root.Entries, "vector")
}

func TestBuildRootIgnoreRules(t *testing.T) {
	cfg := testConfig()
	cfg.Ignore = &config.IgnoreConfig{
		Qualified: []string{"detail"},
		Names:     []string{"^_"},
	}
	require.NoError(t, cfg.Validate())

	b, _ := newTestBuilder(t, cfg)
	root := b.BuildRoot(tu(
		ns("detail", class("Impl")),
		fn("_internal"),
		fn("frobnicate"),
	))

	assert.NotContains(t, root.Entries, "detail")
	assert.NotContains(t, root.Entries, "_internal")
	assert.Contains(t, root.Entries, "frobnicate")
}

func TestBuildRootMergesNamespacesAcrossUnits(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(
		tu(ns("ns", class("Widget"))),
		tu(ns("ns", class("Gadget"))),
	)

	nsItem := root.Entries["ns"].(*Namespace)
	assert.Len(t, nsItem.Entries, 2)
	assert.Contains(t, nsItem.Entries, "Widget")
	assert.Contains(t, nsItem.Entries, "Gadget")
}

func TestMergeRecursesAndOverwrites(t *testing.T) {
	first := NewNamespace(ns("ns"))
	inner := NewNamespace(ns("inner"))
	inner.Entries["Widget"] = NewClass(class("Widget"))
	first.Entries["inner"] = inner
	first.Entries["frobnicate"] = NewFunction(fn("frobnicate"))

	second := NewNamespace(ns("ns"))
	innerTwo := NewNamespace(ns("inner"))
	innerTwo.Entries["Gadget"] = NewClass(class("Gadget"))
	second.Entries["inner"] = innerTwo
	replacement := NewFunction(fn("frobnicate"))
	second.Entries["frobnicate"] = replacement

	first.Merge(second)

	merged := first.Entries["inner"].(*Namespace)
	assert.Len(t, merged.Entries, 2)
	assert.Same(t, replacement, first.Entries["frobnicate"], "non-namespace entries are last-write-wins")
}

func TestMergePanicsOnNameMismatch(t *testing.T) {
	a := NewNamespace(ns("a"))
	b := NewNamespace(ns("b"))
	assert.Panics(t, func() { a.Merge(b) })
}

func TestCleanEmptyNamespacesIsRecursive(t *testing.T) {
	b, rec := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(
		ns("outer", ns("mid", ns("empty"))),
		ns("kept", class("Widget")),
	))

	assert.NotContains(t, root.Entries, "outer")
	assert.Contains(t, root.Entries, "kept")
	// one warning per removed namespace
	assert.Len(t, rec.Warnings(), 3)
}

func TestSortedEntriesNamespacesFirst(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(
		fn("alpha"),
		ns("zeta", class("Widget")),
		class("Beta"),
		ns("alpha_ns", class("Gadget")),
	))

	var names []string
	for _, e := range root.SortedEntries() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"alpha_ns", "zeta", "Beta", "alpha"}, names)
}

func TestSelectWalksSubtree(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(
		ns("ns", class("Widget"), ns("inner", class("Gadget"))),
		fn("frobnicate"),
	))

	classes := root.Select(IsClasslike)
	assert.Len(t, classes, 2)

	everything := root.Select(func(Item) bool { return true })
	assert.Len(t, everything, 5)
}

func TestDerivedClasses(t *testing.T) {
	widget := class("Widget")
	gadgetBase := &cppast.Decl{DeclKind: cppast.KindBaseSpecifier, DeclName: "Widget", Ref: widget}
	gadget := class("Gadget", gadgetBase)
	appletBase := &cppast.Decl{DeclKind: cppast.KindBaseSpecifier, DeclName: "Widget", Ref: widget}
	applet := class("Applet", appletBase)
	unrelated := class("Button")

	b, _ := newTestBuilder(t, nil)
	root := b.BuildRoot(tu(ns("ns", widget, gadget, applet, unrelated)))

	derived := DerivedClasses(root, widget)
	require.Len(t, derived, 2)
	assert.Equal(t, "Applet", derived[0].Name(), "results sorted by name")
	assert.Equal(t, "Gadget", derived[1].Name())

	assert.Empty(t, DerivedClasses(root, unrelated))
}

func TestClassifyDeclines(t *testing.T) {
	_, ok := Classify(&cppast.Decl{DeclKind: cppast.KindField, DeclName: "x"})
	assert.False(t, ok)
	_, ok = Classify(&cppast.Decl{DeclKind: cppast.KindMethod, DeclName: "draw"})
	assert.False(t, ok)
}

func TestCategorySegments(t *testing.T) {
	assert.Equal(t, "namespaces", ItemNamespace.CategorySegment())
	assert.Equal(t, "classes", ItemClass.CategorySegment())
	assert.Equal(t, "classes", ItemStruct.CategorySegment())
	assert.Equal(t, "functions", ItemFunction.CategorySegment())
}

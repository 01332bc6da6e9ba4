package autolink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/resolve"
)

func class(name string) *cppast.Decl {
	return &cppast.Decl{DeclKind: cppast.KindClass, DeclName: name, DefFile: "include/w.hpp", Definition: true}
}

func ns(name string, kids ...*cppast.Decl) *cppast.Decl {
	d := &cppast.Decl{DeclKind: cppast.KindNamespace, DeclName: name, Definition: true}
	return d.Add(kids...)
}

func fixture(t *testing.T, decls ...*cppast.Decl) (*Engine, *doctree.Namespace) {
	t.Helper()
	cfg := &config.Config{
		Project:   config.ProjectConfig{Name: "widgets"},
		InputDir:  ".",
		OutputURL: "https://example.com/docs",
		Sources:   []config.Source{{Dir: "include"}},
	}
	tu := &cppast.Decl{DeclKind: cppast.KindTranslationUnit, Definition: true}
	tu.Add(decls...)
	root := doctree.NewBuilder(cfg, nil).BuildRoot(tu)
	return New(resolve.NewResolver(cfg)), root
}

func TestRewriteLinksEntityMentions(t *testing.T) {
	engine, root := fixture(t, ns("ns", class("Widget")))

	got, n := engine.Rewrite("See Widget for details.", root)
	assert.Equal(t, "See [Widget](https://example.com/docs/classes/ns/Widget) for details.", got)
	assert.Equal(t, 1, n)
}

func TestRewriteSkipsLowercaseWords(t *testing.T) {
	// an entity with an all-lowercase name must never link prose words
	engine, root := fixture(t, ns("ns", class("widget")))

	got, n := engine.Rewrite("every widget has a handle", root)
	assert.Equal(t, "every widget has a handle", got)
	assert.Zero(t, n)
}

func TestRewriteMatchesWholeWordsOnly(t *testing.T) {
	engine, root := fixture(t, ns("ns", class("Widget")))

	got, n := engine.Rewrite("WidgetFactory builds Widgets, not a Widget.", root)
	assert.Equal(t, "WidgetFactory builds Widgets, not a [Widget](https://example.com/docs/classes/ns/Widget).", got)
	assert.Equal(t, 1, n)
}

func TestRewriteMultipleMentionsAndEntities(t *testing.T) {
	engine, root := fixture(t, ns("ns", class("Widget"), class("Gadget")))

	got, n := engine.Rewrite("Widget wraps Gadget. Widget owns it.", root)
	assert.Equal(t, 3, n)
	assert.Contains(t, got, "[Widget](https://example.com/docs/classes/ns/Widget) wraps [Gadget](https://example.com/docs/classes/ns/Gadget).")
	assert.Contains(t, got, "[Widget](https://example.com/docs/classes/ns/Widget) owns it.")
}

func TestRewriteReplacementsDoNotCascade(t *testing.T) {
	// the markdown produced by one replacement must not be re-matched
	engine, root := fixture(t, ns("ns", class("Widget")))

	got, _ := engine.Rewrite("Widget Widget", root)
	assert.Equal(t,
		"[Widget](https://example.com/docs/classes/ns/Widget) [Widget](https://example.com/docs/classes/ns/Widget)",
		got)
}

func TestRewriteNameCollisionLastTreeOrderWins(t *testing.T) {
	engine, root := fixture(t,
		ns("alpha", class("Widget")),
		ns("beta", class("Widget")),
	)

	got, n := engine.Rewrite("uses Widget", root)
	require.Equal(t, 1, n)
	assert.Equal(t, "uses [Widget](https://example.com/docs/classes/beta/Widget)", got,
		"later entity in tree order owns the span")
}

func TestRewriteEmptyAndNoTokens(t *testing.T) {
	engine, root := fixture(t, ns("ns", class("Widget")))

	got, n := engine.Rewrite("", root)
	assert.Equal(t, "", got)
	assert.Zero(t, n)

	got, n = engine.Rewrite("!!! ---", root)
	assert.Equal(t, "!!! ---", got)
	assert.Zero(t, n)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("See ns::Widget, then frob_2x!")
	var words []string
	for _, tok := range tokens {
		words = append(words, tok.text)
	}
	assert.Equal(t, []string{"See", "ns", "Widget", "then", "frob_2x"}, words)
}

// Package autolink rewrites bare entity mentions in prose into markdown
// links against the documentation tree.
package autolink

import (
	"sort"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/resolve"
)

// Engine links prose against one finished tree. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	res *resolve.Resolver
}

// New creates an autolink engine resolving targets through res.
func New(res *resolve.Resolver) *Engine {
	return &Engine{res: res}
}

// token is one identifier-shaped word in the prose, addressed by byte span.
type token struct {
	offset int
	text   string
}

// span keys an edit by the exact byte range it replaces. Edits are produced
// from one shared tokenization, so two entities can only ever collide on an
// identical span; partial overlaps cannot occur.
type span struct {
	offset, length int
}

// Rewrite replaces every word that names a documented entity with a markdown
// link to its docs page, returning the rewritten prose and the number of
// words replaced. Matching is by exact simple name; all-lowercase words
// never link, keeping ordinary prose untouched. All replacements are
// collected first and applied in a single pass, so earlier replacements
// never shift or re-match later ones. When several entities share a name the
// one visited last in tree order wins.
func (e *Engine) Rewrite(prose string, root *doctree.Namespace) (string, int) {
	if prose == "" {
		return prose, 0
	}
	tokens := tokenize(prose)
	if len(tokens) == 0 {
		return prose, 0
	}

	edits := make(map[span]string)
	e.walk(root, tokens, edits)
	if len(edits) == 0 {
		return prose, 0
	}
	return apply(prose, edits), len(edits)
}

func (e *Engine) walk(ns *doctree.Namespace, tokens []token, edits map[span]string) {
	for _, entry := range ns.SortedEntries() {
		if node := entry.Node(); node != nil {
			e.collect(entry, tokens, edits)
		}
		if sub, ok := entry.(*doctree.Namespace); ok {
			e.walk(sub, tokens, edits)
		}
	}
}

func (e *Engine) collect(entry doctree.Item, tokens []token, edits map[span]string) {
	name := entry.Name()
	if name == "" || allLower(name) {
		return
	}
	var url string
	resolved := false
	for _, tok := range tokens {
		if tok.text != name {
			continue
		}
		if !resolved {
			var ok bool
			url, ok = e.res.AbsoluteURL(entry.Node())
			if !ok {
				return
			}
			resolved = true
		}
		edits[span{tok.offset, len(tok.text)}] = "[" + tok.text + "](" + url + ")"
	}
}

// tokenize splits prose into identifier-shaped words: maximal runs of
// letters, digits and underscores.
func tokenize(prose string) []token {
	var out []token
	start := -1
	for i, r := range prose {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, token{offset: start, text: prose[start:i]})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, token{offset: start, text: prose[start:]})
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func allLower(s string) bool {
	for _, r := range s {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// apply performs all edits in ascending offset order, rebuilding the prose
// in one pass.
func apply(prose string, edits map[span]string) string {
	spans := make([]span, 0, len(edits))
	for sp := range edits {
		spans = append(spans, sp)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].offset < spans[j].offset })

	var sb strings.Builder
	sb.Grow(len(prose) + len(edits)*32)
	prev := 0
	for _, sp := range spans {
		sb.WriteString(prose[prev:sp.offset])
		sb.WriteString(edits[sp])
		prev = sp.offset + sp.length
	}
	sb.WriteString(prose[prev:])
	return sb.String()
}

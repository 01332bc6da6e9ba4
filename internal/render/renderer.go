package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/flashdoc/internal/nav"
)

// PageRenderer abstracts how page models become output artifacts. This
// allows swapping the on-disk HTML writer (HTMLRenderer) with alternative
// strategies (no-op for tests, remote publishing) without changing build
// orchestration.
type PageRenderer interface {
	RenderPage(page *Page) error
	WriteNav(root *nav.Root) error
}

// HTMLRenderer converts page markdown to HTML and writes one
// <url>/index.html per page under the output directory, plus nav.json at
// the root.
type HTMLRenderer struct {
	outDir string
	md     goldmark.Markdown
}

// NewHTMLRenderer creates a renderer writing below outDir.
func NewHTMLRenderer(outDir string) *HTMLRenderer {
	return &HTMLRenderer{
		outDir: outDir,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (r *HTMLRenderer) RenderPage(page *Page) error {
	var html bytes.Buffer
	if err := r.md.Convert([]byte(pageMarkdown(page)), &html); err != nil {
		return fmt.Errorf("render: converting %s: %w", page.URL, err)
	}

	dir := filepath.Join(r.outDir, filepath.FromSlash(page.URL.String()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("render: creating %s: %w", dir, err)
	}
	out := filepath.Join(dir, "index.html")
	if err := os.WriteFile(out, html.Bytes(), 0o644); err != nil {
		return fmt.Errorf("render: writing %s: %w", out, err)
	}
	return nil
}

func (r *HTMLRenderer) WriteNav(root *nav.Root) error {
	data, err := root.MarshalJSON()
	if err != nil {
		return fmt.Errorf("render: encoding nav: %w", err)
	}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("render: creating %s: %w", r.outDir, err)
	}
	out := filepath.Join(r.outDir, "nav.json")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("render: writing %s: %w", out, err)
	}
	return nil
}

// pageMarkdown lays the page model out as a markdown document. Description
// prose passes through as-is; goldmark turns the whole document into HTML.
func pageMarkdown(page *Page) string {
	var sb strings.Builder
	title := page.Title
	if page.QualifiedName != "" {
		title = page.QualifiedName
	}
	fmt.Fprintf(&sb, "# %s %s\n\n", page.Kind, title)

	if page.Include != "" {
		fmt.Fprintf(&sb, "```cpp\n#include <%s>\n```\n\n", page.Include)
	}
	if page.Browse != nil && page.Browse.ExistsOnline {
		fmt.Fprintf(&sb, "[View source](%s)\n\n", page.Browse.URL)
	}
	if page.Description != "" {
		sb.WriteString(page.Description)
		sb.WriteString("\n\n")
	}

	writeRelations(&sb, "Inherits from", page.Bases)
	writeRelations(&sb, "Inherited by", page.Derived)
	writeRelations(&sb, "Entries", page.Entries)

	if len(page.Members) > 0 {
		sb.WriteString("## Member functions\n\n")
		for _, m := range page.Members {
			fmt.Fprintf(&sb, "### %s\n\n", m.Name)
			if m.Signature != "" {
				fmt.Fprintf(&sb, "```cpp\n%s\n```\n\n", m.Signature)
			}
			if m.Description != "" {
				sb.WriteString(m.Description)
				sb.WriteString("\n\n")
			}
		}
	}
	return sb.String()
}

func writeRelations(sb *strings.Builder, heading string, rels []Relation) {
	if len(rels) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", heading)
	for _, rel := range rels {
		if rel.URL != "" {
			fmt.Fprintf(sb, "- [%s](%s)\n", rel.Name, rel.URL)
		} else {
			fmt.Fprintf(sb, "- %s\n", rel.Name)
		}
	}
	sb.WriteString("\n")
}

// NoopRenderer produces no artifacts; useful in tests or for dry runs that
// only validate the tree and URL resolution.
type NoopRenderer struct{}

func (NoopRenderer) RenderPage(page *Page) error {
	slog.Debug("NoopRenderer skipping page", "url", page.URL.String())
	return nil
}

func (NoopRenderer) WriteNav(*nav.Root) error {
	slog.Debug("NoopRenderer skipping nav")
	return nil
}

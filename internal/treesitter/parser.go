// Package treesitter is the bundled AST backend: it parses the project's C++
// headers with tree-sitter and exposes them as cppast translation units.
//
// Tree-sitter is a syntactic parser, not a compiler frontend, so the backend
// resolves what syntax alone can carry: names, nesting, inheritance clauses
// and member qualifiers. Base specifiers are resolved by qualified-name
// lookup across all parsed units.
package treesitter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/diag"
	"git.home.luguber.info/inful/flashdoc/internal/logfields"
)

var (
	ErrLanguageInit = errors.New("treesitter: cpp grammar rejected")
	ErrParseFailed  = errors.New("treesitter: parse failed")
)

// headerExts are the file extensions treated as C++ headers during source
// discovery.
var headerExts = map[string]bool{
	".h":   true,
	".hh":  true,
	".hpp": true,
	".hxx": true,
}

// Parser turns header files into cppast translation units. It owns one
// tree-sitter parser and must not be shared across goroutines.
type Parser struct {
	cfg    *config.Config
	diag   diag.Collector
	parser *tree_sitter.Parser
}

// NewParser creates a parser for the configured project. A nil collector
// logs diagnostics via slog.
func NewParser(cfg *config.Config, collector diag.Collector) (*Parser, error) {
	if collector == nil {
		collector = diag.NewLogger(nil)
	}
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLanguageInit, err)
	}
	return &Parser{cfg: cfg, diag: collector, parser: parser}, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseProject discovers headers under the configured source roots, parses
// each into a translation unit and resolves base-class references across all
// of them.
func (p *Parser) ParseProject() ([]cppast.Node, error) {
	headers, err := p.discoverHeaders()
	if err != nil {
		return nil, err
	}

	units := make([]*unit, 0, len(headers))
	for _, header := range headers {
		u, err := p.parseFile(header)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	resolveBases(units)

	out := make([]cppast.Node, len(units))
	for i, u := range units {
		out[i] = u.root
	}
	return out, nil
}

// ParseFile parses a single header into a translation unit with bases
// resolved against that unit alone.
func (p *Parser) ParseFile(path string) (cppast.Node, error) {
	u, err := p.parseFile(path)
	if err != nil {
		return nil, err
	}
	resolveBases([]*unit{u})
	return u.root, nil
}

func (p *Parser) discoverHeaders() ([]string, error) {
	var headers []string
	for _, src := range p.cfg.Sources {
		dir := filepath.Join(p.cfg.InputDir, filepath.FromSlash(src.Dir))
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && headerExts[filepath.Ext(path)] {
				headers = append(headers, path)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				p.diag.Warn("source root does not exist, skipping", logfields.Path(dir))
				continue
			}
			return nil, fmt.Errorf("treesitter: scanning %s: %w", dir, err)
		}
	}
	return headers, nil
}

func (p *Parser) parseFile(path string) (*unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("treesitter: reading %s: %w", path, err)
	}

	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, path)
	}
	defer tree.Close()

	// The resolver strips the input root itself, so record headers with
	// forward slashes relative to the working directory.
	file := filepath.ToSlash(path)
	root := &cppast.Decl{
		DeclKind:   cppast.KindTranslationUnit,
		DeclName:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		DefFile:    file,
		Definition: true,
	}
	c := &converter{src: src, file: file, diag: p.diag}
	c.convertScope(tree.RootNode(), root, cppast.AccessNone)

	u := &unit{root: root}
	u.index(root)
	return u, nil
}

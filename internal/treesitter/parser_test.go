package treesitter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/cppast"
)

func writeHeader(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func projectConfig(dir string) *config.Config {
	return &config.Config{
		Project:   config.ProjectConfig{Name: "widgets"},
		InputDir:  dir,
		OutputURL: "https://example.com/docs",
		Sources:   []config.Source{{Dir: "include"}},
	}
}

func findChild(t *testing.T, n cppast.Node, kind cppast.Kind, name string) cppast.Node {
	t.Helper()
	for _, c := range n.Children() {
		if c.Kind() == kind && c.Name() == name {
			return c
		}
	}
	t.Fatalf("no %s named %q under %q", kind, name, n.Name())
	return nil
}

func TestParseProject(t *testing.T) {
	dir := t.TempDir()
	writeHeader(t, dir, "include/widget.hpp", `
namespace ns {

/// A drawable thing.
class Widget {
public:
  void draw() const;
  static int count();
private:
  void impl();
};

class Gadget : public Widget {
public:
  void flip();
};

void frobnicate(int times);

}
`)

	p, err := NewParser(projectConfig(dir), nil)
	require.NoError(t, err)
	defer p.Close()

	units, err := p.ParseProject()
	require.NoError(t, err)
	require.Len(t, units, 1)

	tu := units[0]
	assert.Equal(t, cppast.KindTranslationUnit, tu.Kind())

	ns := findChild(t, tu, cppast.KindNamespace, "ns")
	widget := findChild(t, ns, cppast.KindClass, "Widget")
	assert.True(t, widget.IsDefinition())
	assert.Contains(t, widget.Comment(), "A drawable thing.")

	draw := findChild(t, widget, cppast.KindMethod, "draw")
	assert.Equal(t, cppast.AccessPublic, draw.Access())
	assert.True(t, draw.IsConst())

	count := findChild(t, widget, cppast.KindMethod, "count")
	assert.True(t, count.IsStatic())

	impl := findChild(t, widget, cppast.KindMethod, "impl")
	assert.Equal(t, cppast.AccessPrivate, impl.Access())

	gadget := findChild(t, ns, cppast.KindClass, "Gadget")
	bases := cppast.Bases(gadget)
	require.Len(t, bases, 1)
	require.NotNil(t, bases[0].Referenced(), "base must resolve to Widget")
	assert.Equal(t, widget.USR(), bases[0].Referenced().USR())
	assert.Equal(t, cppast.AccessPublic, bases[0].Access())

	frob := findChild(t, ns, cppast.KindFunction, "frobnicate")
	params := cppast.Params(frob)
	require.Len(t, params, 1)
	assert.Equal(t, "times", params[0].Name())
}

func TestParseProjectResolvesBasesAcrossHeaders(t *testing.T) {
	dir := t.TempDir()
	writeHeader(t, dir, "include/widget.hpp", `
namespace ns {
class Widget {
public:
  void draw();
};
}
`)
	writeHeader(t, dir, "include/gadget.hpp", `
namespace ns {
class Gadget : public Widget {
public:
  void flip();
};
}
`)

	p, err := NewParser(projectConfig(dir), nil)
	require.NoError(t, err)
	defer p.Close()

	units, err := p.ParseProject()
	require.NoError(t, err)
	require.Len(t, units, 2)

	var widget, base cppast.Node
	for _, tu := range units {
		for _, c := range tu.Children() {
			if c.Kind() != cppast.KindNamespace {
				continue
			}
			for _, inner := range c.Children() {
				switch inner.Name() {
				case "Widget":
					widget = inner
				case "Gadget":
					bases := cppast.Bases(inner)
					require.Len(t, bases, 1)
					base = bases[0]
				}
			}
		}
	}
	require.NotNil(t, widget)
	require.NotNil(t, base)
	require.NotNil(t, base.Referenced())
	assert.Equal(t, widget.USR(), base.Referenced().USR())
}

func TestParseProjectMissingSourceRootIsSkipped(t *testing.T) {
	dir := t.TempDir() // no include/ directory at all

	p, err := NewParser(projectConfig(dir), nil)
	require.NoError(t, err)
	defer p.Close()

	units, err := p.ParseProject()
	require.NoError(t, err)
	assert.Empty(t, units)
}

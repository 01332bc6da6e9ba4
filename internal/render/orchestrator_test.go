package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/cppast"
	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/metrics"
	"git.home.luguber.info/inful/flashdoc/internal/nav"
	"git.home.luguber.info/inful/flashdoc/internal/resolve"
)

// captureRenderer records rendered pages and can fail a chosen URL.
type captureRenderer struct {
	mu     sync.Mutex
	pages  map[string]*Page
	nav    *nav.Root
	failOn string
}

func newCaptureRenderer() *captureRenderer {
	return &captureRenderer{pages: make(map[string]*Page)}
}

func (r *captureRenderer) RenderPage(page *Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && page.URL.String() == r.failOn {
		return fmt.Errorf("boom on %s", r.failOn)
	}
	r.pages[page.URL.String()] = page
	return nil
}

func (r *captureRenderer) WriteNav(root *nav.Root) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nav = root
	return nil
}

// testRecorder counts recorder calls for assertions.
type testRecorder struct {
	mu          sync.Mutex
	pageResults map[string]map[metrics.ResultLabel]int
	outcomes    map[string]int
	builds      int
	concurrency int
	autolinks   int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		pageResults: map[string]map[metrics.ResultLabel]int{},
		outcomes:    map[string]int{},
	}
}

func (r *testRecorder) ObservePageDuration(string, time.Duration) {}
func (r *testRecorder) ObserveBuildDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds++
}
func (r *testRecorder) IncPageResult(category string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.pageResults[category]
	if !ok {
		m = map[metrics.ResultLabel]int{}
		r.pageResults[category] = m
	}
	m[result]++
}
func (r *testRecorder) IncBuildOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}
func (r *testRecorder) SetRenderConcurrency(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.concurrency = n
}
func (r *testRecorder) AddAutolinkReplacements(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autolinks += n
}

func testConfig() *config.Config {
	return &config.Config{
		Project:   config.ProjectConfig{Name: "widgets"},
		InputDir:  ".",
		OutputURL: "https://example.com/docs",
		Sources:   []config.Source{{Dir: "include"}},
		Workers:   4,
	}
}

// fixtureTree builds ns::Widget (with a derived ns::Gadget) plus a free
// function.
func fixtureTree(t *testing.T, cfg *config.Config) *doctree.Namespace {
	t.Helper()

	widget := &cppast.Decl{
		DeclKind: cppast.KindClass, DeclName: "Widget",
		DefFile: "include/w.hpp", Definition: true, SymbolUSR: "c:Widget",
		RawComment: "/// A drawable thing. See Gadget for the fancy one.",
	}
	widget.Add(&cppast.Decl{DeclKind: cppast.KindMethod, DeclName: "draw", DeclAccess: cppast.AccessPublic})

	base := &cppast.Decl{DeclKind: cppast.KindBaseSpecifier, DeclName: "Widget", DeclAccess: cppast.AccessPublic, Ref: widget}
	gadget := &cppast.Decl{
		DeclKind: cppast.KindClass, DeclName: "Gadget",
		DefFile: "include/g.hpp", Definition: true, SymbolUSR: "c:Gadget",
	}
	gadget.Add(base)

	frob := &cppast.Decl{DeclKind: cppast.KindFunction, DeclName: "frobnicate", DefFile: "include/f.hpp"}

	nsDecl := &cppast.Decl{DeclKind: cppast.KindNamespace, DeclName: "ns", Definition: true}
	nsDecl.Add(widget, gadget, frob)
	tu := &cppast.Decl{DeclKind: cppast.KindTranslationUnit, Definition: true}
	tu.Add(nsDecl)

	return doctree.NewBuilder(cfg, nil).BuildRoot(tu)
}

func TestBuildRendersEveryPage(t *testing.T) {
	cfg := testConfig()
	root := fixtureTree(t, cfg)
	renderer := newCaptureRenderer()
	rec := newTestRecorder()

	o := NewOrchestrator(cfg, resolve.NewResolver(cfg), renderer).WithRecorder(rec)
	result, err := o.Build(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"",
		"classes/ns/Gadget",
		"classes/ns/Widget",
		"functions/ns/frobnicate",
		"namespaces/ns",
	}, result.Pages)
	assert.NotEmpty(t, result.BuildID)
	assert.NotNil(t, renderer.nav, "nav must be written after a successful build")

	assert.Equal(t, 1, rec.outcomes["success"])
	assert.Equal(t, 1, rec.builds)
	assert.Equal(t, cfg.Workers, rec.concurrency)
}

func TestBuildPageContent(t *testing.T) {
	cfg := testConfig()
	root := fixtureTree(t, cfg)
	renderer := newCaptureRenderer()

	o := NewOrchestrator(cfg, resolve.NewResolver(cfg), renderer)
	_, err := o.Build(context.Background(), root)
	require.NoError(t, err)

	widget := renderer.pages["classes/ns/Widget"]
	require.NotNil(t, widget)
	assert.Equal(t, "ns::Widget", widget.QualifiedName)
	assert.Contains(t, widget.Description,
		"[Gadget](https://example.com/docs/classes/ns/Gadget)",
		"comment prose must be autolinked")
	require.Len(t, widget.Derived, 1)
	assert.Equal(t, "Gadget", widget.Derived[0].Name)
	require.Len(t, widget.Members, 1)
	assert.Equal(t, "draw", widget.Members[0].Name)

	gadget := renderer.pages["classes/ns/Gadget"]
	require.NotNil(t, gadget)
	require.Len(t, gadget.Bases, 1)
	assert.Equal(t, "Widget", gadget.Bases[0].Name)
	assert.Equal(t, "https://example.com/docs/classes/ns/Widget", gadget.Bases[0].URL)

	nsPage := renderer.pages["namespaces/ns"]
	require.NotNil(t, nsPage)
	assert.Len(t, nsPage.Entries, 3)
}

func TestBuildFailFast(t *testing.T) {
	cfg := testConfig()
	root := fixtureTree(t, cfg)
	renderer := newCaptureRenderer()
	renderer.failOn = "classes/ns/Widget"
	rec := newTestRecorder()

	o := NewOrchestrator(cfg, resolve.NewResolver(cfg), renderer).WithRecorder(rec)
	_, err := o.Build(context.Background(), root)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailed)
	assert.Nil(t, renderer.nav, "nav must not be written after a failed build")
	assert.Equal(t, 1, rec.outcomes["failed"])
	assert.Equal(t, 1, rec.pageResults["classes"][metrics.ResultFatal])
}

func TestBuildCanceledContext(t *testing.T) {
	cfg := testConfig()
	root := fixtureTree(t, cfg)
	rec := newTestRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(cfg, resolve.NewResolver(cfg), NoopRenderer{}).WithRecorder(rec)
	_, err := o.Build(ctx, root)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, rec.outcomes["canceled"])
}

func TestBuildDefaultsWorkerCount(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 0
	root := fixtureTree(t, cfg)
	rec := newTestRecorder()

	o := NewOrchestrator(cfg, resolve.NewResolver(cfg), NoopRenderer{}).WithRecorder(rec)

	done := make(chan error, 1)
	go func() {
		_, err := o.Build(context.Background(), root)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("build never finished with an unset worker count")
	}
	assert.Equal(t, defaultWorkers, rec.concurrency)
}

func TestNoopRendererBuild(t *testing.T) {
	cfg := testConfig()
	root := fixtureTree(t, cfg)

	o := NewOrchestrator(cfg, resolve.NewResolver(cfg), NoopRenderer{})
	result, err := o.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, result.Pages, 5)
}

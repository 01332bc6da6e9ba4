package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/flashdoc/internal/autolink"
	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/diag"
	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/logfields"
	"git.home.luguber.info/inful/flashdoc/internal/metrics"
	"git.home.luguber.info/inful/flashdoc/internal/nav"
	"git.home.luguber.info/inful/flashdoc/internal/resolve"
)

var (
	// ErrRenderFailed wraps any page that could not be built or written.
	ErrRenderFailed = errors.New("page render failed")

	errNoPageURL = errors.New("item has no documentation url")
)

// defaultWorkers bounds render concurrency when the configuration leaves
// Workers unset; a zero-capacity semaphore would never admit a worker.
const defaultWorkers = 8

// Orchestrator fans page rendering out over a bounded worker pool. The tree
// and resolver are read-only during the build, so workers share them without
// locking; only the result list is guarded.
type Orchestrator struct {
	cfg      *config.Config
	res      *resolve.Resolver
	links    *autolink.Engine
	renderer PageRenderer
	rec      metrics.Recorder
	diag     diag.Collector
	src      *sourceCache
}

// NewOrchestrator creates a build orchestrator with a no-op metrics recorder
// and slog-backed diagnostics.
func NewOrchestrator(cfg *config.Config, res *resolve.Resolver, renderer PageRenderer) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		res:      res,
		links:    autolink.New(res),
		renderer: renderer,
		rec:      metrics.NoopRecorder{},
		diag:     diag.NewLogger(nil),
		src:      newSourceCache(),
	}
}

// WithRecorder injects a metrics recorder.
func (o *Orchestrator) WithRecorder(rec metrics.Recorder) *Orchestrator {
	if rec != nil {
		o.rec = rec
	}
	return o
}

// WithCollector injects a diagnostics collector.
func (o *Orchestrator) WithCollector(c diag.Collector) *Orchestrator {
	if c != nil {
		o.diag = c
	}
	return o
}

// BuildResult summarizes one completed build.
type BuildResult struct {
	BuildID string
	// Pages holds the relative docs URLs of every rendered page, sorted.
	Pages    []string
	Duration time.Duration
}

// Build renders every page in the tree plus the navigation index. The first
// page failure cancels the build; remaining queued pages are skipped and
// in-flight ones finish but their results are discarded. A canceled context
// surfaces as the context's error.
func (o *Orchestrator) Build(ctx context.Context, root *doctree.Namespace) (*BuildResult, error) {
	start := time.Now()
	buildID := uuid.NewString()
	slog.Info("starting documentation build",
		logfields.BuildID(buildID),
		logfields.Project(o.cfg.Project.Name))
	workers := o.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	o.rec.SetRenderConcurrency(workers)

	sem := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var pages []string
	o.spawn(gctx, g, sem, root, root, &mu, &pages)

	if err := g.Wait(); err != nil {
		outcome := "failed"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = "canceled"
		}
		o.rec.IncBuildOutcome(outcome)
		return nil, err
	}

	if err := o.renderer.WriteNav(nav.Build(root, o.res)); err != nil {
		o.rec.IncBuildOutcome("failed")
		return nil, err
	}

	sort.Strings(pages)
	duration := time.Since(start)
	o.rec.ObserveBuildDuration(duration)
	o.rec.IncBuildOutcome("success")
	slog.Info("documentation build finished",
		logfields.BuildID(buildID),
		logfields.Count(len(pages)),
		logfields.DurationMS(float64(duration.Milliseconds())))
	return &BuildResult{BuildID: buildID, Pages: pages, Duration: duration}, nil
}

// spawn schedules one render task per tree item, walking namespaces
// synchronously so every errgroup task is a leaf. Workers block on the
// semaphore, not on each other.
func (o *Orchestrator) spawn(ctx context.Context, g *errgroup.Group, sem chan struct{}, root *doctree.Namespace, it doctree.Item, mu *sync.Mutex, pages *[]string) {
	g.Go(func() error {
		return o.renderOne(ctx, sem, root, it, mu, pages)
	})
	if ns, ok := it.(*doctree.Namespace); ok {
		for _, entry := range ns.SortedEntries() {
			o.spawn(ctx, g, sem, root, entry, mu, pages)
		}
	}
}

func (o *Orchestrator) renderOne(ctx context.Context, sem chan struct{}, root *doctree.Namespace, it doctree.Item, mu *sync.Mutex, pages *[]string) error {
	category := it.ItemKind().CategorySegment()

	// checked before the select: a ready semaphore slot must not win over an
	// already-canceled context
	if err := ctx.Err(); err != nil {
		o.rec.IncPageResult(category, metrics.ResultCanceled)
		return err
	}
	select {
	case <-ctx.Done():
		o.rec.IncPageResult(category, metrics.ResultCanceled)
		return ctx.Err()
	case sem <- struct{}{}:
	}
	defer func() { <-sem }()

	start := time.Now()
	page, err := o.buildPage(it, root)
	if err != nil {
		o.rec.IncPageResult(category, metrics.ResultFatal)
		return fmt.Errorf("%w: %s %s: %w", ErrRenderFailed, it.ItemKind(), it.Name(), err)
	}
	if err := o.renderer.RenderPage(page); err != nil {
		o.rec.IncPageResult(category, metrics.ResultFatal)
		return fmt.Errorf("%w: %s %s: %w", ErrRenderFailed, it.ItemKind(), it.Name(), err)
	}

	o.rec.ObservePageDuration(category, time.Since(start))
	o.rec.IncPageResult(category, metrics.ResultSuccess)
	o.diag.Debug("rendered page",
		logfields.URL(page.URL.String()),
		logfields.Kind(it.ItemKind().String()))

	mu.Lock()
	*pages = append(*pages, page.URL.String())
	mu.Unlock()
	return nil
}

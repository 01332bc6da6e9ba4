package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/metrics"
)

const rebuildDebounce = 300 * time.Millisecond

// runWatch builds once, then watches the configured source roots and
// rebuilds on header changes until the context is canceled. A failed rebuild
// is logged and the watcher keeps running. With metricsAddr set, build
// metrics are recorded and served for scraping at /metrics.
func runWatch(ctx context.Context, cfg *config.Config, outputDir, metricsAddr string) error {
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if metricsAddr != "" {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		go serveMetrics(ctx, metricsAddr, reg)
	}

	if err := runBuild(ctx, cfg, outputDir, false, rec); err != nil {
		return err
	}

	watcher, err := setupWatcher(cfg)
	if err != nil {
		return err
	}
	defer watcher.Close()

	rebuildReq, trigger := setupDebouncer()
	go rebuildWorker(ctx, cfg, outputDir, rec, rebuildReq)

	slog.Info("Watching for header changes")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down watcher")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func setupWatcher(cfg *config.Config) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, src := range cfg.Sources {
		dir := filepath.Join(cfg.InputDir, filepath.FromSlash(src.Dir))
		if err := addDirsRecursive(watcher, dir); err != nil {
			slog.Warn("watch setup incomplete", "dir", dir, "error", err)
		}
	}
	return watcher, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// setupDebouncer coalesces bursts of filesystem events into one rebuild
// request.
func setupDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(rebuildDebounce, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

func rebuildWorker(ctx context.Context, cfg *config.Config, outputDir string, rec metrics.Recorder, rebuildReq chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			slog.Info("Change detected; rebuilding documentation")
			if err := runBuild(ctx, cfg, outputDir, false, rec); err != nil {
				slog.Warn("rebuild failed", "error", err)
			}
		}
	}
}

// serveMetrics exposes the registry on addr until the context is canceled.
func serveMetrics(ctx context.Context, addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	slog.Info("Serving build metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("metrics endpoint stopped", "error", err)
	}
}

func handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
			trigger()
			return
		}
	}
	if !isHeader(ev.Name) {
		return
	}
	slog.Debug("Header change detected", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

// shouldIgnoreEvent filters editor swap and hidden files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}

func isHeader(path string) bool {
	switch filepath.Ext(path) {
	case ".h", ".hh", ".hpp", ".hxx":
		return true
	}
	return false
}

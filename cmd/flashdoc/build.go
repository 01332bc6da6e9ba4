package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/flashdoc/internal/config"
	"git.home.luguber.info/inful/flashdoc/internal/doctree"
	"git.home.luguber.info/inful/flashdoc/internal/gitinfo"
	"git.home.luguber.info/inful/flashdoc/internal/logfields"
	"git.home.luguber.info/inful/flashdoc/internal/metrics"
	"git.home.luguber.info/inful/flashdoc/internal/nav"
	"git.home.luguber.info/inful/flashdoc/internal/render"
	"git.home.luguber.info/inful/flashdoc/internal/resolve"
	"git.home.luguber.info/inful/flashdoc/internal/treesitter"
)

// runBuild parses the project, builds the documentation tree and renders it
// below outputDir. With dryRun the full pipeline runs but nothing is
// written. A nil recorder leaves the orchestrator on its no-op default.
func runBuild(ctx context.Context, cfg *config.Config, outputDir string, dryRun bool, rec metrics.Recorder) error {
	applyBrowseDefault(cfg)

	slog.Info("Building documentation",
		logfields.Project(cfg.Project.Name),
		slog.String("version", cfg.Project.Version),
		slog.String("output", outputDir))

	root, err := buildTree(cfg)
	if err != nil {
		return err
	}

	var renderer render.PageRenderer = render.NewHTMLRenderer(outputDir)
	if dryRun {
		renderer = render.NoopRenderer{}
	}
	res := resolve.NewResolver(cfg)
	result, err := render.NewOrchestrator(cfg, res, renderer).WithRecorder(rec).Build(ctx, root)
	if err != nil {
		return err
	}

	slog.Info("Build complete",
		logfields.Project(cfg.Project.Name),
		logfields.Count(len(result.Pages)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return nil
}

// buildTree parses all configured headers into the documentation tree.
func buildTree(cfg *config.Config) (*doctree.Namespace, error) {
	parser, err := treesitter.NewParser(cfg, nil)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	units, err := parser.ParseProject()
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed translation units", logfields.Count(len(units)))

	return doctree.NewBuilder(cfg, nil).BuildRoot(units...), nil
}

// applyBrowseDefault derives project.tree from the input checkout's git
// metadata when the configuration leaves it empty.
func applyBrowseDefault(cfg *config.Config) {
	if cfg.Project.Tree != "" {
		return
	}
	tree, err := gitinfo.TreeURL(cfg.InputDir)
	if err != nil {
		slog.Debug("no browse base available", logfields.Error(err))
		return
	}
	cfg.Project.Tree = tree
}

// runNav prints the navigation tree as JSON to stdout.
func runNav(cfg *config.Config) error {
	applyBrowseDefault(cfg)
	root, err := buildTree(cfg)
	if err != nil {
		return err
	}
	data, err := nav.Build(root, resolve.NewResolver(cfg)).MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(os.Stdout, string(data)); err != nil {
		return err
	}
	return nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/flashdoc/internal/config"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"flash.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory for generated docs" default:"./docs"`
		DryRun bool   `help:"Build the tree and resolve URLs without writing output"`
	} `cmd:"" help:"Build documentation from the configured source roots"`

	Watch struct {
		Output      string `short:"o" help:"Output directory for generated docs" default:"./docs"`
		MetricsAddr string `help:"Serve Prometheus metrics on this address while watching (e.g. :9090)"`
	} `cmd:"" help:"Build, then rebuild whenever headers change"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Nav struct {
	} `cmd:"" help:"Print the navigation tree as JSON without building pages"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch kctx.Command() {
	case "build":
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		if err := runBuild(ctx, cfg, CLI.Build.Output, CLI.Build.DryRun, nil); err != nil {
			fatal("Build failed", err)
		}
	case "watch":
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		if err := runWatch(ctx, cfg, CLI.Watch.Output, CLI.Watch.MetricsAddr); err != nil {
			fatal("Watch failed", err)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			fatal("Init failed", err)
		}
		slog.Info("Configuration file created", "path", CLI.Config)
	case "nav":
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		if err := runNav(cfg); err != nil {
			fatal("Nav failed", err)
		}
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(CLI.Config)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

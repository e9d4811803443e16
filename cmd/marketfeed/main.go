// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/marketfeed"
	"github.com/poiesic/marketfeed/config"
	"github.com/poiesic/marketfeed/ingestion"
	"github.com/poiesic/marketfeed/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "marketfeed",
		Usage: "Financial news, economic calendar and indicator ingestion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run one ingestion pass over all sources",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "store",
						Aliases: []string{"s"},
						Usage:   "Path to BadgerDB store directory (overrides store_path)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Fetch and enrich but discard all writes",
					},
					&cli.StringSliceFlag{
						Name:  "phase",
						Usage: "Run only the given phases (news, calendar, indicators)",
					},
					&cli.StringFlag{
						Name:    "gemini-key",
						Usage:   "Enrichment service API key",
						EnvVars: []string{"GEMINI_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "ecos-key",
						Usage:   "Bank of Korea ECOS API key",
						EnvVars: []string{"ECOS_API_KEY"},
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Bound on the whole run (overrides run_timeout_sec)",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print a stored document",
				ArgsUsage: "<collection> <id>",
				Action:    showCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "store",
						Aliases:  []string{"s"},
						Usage:    "Path to BadgerDB store directory",
						Required: true,
					},
				},
			},
			{
				Name:      "init-config",
				Usage:     "Write the default configuration to a file",
				ArgsUsage: "<path>",
				Action:    initConfigCommand,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if store := c.String("store"); store != "" {
		cfg.StorePath = store
	}
	if c.Bool("dry-run") {
		cfg.StorePath = ""
	}
	if phases := c.StringSlice("phase"); len(phases) > 0 {
		cfg.Ingestion.Phases = phases
	}
	if timeout := c.Duration("timeout"); timeout > 0 {
		cfg.Ingestion.RunTimeoutSec = max(int(timeout.Seconds()), 1)
	}

	engine, err := marketfeed.NewEngine(
		marketfeed.WithConfig(cfg),
		marketfeed.WithEnrichmentKey(c.String("gemini-key")),
		marketfeed.WithECOSKey(c.String("ecos-key")),
		marketfeed.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	pipeline, err := engine.NewPipeline(ingestion.WithObserver(func(phase ingestion.Phase, state ingestion.PhaseState) {
		slog.Debug("phase transition", "phase", phase, "state", state)
	}))
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary := pipeline.Run(ctx)
	if engine.DryRun() {
		fmt.Fprintln(c.App.Writer, "dry run: nothing was written")
	}
	writeSummary(c.App.Writer, summary)

	if failed := summary.FailedPhases(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, p := range failed {
			names[i] = string(p)
		}
		return cli.Exit(fmt.Sprintf("phases failed: %s", strings.Join(names, ", ")), 1)
	}
	return nil
}

func showCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected <collection> <id>, got %d arguments", c.NArg())
	}
	collection, id := c.Args().Get(0), c.Args().Get(1)

	store, err := badger.Open(c.String("store"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	fields, err := store.Get(c.Context, collection, id)
	if err != nil {
		return fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}
	writeDocument(c.App.Writer, fields)
	return nil
}

func initConfigCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected <path>")
	}
	path := c.Args().First()
	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote default configuration to %s\n", path)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	level, err := config.ParseLogLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

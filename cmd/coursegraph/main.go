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
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/coursegraph"
	"github.com/poiesic/coursegraph/ai"
	"github.com/poiesic/coursegraph/core"
	"github.com/poiesic/coursegraph/indexing"
	"github.com/poiesic/coursegraph/search"
)

func main() {
	app := &cli.App{
		Name:  "coursegraph",
		Usage: "Semantic concept search for course material",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search concepts by meaning",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name or variant (default, fast, accurate, multilingual)",
						Value: "default",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity for a result",
						Value: 0.5,
					},
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Restrict to source types (official, teacher, student)",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Bypass the result cache for this query",
					},
				},
			},
			{
				Name:   "cache",
				Usage:  "Inspect the search result cache",
				Action: cacheCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name or variant",
						Value: "default",
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Remove all cached result sets",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Build the concept vector index",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name or variant",
						Value: "default",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of concepts to embed in each batch",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N concepts",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "skip-embedded",
						Usage: "Only embed concepts without a vector",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*coursegraph.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return coursegraph.NewDatabase(c.String("db"), coursegraph.WithAIConfig(aiConfig))
}

func parseSourceTypes(values []string) ([]core.SourceType, error) {
	var types []core.SourceType
	for _, value := range values {
		st, err := core.ParseSourceType(value)
		if err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("query argument is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	sourceTypes, err := parseSourceTypes(c.StringSlice("source"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}
	defer engine.Release()

	params := search.DefaultParams()
	params.Limit = c.Int("limit")
	params.Threshold = float32(c.Float64("threshold"))
	params.SourceTypes = sourceTypes
	params.UseCache = !c.Bool("no-cache")

	results, err := engine.Search(context.Background(), query, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Print(search.FormatResults(results))
	return nil
}

func cacheCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}
	defer engine.Release()

	cache := engine.Cache()
	if c.Bool("clear") {
		removed := cache.Clear()
		fmt.Printf("Removed %d cached result sets\n", removed)
		return nil
	}

	fmt.Print(formatCacheStats(cache.Stats()))
	return nil
}

func formatCacheStats(stats search.CacheStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cached result sets: %d (%d valid, %d expired)\n", stats.Total, stats.Valid, stats.Expired)
	fmt.Fprintf(&sb, "TTL: %v\n", stats.TTL)
	fmt.Fprintf(&sb, "Max size: %d\n", stats.MaxSize)
	if stats.Total > 0 {
		fmt.Fprintf(&sb, "Oldest entry age: %v\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(&sb, "Newest entry age: %v\n", stats.NewestAge.Round(time.Second))
	}
	return sb.String()
}

func indexCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	config := &indexing.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Model:          ai.ResolveModel(c.String("embedding-model")),
		SkipEmbedded:   c.Bool("skip-embedded"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	indexer, err := db.NewIndexer(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", config.Model)
	fmt.Fprintln(os.Stderr)

	if err := indexer.Run(context.Background()); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// Copyright 2026 MediQA Systems
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
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/mediqa/mediqa"
	"github.com/mediqa/mediqa/config"
	"github.com/mediqa/mediqa/core"
	"github.com/mediqa/mediqa/ingestion"
)

func main() {
	app := &cli.App{
		Name:  "mediqa",
		Usage: "Retrieval-grounded healthcare question answering",
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
				Usage:   "Path to YAML config file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Embed and store corpus chunks from a JSONL file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "chunks",
						Usage:    "Path to JSONL chunk records",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Delete all stored chunks before ingesting",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks per embedding request",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent embedding workers",
						Value: 4,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a single medical question",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "Longer structured answers instead of concise ones",
					},
					&cli.StringSliceFlag{
						Name:  "report",
						Usage: "Path to an extracted medical report text file (repeatable)",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive question answering session",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "Longer structured answers instead of concise ones",
					},
					&cli.StringSliceFlag{
						Name:  "report",
						Usage: "Path to an extracted medical report text file (repeatable)",
					},
				},
			},
			{
				Name:   "insights",
				Usage:  "Summarize insights across uploaded medical reports",
				Action: insightsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "report",
						Usage:    "Path to an extracted report text file (repeatable)",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// Secrets come from the environment; a .env file is a convenience, not
	// a requirement.
	_ = godotenv.Load()
	return setupLogger(c)
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

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"))
}

func openService(c *cli.Context) (*mediqa.Service, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	svc, err := mediqa.NewService(c.Context, c.String("db"), mediqa.WithConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func ingestCommand(c *cli.Context) error {
	svc, _, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if c.Bool("reset") {
		if err := svc.ChunkRepository().DeleteAll(c.Context); err != nil {
			return fmt.Errorf("failed to reset chunk store: %w", err)
		}
		fmt.Println("Cleared existing chunk store.")
	}

	file, err := os.Open(c.String("chunks"))
	if err != nil {
		return fmt.Errorf("failed to open chunks file: %w", err)
	}
	defer file.Close()

	chunks, err := ingestion.ReadChunkRecords(file)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no valid chunk records in %s", c.String("chunks"))
	}

	bar := progressbar.Default(int64(len(chunks)), "embedding")
	pipeline, err := svc.NewIngestionPipeline(
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithWorkers(c.Int("workers")),
		ingestion.WithProgress(func(done, total int) {
			_ = bar.Set(done)
		}),
	)
	if err != nil {
		return err
	}

	if err := pipeline.Run(c.Context, chunks); err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Printf("Ingested %d chunks.\n", len(chunks))
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: mediqa ask [flags] <question>")
	}

	svc, cfg, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	reportText, err := readReports(c.StringSlice("report"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, cfg.ModelTimeout())
	defer cancel()

	result := svc.Answer(ctx, question, reportText, responseMode(c))
	printAnswer(result)
	return nil
}

func chatCommand(c *cli.Context) error {
	svc, cfg, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	reportText, err := readReports(c.StringSlice("report"))
	if err != nil {
		return err
	}
	mode := responseMode(c)

	fmt.Println("Ask a medical question (\"exit\" to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		ctx, cancel := context.WithTimeout(c.Context, cfg.ModelTimeout())
		result := svc.Answer(ctx, question, reportText, mode)
		cancel()

		printAnswer(result)
		fmt.Println()
	}
	return scanner.Err()
}

func insightsCommand(c *cli.Context) error {
	svc, cfg, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	reportText, err := readReports(c.StringSlice("report"))
	if err != nil {
		return err
	}
	if strings.TrimSpace(reportText) == "" {
		return fmt.Errorf("report files contain no text")
	}

	ctx, cancel := context.WithTimeout(c.Context, cfg.ModelTimeout())
	defer cancel()

	result := svc.Insights(ctx, reportText)
	printAnswer(result)
	return nil
}

func responseMode(c *cli.Context) core.ResponseMode {
	if c.Bool("detailed") {
		return core.ModeDetailed
	}
	return core.ModeConcise
}

// readReports concatenates the given report text files the way multiple
// uploads are combined into one report context.
func readReports(paths []string) (string, error) {
	var texts []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read report file: %w", err)
		}
		texts = append(texts, string(data))
	}
	return strings.Join(texts, "\n\n"), nil
}

func printAnswer(result *core.Answer) {
	fmt.Println(result.Text)
	fmt.Printf("\nSource: %s | References: %s\n", result.SourceUsed, strings.Join(result.Sources, ", "))
}

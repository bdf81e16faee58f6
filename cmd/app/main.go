package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/deckdown/deckdown/internal"
	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/deckservice"
	"github.com/deckdown/deckdown/internal/export"
	"github.com/deckdown/deckdown/internal/index"
	"github.com/deckdown/deckdown/internal/mcpserver"
	"github.com/deckdown/deckdown/internal/storage"
	pkgconfig "github.com/deckdown/deckdown/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return cfg, nil
}

func loadDeck(path string) (*deck.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	return deck.Parse(string(data)), nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func check(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: deckdown check <deck.md>")
	}
	doc, err := loadDeck(path)
	if err != nil {
		return err
	}
	if len(doc.Errors) == 0 {
		fmt.Printf("%s: %d slides, no errors\n", path, len(doc.Slides))
		return nil
	}
	for _, e := range doc.Errors {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, e)
	}
	return fmt.Errorf("%d structural error(s)", len(doc.Errors))
}

func notes(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: deckdown notes <deck.md>")
	}
	doc, err := loadDeck(path)
	if err != nil {
		return err
	}
	for _, sl := range doc.Slides {
		if sl.Notes == "" {
			continue
		}
		heading := sl.Title()
		if heading == "" {
			heading = fmt.Sprintf("slide %d", sl.Index+1)
		}
		fmt.Printf("## %s\n\n%s\n\n", heading, strings.TrimSpace(sl.Notes))
	}
	return nil
}

func doExport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: deckdown export <deck.md>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadDeck(path)
	if err != nil {
		return err
	}

	opts := export.Options{
		Width:  int(cmd.Int("width")),
		Height: int(cmd.Int("height")),
		Global: cfg.Deck.Settings(),
	}
	if opts.Width == 0 {
		opts.Width = cfg.Export.Width
	}
	if opts.Height == 0 {
		opts.Height = cfg.Export.Height
	}

	out := cmd.String("out")
	switch format := cmd.String("format"); format {
	case "html":
		if out == "" {
			out = strings.TrimSuffix(path, ".md") + ".html"
		}
		if err := os.WriteFile(out, export.HTML(doc, opts), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	case "text":
		if out == "" {
			out = strings.TrimSuffix(path, ".md") + "-text"
		}
		if err := export.Text(ctx, doc, out, opts); err != nil {
			return err
		}
		fmt.Printf("wrote %d slides to %s\n", len(doc.Slides), out)
		return nil
	case "svg":
		if out == "" {
			out = strings.TrimSuffix(path, ".md") + "-svg"
		}
		if err := export.SVG(ctx, doc, out, opts); err != nil {
			return err
		}
		fmt.Printf("wrote %d slides to %s\n", len(doc.Slides), out)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want html, text, or svg)", format)
	}
}

func mcp(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return fmt.Errorf("create library dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Logs go to stderr: stdout belongs to the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := deckservice.NewService(store, db, cfg.Deck.Settings(), deckservice.Geometry{
		Width:  cfg.Export.Width,
		Height: cfg.Export.Height,
	})
	return mcpserver.New(svc, store).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "deckdown",
		Usage: "Markdown slide decks: serve, check, export, and present from plain .md files",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server with live reload and full-text search",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "check",
				Usage:     "Parse a deck and report structural errors",
				ArgsUsage: "<deck.md>",
				Action:    check,
			},
			{
				Name:      "notes",
				Usage:     "Print the speaker notes of a deck",
				ArgsUsage: "<deck.md>",
				Action:    notes,
			},
			{
				Name:      "export",
				Usage:     "Render a deck to standalone HTML, text frames, or SVG files",
				ArgsUsage: "<deck.md>",
				Action:    doExport,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: html, text, or svg",
						Value:   "html",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (html) or directory (text, svg)",
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Slide width in character cells",
					},
					&cli.IntFlag{
						Name:  "height",
						Usage: "Slide height in character cells",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdio for LLM integration",
				Action: mcp,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/designa/internal"
	"github.com/starford/designa/internal/artstation"
	"github.com/starford/designa/internal/catalog"
	"github.com/starford/designa/internal/mcpserver"
	pkgconfig "github.com/starford/designa/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// runMCP serves the catalog over MCP on stdio. Stdout carries the protocol,
// so logs go to stderr.
func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel})))

	provider, err := catalog.NewFS(cfg.Catalog.Dir)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	cat, err := catalog.New(provider)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	return mcpserver.New(cat).ServeStdio()
}

// runImportArtStation replaces artworks.json with the user's public
// ArtStation projects. Images go to <static dir>/gallery_artworks.
func runImportArtStation(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel})))

	dataDir := cmd.String("data-dir")
	if dataDir == "" {
		dataDir = cfg.Catalog.Dir
	}
	imagesDir := cmd.String("images-dir")
	if imagesDir == "" {
		if cfg.Static.Dir == "" {
			return fmt.Errorf("static.dir is empty, pass --images-dir")
		}
		imagesDir = filepath.Join(cfg.Static.Dir, "gallery_artworks")
	}

	fs, err := catalog.NewFS(dataDir)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	client := artstation.New(cmd.String("username"),
		artstation.WithBaseURL(cmd.String("base-url")),
		artstation.WithRetry(int(cmd.Int("attempts")), cmd.Duration("backoff")),
	)
	artworks, err := client.Import(ctx, artstation.ImportOptions{
		ImagesDir: imagesDir,
		URLPrefix: cmd.String("url-prefix"),
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	if err := catalog.WriteArtworks(fs, artworks); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	slog.Info("ArtStation import finished",
		slog.Int("artworks", len(artworks)),
		slog.String("file", filepath.Join(fs.Root(), catalog.ArtworksFile)))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "designa",
		Usage:  "Portfolio backend for a game-art studio: gallery, workshops, artwork viewer and contact form",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the catalog to LLM clients over MCP (stdio)",
				Action: runMCP,
			},
			{
				Name:  "import",
				Usage: "Import artworks from an external portfolio",
				Commands: []*cli.Command{
					{
						Name:   "artstation",
						Usage:  "Replace artworks.json with a user's public ArtStation projects",
						Action: runImportArtStation,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "username",
								Aliases:  []string{"u"},
								Usage:    "ArtStation username",
								Required: true,
								Sources:  cli.EnvVars("ARTSTATION_USERNAME"),
							},
							&cli.StringFlag{
								Name:  "data-dir",
								Usage: "Fixture directory, defaults to catalog.dir",
							},
							&cli.StringFlag{
								Name:  "images-dir",
								Usage: "Image directory, defaults to <static.dir>/gallery_artworks",
							},
							&cli.StringFlag{
								Name:  "url-prefix",
								Usage: "URL prefix written into the artwork entries",
								Value: "/static/gallery_artworks",
							},
							&cli.StringFlag{
								Name:  "base-url",
								Usage: "ArtStation base URL",
								Value: artstation.DefaultBaseURL,
							},
							&cli.IntFlag{
								Name:  "attempts",
								Usage: "Attempts per request",
								Value: 3,
							},
							&cli.DurationFlag{
								Name:  "backoff",
								Usage: "Base backoff between attempts",
								Value: 500 * time.Millisecond,
							},
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

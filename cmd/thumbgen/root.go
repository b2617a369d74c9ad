package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/config"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu/soft"
	"github.com/Faultbox/buildings-gallery/internal/fetch"
	"github.com/Faultbox/buildings-gallery/internal/logger"
	"github.com/Faultbox/buildings-gallery/internal/thumbnail"
)

type options struct {
	flags       config.Flags
	out         string
	width       int
	height      int
	supersample int
	workers     int
}

func newRootCmd() *cobra.Command {
	opts := &options{flags: config.Flags{MaxSurfaces: -1}}

	cmd := &cobra.Command{
		Use:   "thumbgen [id...]",
		Short: "Render static thumbnails for the buildings catalog",
		Long: `thumbgen loads the buildings manifest and renders one PNG per entry into
the output directory, named <id>.png. With ids given, only those entries
are rendered.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.flags.Config, "config", "", "path to config file")
	f.StringVar(&opts.flags.Manifest, "manifest", "", "path or URL of the buildings manifest")
	f.StringVar(&opts.flags.AssetRoot, "assets", "", "directory or base URL for model paths")
	f.BoolVar(&opts.flags.Debug, "debug", false, "enable debug logging")
	f.StringVarP(&opts.out, "out", "o", "", "output directory (default from config)")
	f.IntVar(&opts.width, "width", 0, "thumbnail width")
	f.IntVar(&opts.height, "height", 0, "thumbnail height")
	f.IntVar(&opts.supersample, "supersample", 0, "render scale before downsampling")
	f.IntVarP(&opts.workers, "workers", "j", 0, "concurrent renders")

	cmd.AddCommand(newInitCmd())
	return cmd
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if len(args) == 0 {
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s/config.yaml\n", config.ConfigDir())
				return nil
			}
			if err := cfg.SaveTo(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}

// override replaces cfg fields with the flags that were set.
func (o *options) override(cfg *config.Config) {
	if o.out != "" {
		cfg.Thumbnail.OutputDir = o.out
	}
	if o.width > 0 {
		cfg.Thumbnail.Width = o.width
	}
	if o.height > 0 {
		cfg.Thumbnail.Height = o.height
	}
	if o.supersample > 0 {
		cfg.Thumbnail.Supersample = o.supersample
	}
	if o.workers > 0 {
		cfg.Thumbnail.Workers = o.workers
	}
}

func generate(cmd *cobra.Command, opts *options, ids []string) error {
	cfg, err := config.Load(&opts.flags)
	if err != nil {
		return err
	}
	opts.override(cfg)

	// Console logs go to stderr so stdout carries only the summary
	if err := logger.InitWith(logger.Options{
		Level:   cfg.Logging.Level,
		Console: os.Stderr,
		File:    fileConfig(cfg.Logging.LogFile),
	}); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Named("thumbgen")

	ctx := cmd.Context()
	client := &http.Client{Timeout: cfg.Gallery.FetchTimeout}

	m, err := catalog.Load(ctx, fetch.New(".", client), cfg.Gallery.Manifest)
	if err != nil {
		return err
	}
	buildings, err := selectBuildings(m, ids)
	if err != nil {
		return err
	}

	loader := asset.NewLoader(fetch.New(cfg.Gallery.AssetRoot, client), asset.WithLogger(log))
	defer loader.Close()

	r := thumbnail.New(loader, soft.New(),
		thumbnail.WithSize(cfg.Thumbnail.Width, cfg.Thumbnail.Height),
		thumbnail.WithSupersample(cfg.Thumbnail.Supersample),
		thumbnail.WithLogger(log),
	)

	log.Info("rendering thumbnails",
		zap.Int("buildings", len(buildings)),
		zap.String("out", cfg.Thumbnail.OutputDir),
		zap.Int("workers", cfg.Thumbnail.Workers),
	)
	res, err := r.WriteAll(ctx, buildings, cfg.Thumbnail.OutputDir, cfg.Thumbnail.Workers)
	fmt.Fprintf(cmd.OutOrStdout(), "%d written, %d failed\n", len(res.Written), len(res.Failed))
	return err
}

func fileConfig(path string) logger.FileConfig {
	if path == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(path)
}

// selectBuildings returns the entries named by ids, or all of them.
func selectBuildings(m *catalog.Manifest, ids []string) ([]catalog.Building, error) {
	if len(ids) == 0 {
		return m.Buildings, nil
	}
	out := make([]catalog.Building, 0, len(ids))
	for _, id := range ids {
		b, err := m.Find(id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

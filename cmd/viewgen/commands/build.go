package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"viewgen/internal/builder"
	"viewgen/internal/config"
	"viewgen/internal/watch"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Clean  bool `help:"Empty the output directory before writing pages"`
	Unsafe bool `help:"Disable HTML sanitization of markdown views"`
	Watch  bool `short:"w" help:"Rebuild when views, includes or the config change"`
}

func (b *BuildCmd) Run(ctx context.Context, _ *Globals, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	opts := builder.BuildOptions{CleanDestination: b.Clean, Unsafe: b.Unsafe}

	fmt.Println("--- Generating pages from views ---")
	if err := build(ctx, cfg, opts); err != nil {
		if !b.Watch {
			return err
		}
		log.Error().Err(err).Msg("Initial build failed")
	}
	if !b.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := b.watcher(ctx, root, cfg, opts)
	fmt.Println("Watching for changes (press Ctrl+C to stop)...")
	return w.Run(ctx)
}

// watcher rebuilds on changes to the sources. The paths a build writes are
// ignored, and that set follows the config as it is reloaded.
func (b *BuildCmd) watcher(ctx context.Context, root *CLI, cfg config.Config, opts builder.BuildOptions) *watch.Watcher {
	ignore := writtenBy(cfg)
	return &watch.Watcher{
		Paths: watchPaths(root.Config, cfg),
		Rebuild: func() error {
			// Config edits take effect on the next rebuild.
			fresh, err := root.loadConfig()
			if err != nil {
				return err
			}
			cfg = fresh
			ignore = writtenBy(cfg)
			return build(ctx, cfg, opts)
		},
		Ignore: func(path string) bool { return ignore(path) },
	}
}

func build(ctx context.Context, cfg config.Config, opts builder.BuildOptions) error {
	res, err := builder.BuildSite(ctx, cfg, opts)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Success! Generated %d pages.\n", len(res.Pages))
	return nil
}

func watchPaths(configFile string, cfg config.Config) []string {
	return []string{cfg.ViewsDir(), cfg.IncludesDir(), configFile}
}

// writtenBy reports whether a build with cfg writes path: anything in the
// output directory and the manifest, wherever it is configured.
func writtenBy(cfg config.Config) func(string) bool {
	inOutput := underDir(cfg.OutputDir())
	manifest := cfg.ManifestPath()
	if manifest != "" {
		if abs, err := filepath.Abs(manifest); err == nil {
			manifest = abs
		}
	}
	return func(path string) bool {
		if inOutput(path) {
			return true
		}
		if manifest == "" {
			return false
		}
		abs, err := filepath.Abs(path)
		return err == nil && abs == manifest
	}
}

// underDir reports whether a path lies inside dir, which keeps the build's
// own writes from triggering another build.
func underDir(dir string) func(string) bool {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		return abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator))
	}
}

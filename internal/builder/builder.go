// internal/builder/builder.go
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"viewgen/internal/config"
	vgerrors "viewgen/internal/errors"
	"viewgen/internal/logfields"
	"viewgen/internal/manifest"
	"viewgen/internal/pages"
	"viewgen/internal/render"
)

type BuildOptions struct {
	CleanDestination bool
	// Unsafe disables sanitizing of markdown output.
	Unsafe bool
}

// Result summarizes a build.
type Result struct {
	Descriptors []pages.Descriptor
	// Pages are the written output paths, in descriptor order.
	Pages    []string
	Manifest string
}

// Generator returns the page generator described by cfg, restricted to the
// extensions r can render.
func Generator(cfg config.Config, r *render.Renderer) pages.Generator {
	return pages.Generator{
		Dir:        cfg.ViewsDir(),
		Filter:     cfg.Filter(),
		Extensions: r.Extensions(),
		Params:     cfg.Params(),
	}
}

// BuildSite generates the page descriptors for the views directory and
// renders each of them into the output directory.
//
// Generation is all-or-nothing: a missing views directory or a bad template
// name aborts before anything is written. Rendering stops at the first
// failing page.
func BuildSite(ctx context.Context, cfg config.Config, opts BuildOptions) (Result, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	outputDir := cfg.OutputDir()

	r, err := render.New(render.OptionsFromConfig(cfg, opts.Unsafe))
	if err != nil {
		return Result{}, err
	}

	descriptors, err := Generator(cfg, r).Generate()
	if err != nil {
		return Result{}, err
	}
	log.Debug().Str(logfields.KeyDir, cfg.ViewsDir()).Strs(logfields.KeyPages, pages.Outputs(descriptors)).Msg("Generated page descriptors")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return Result{}, outputError("create", outputDir, err)
	}
	if opts.CleanDestination {
		fmt.Println("Cleaning destination directory...")
		if err := cleanDir(outputDir); err != nil {
			return Result{}, err
		}
	}

	res := Result{Descriptors: descriptors, Pages: make([]string, 0, len(descriptors))}
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path, err := r.RenderPage(d, outputDir)
		if err != nil {
			return res, err
		}
		res.Pages = append(res.Pages, path)
	}

	if path := cfg.ManifestPath(); path != "" {
		if err := manifest.Write(path, manifest.FromDescriptors(descriptors, filepath.Dir(path))); err != nil {
			return res, vgerrors.Wrap(err, vgerrors.CategoryFileSystem, vgerrors.SeverityFatal, "could not write manifest").
				WithContext("path", path)
		}
		res.Manifest = path
	}

	log.Info().
		Int(logfields.KeyPages, len(res.Pages)).
		Str(logfields.KeyOutput, outputDir).
		Int64(logfields.KeyDuration, time.Since(start).Milliseconds()).
		Msg("Build finished")
	return res, nil
}

// cleanDir removes the contents of dir but keeps dir itself, so a watcher
// or server holding it stays valid.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return outputError("read", dir, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return outputError("clean", dir, err)
		}
	}
	return nil
}

func outputError(op, dir string, err error) error {
	return vgerrors.Wrap(err, vgerrors.CategoryFileSystem, vgerrors.SeverityFatal, "output directory "+op+" failed").
		WithContext("path", dir)
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"viewgen/internal/builder"
	"viewgen/internal/manifest"
	"viewgen/internal/pages"
	"viewgen/internal/render"
)

// ListCmd implements the 'list' command, a dry run of page generation.
type ListCmd struct {
	Format string `help:"Output format (text, yaml)" enum:"text,yaml" default:"text"`

	out io.Writer
}

func (l *ListCmd) Run(_ context.Context, _ *Globals, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	r, err := render.New(render.OptionsFromConfig(cfg, false))
	if err != nil {
		return err
	}
	descriptors, err := builder.Generator(cfg, r).Generate()
	if err != nil {
		return err
	}

	out := l.out
	if out == nil {
		out = os.Stdout
	}
	if l.Format == "yaml" {
		return manifest.Encode(out, manifest.FromDescriptors(descriptors, cfg.ViewsDir()))
	}
	return printDescriptors(out, descriptors, cfg.ViewsDir())
}

func printDescriptors(w io.Writer, ds []pages.Descriptor, viewsDir string) error {
	for _, d := range ds {
		tmpl := d.Template
		if rel, err := filepath.Rel(viewsDir, d.Template); err == nil {
			tmpl = rel
		}
		if _, err := fmt.Fprintf(w, "%-30s -> %s\n", tmpl, d.Filename); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d pages\n", len(ds))
	return err
}

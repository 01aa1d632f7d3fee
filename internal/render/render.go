// Package render turns page descriptors into HTML files.
//
// The engine is chosen by the descriptor's extension. Go templates, markdown
// and Nunjucks-style templates share the partials found in the includes
// directory, so a header written once can be pulled into every page.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"viewgen/internal/config"
	vgerrors "viewgen/internal/errors"
	"viewgen/internal/logfields"
	"viewgen/internal/pages"
)

// ErrRender wraps every failure to render a single page.
var ErrRender = errors.New("render failed")

// Options configures a Renderer.
type Options struct {
	// IncludesDir holds partials shared by all pages. It may be missing.
	IncludesDir string
	// PagesDir is the sub-directory of the output directory pages go to.
	PagesDir string
	Site     config.SiteConfig
	Assets   config.Assets
	Beautify bool
	// Unsafe disables HTML sanitizing of markdown output.
	Unsafe bool
}

// OptionsFromConfig maps the build configuration to renderer options.
func OptionsFromConfig(cfg config.Config, unsafe bool) Options {
	return Options{
		IncludesDir: cfg.IncludesDir(),
		PagesDir:    cfg.PagesDir,
		Site:        cfg.Site,
		Assets:      cfg.Assets,
		Beautify:    cfg.Beautify,
		Unsafe:      unsafe,
	}
}

type engine interface {
	render(w io.Writer, d pages.Descriptor, data *PageData) error
}

// Renderer renders descriptors with the engine registered for their
// extension.
type Renderer struct {
	opts    Options
	engines map[string]engine
}

// New parses the includes directory and registers the built-in engines.
func New(opts Options) (*Renderer, error) {
	goEngine, err := newGoEngine(opts.IncludesDir)
	if err != nil {
		return nil, vgerrors.Wrap(err, vgerrors.CategoryTemplate, vgerrors.SeverityFatal, "could not parse includes").
			WithContext("dir", opts.IncludesDir)
	}
	mdEngine := newMarkdownEngine(goEngine, opts.Unsafe)
	njkEngine := newPongoEngine(opts.IncludesDir)

	return &Renderer{
		opts: opts,
		engines: map[string]engine{
			"html":   goEngine,
			"htm":    goEngine,
			"gohtml": goEngine,
			"tmpl":   goEngine,
			"md":     mdEngine,
			"njk":    njkEngine,
		},
	}, nil
}

// Extensions returns the template extensions this renderer handles, sorted.
func (r *Renderer) Extensions() []string {
	exts := make([]string, 0, len(r.engines))
	for ext := range r.engines {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// OutputPath is where RenderPage writes d under outDir.
func (r *Renderer) OutputPath(d pages.Descriptor, outDir string) string {
	return filepath.Join(outDir, r.opts.PagesDir, d.Filename)
}

// Render writes the finished HTML for d to w.
func (r *Renderer) Render(w io.Writer, d pages.Descriptor) error {
	eng, ok := r.engines[d.Ext]
	if !ok {
		return r.fail(d, fmt.Errorf("%w: .%s", pages.ErrUnsupportedTemplate, d.Ext))
	}

	data := r.pageData(d)
	var buf bytes.Buffer
	if err := eng.render(&buf, d, data); err != nil {
		return r.fail(d, err)
	}

	out := buf.Bytes()
	if d.Inject {
		out = injectAssets(out, r.opts.Assets, data.BaseHref)
	}
	if r.opts.Beautify {
		pretty, err := Beautify(out)
		if err != nil {
			return r.fail(d, fmt.Errorf("beautify: %w", err))
		}
		out = pretty
	}

	_, err := w.Write(out)
	return err
}

// RenderPage renders d into its output file under outDir and returns the
// written path.
func (r *Renderer) RenderPage(d pages.Descriptor, outDir string) (string, error) {
	outPath := r.OutputPath(d, outDir)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", vgerrors.Wrap(err, vgerrors.CategoryFileSystem, vgerrors.SeverityFatal, "could not create output directory").
			WithContext("path", filepath.Dir(outPath))
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return "", vgerrors.Wrap(err, vgerrors.CategoryFileSystem, vgerrors.SeverityFatal, "could not write page").
			WithContext("path", outPath)
	}

	logfields.Page(log.Debug(), d.Template, outPath).Int("bytes", buf.Len()).Msg("Rendered page")
	return outPath, nil
}

func (r *Renderer) pageData(d pages.Descriptor) *PageData {
	return &PageData{
		Site:        r.opts.Site,
		Page:        d,
		Title:       titleFromName(d.Name),
		Description: r.opts.Site.Description,
		BaseHref:    baseHref(r.opts.PagesDir),
		IncludePath: d.Params[pages.ParamIncludePath],
		Params:      d.Params,
	}
}

func (r *Renderer) fail(d pages.Descriptor, err error) error {
	return vgerrors.Wrap(fmt.Errorf("%w: %w", ErrRender, err), vgerrors.CategoryRender, vgerrors.SeverityError, "could not render page").
		WithContext("template", d.Template).
		WithContext("output", d.Filename)
}

// titleFromName turns "about-us" or "about_us" into "About Us".
func titleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// baseHref computes the relative path from a page in pagesDir back to the
// output root.
func baseHref(pagesDir string) string {
	dir := filepath.Clean(pagesDir)
	if dir == "." || dir == "" {
		return ""
	}
	depth := strings.Count(dir, string(os.PathSeparator)) + 1
	return strings.Repeat("../", depth)
}

// Package pages maps a directory of view templates to the HTML pages a build
// should produce.
//
// Every template file in the views directory becomes one Descriptor whose
// output filename is derived from the template's base name. Descriptors are
// computed from a single directory snapshot and never cached; the rendering
// step consumes them and is the only thing that writes files.
package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	vgerrors "viewgen/internal/errors"
)

var (
	// ErrDirectoryNotFound is returned when the views directory does not
	// exist or is not a directory.
	ErrDirectoryNotFound = errors.New("template directory not found")

	// ErrListDirectory is returned when the views directory exists but
	// cannot be listed.
	ErrListDirectory = errors.New("template directory cannot be listed")

	// ErrInvalidTemplateName is returned for a filename that does not
	// split into a base name and an extension.
	ErrInvalidTemplateName = errors.New("invalid template name")

	// ErrUnsupportedTemplate is returned for a template whose extension
	// no renderer handles.
	ErrUnsupportedTemplate = errors.New("unsupported template type")

	// ErrDuplicateOutputName is returned when two templates would produce
	// the same output page.
	ErrDuplicateOutputName = errors.New("duplicate output name")
)

// DefaultExtensions are the template types understood by the bundled
// renderer.
var DefaultExtensions = []string{"html", "htm", "gohtml", "tmpl", "md", "njk"}

// ParamIncludePath is the Params key under which the include path constant is
// handed to every page.
const ParamIncludePath = "includePath"

// Descriptor describes one output page.
type Descriptor struct {
	// Name is the template's base name, without extension.
	Name string `yaml:"name"`
	// Ext selects the rendering engine. It is stored lower-cased.
	Ext string `yaml:"ext"`
	// Filename is the output page, always Name + ".html".
	Filename string `yaml:"filename"`
	// Template is the absolute path of the source template.
	Template string `yaml:"template"`
	// Inject asks the renderer to add bundled script and style references.
	// Generated descriptors never set it; templates own their asset links.
	Inject bool `yaml:"inject"`
	// Params are build-wide constants made available to the template.
	Params map[string]string `yaml:"params,omitempty"`
}

// Generator produces Descriptors for the templates in Dir.
type Generator struct {
	// Dir is the views directory. Only its direct entries are considered.
	Dir string
	// Filter decides which filenames become pages. Nil keeps everything.
	Filter Filter
	// Extensions is the supported template set. Empty means
	// DefaultExtensions.
	Extensions []string
	// Params is copied into every Descriptor.
	Params map[string]string
}

// Generate lists the templates in dir and returns one Descriptor per file
// that passes filter, using the default extension set.
func Generate(dir string, filter Filter) ([]Descriptor, error) {
	return Generator{Dir: dir, Filter: filter}.Generate()
}

// Generate lists the views directory and returns its page descriptors,
// ordered by template filename.
//
// A missing directory, an unparseable filename, an unsupported extension or
// two templates sharing an output name all fail the whole call; no partial
// result is returned.
func (g Generator) Generate() ([]Descriptor, error) {
	dir, err := filepath.Abs(g.Dir)
	if err != nil {
		return nil, vgerrors.Wrap(err, vgerrors.CategoryFileSystem, vgerrors.SeverityFatal, "resolve template directory").
			WithContext("dir", g.Dir)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, dirNotFound(g.Dir, err)
	case err != nil:
		return nil, listFailed(g.Dir, err)
	case !info.IsDir():
		return nil, dirNotFound(g.Dir, fmt.Errorf("%s is not a directory", g.Dir))
	}

	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, listFailed(g.Dir, err)
	}

	supported := g.extensionSet()
	outputs := make(map[string]string, len(entries))
	descriptors := make([]Descriptor, 0, len(entries))

	for _, entry := range entries {
		filename := entry.Name()
		if strings.HasPrefix(filename, ".") {
			continue
		}
		isFile, err := isTemplateFile(dir, entry)
		if err != nil {
			return nil, listFailed(g.Dir, err)
		}
		if !isFile {
			continue
		}
		if g.Filter != nil && !g.Filter(filename) {
			continue
		}

		name, ext, err := SplitName(filename)
		if err != nil {
			return nil, vgerrors.Wrap(err, vgerrors.CategoryTemplate, vgerrors.SeverityFatal, "cannot derive page name").
				WithContext("template", filename)
		}
		if !supported[ext] {
			return nil, vgerrors.Wrap(fmt.Errorf("%w: .%s", ErrUnsupportedTemplate, ext), vgerrors.CategoryTemplate, vgerrors.SeverityFatal, "no renderer for template").
				WithContext("template", filename).
				WithContext("supported", g.extensions())
		}

		output := name + ".html"
		key := strings.ToLower(output)
		if prev, ok := outputs[key]; ok {
			return nil, vgerrors.Wrap(fmt.Errorf("%w: %s and %s both produce %s", ErrDuplicateOutputName, prev, filename, output), vgerrors.CategoryTemplate, vgerrors.SeverityFatal, "two templates produce the same page").
				WithContext("output", output)
		}
		outputs[key] = filename

		descriptors = append(descriptors, Descriptor{
			Name:     name,
			Ext:      ext,
			Filename: output,
			Template: filepath.Join(dir, filename),
			Inject:   false,
			Params:   copyParams(g.Params),
		})
	}

	return descriptors, nil
}

// SplitName splits a template filename on its last dot. The extension is
// returned lower-cased; the base name keeps its case.
func SplitName(filename string) (name, ext string, err error) {
	i := strings.LastIndex(filename, ".")
	if i <= 0 || i == len(filename)-1 {
		return "", "", fmt.Errorf("%w: %q needs the form <name>.<ext>", ErrInvalidTemplateName, filename)
	}
	return filename[:i], strings.ToLower(filename[i+1:]), nil
}

func (g Generator) extensions() []string {
	if len(g.Extensions) == 0 {
		return DefaultExtensions
	}
	return g.Extensions
}

func (g Generator) extensionSet() map[string]bool {
	set := make(map[string]bool)
	for _, ext := range g.extensions() {
		set[normalizeExt(ext)] = true
	}
	return set
}

// isTemplateFile reports whether entry is a regular file, following symlinks.
func isTemplateFile(dir string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func copyParams(params map[string]string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func dirNotFound(dir string, cause error) error {
	return vgerrors.Wrap(fmt.Errorf("%w: %w", ErrDirectoryNotFound, cause), vgerrors.CategoryFileSystem, vgerrors.SeverityFatal, "template directory not found").
		WithContext("dir", dir)
}

func listFailed(dir string, cause error) error {
	return vgerrors.Wrap(fmt.Errorf("%w: %w", ErrListDirectory, cause), vgerrors.CategoryFileSystem, vgerrors.SeverityFatal, "cannot list template directory").
		WithContext("dir", dir)
}

// Outputs returns the output filenames of ds in order.
func Outputs(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Filename)
	}
	return out
}

// Supports reports whether ext is one of the DefaultExtensions.
func Supports(ext string) bool {
	return slices.Contains(DefaultExtensions, normalizeExt(ext))
}

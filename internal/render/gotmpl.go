package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"viewgen/internal/pages"
)

// layoutTemplate is the template an includes layout defines to wrap
// markdown pages.
const layoutTemplate = "main"

var goTemplateExts = map[string]bool{".html": true, ".htm": true, ".gohtml": true, ".tmpl": true}

// goEngine renders html/template views. Every Go template under the
// includes directory is parsed once, named by its slash-separated path
// relative to that directory, and cloned for each page.
type goEngine struct {
	base *template.Template
}

func newGoEngine(includesDir string) (*goEngine, error) {
	base := template.New("")
	if includesDir == "" {
		return &goEngine{base: base}, nil
	}

	err := filepath.WalkDir(includesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A project without includes is fine.
			if path == includesDir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !goTemplateExts[filepath.Ext(path)] {
			return nil
		}
		rel, err := filepath.Rel(includesDir, path)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := base.New(filepath.ToSlash(rel)).Parse(string(src)); err != nil {
			return fmt.Errorf("parse include %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &goEngine{base: base}, nil
}

// hasLayout reports whether the includes define the markdown layout.
func (e *goEngine) hasLayout() bool {
	return e.base.Lookup(layoutTemplate) != nil
}

func (e *goEngine) render(w io.Writer, d pages.Descriptor, data *PageData) error {
	src, err := os.ReadFile(d.Template)
	if err != nil {
		return err
	}
	tmpl, err := e.base.Clone()
	if err != nil {
		return err
	}
	page, err := tmpl.New("page:" + filepath.Base(d.Template)).Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(d.Template), err)
	}
	return page.Execute(w, data)
}

// renderLayout executes the includes layout with data.
func (e *goEngine) renderLayout(w io.Writer, data *PageData) error {
	tmpl, err := e.base.Clone()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, layoutTemplate, data)
}

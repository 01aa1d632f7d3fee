package render

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/flosch/pongo2/v6"

	"viewgen/internal/pages"
)

// pongoEngine renders Nunjucks-style (.njk) views with pongo2. Include and
// extends tags resolve against the includes directory, or against the page's
// own directory when there are no includes.
type pongoEngine struct {
	includesDir string

	// one template set per views directory, so parsed includes are reused
	// across pages
	sets   map[string]*pongo2.TemplateSet
	setsMu sync.Mutex
}

func newPongoEngine(includesDir string) *pongoEngine {
	return &pongoEngine{
		includesDir: includesDir,
		sets:        map[string]*pongo2.TemplateSet{},
	}
}

func (e *pongoEngine) set(viewsDir string) (*pongo2.TemplateSet, error) {
	e.setsMu.Lock()
	defer e.setsMu.Unlock()
	if s, ok := e.sets[viewsDir]; ok {
		return s, nil
	}

	var loaders []pongo2.TemplateLoader
	if info, err := os.Stat(e.includesDir); err == nil && info.IsDir() {
		inc, err := pongo2.NewLocalFileSystemLoader(e.includesDir)
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, inc)
	}
	views, err := pongo2.NewLocalFileSystemLoader(viewsDir)
	if err != nil {
		return nil, err
	}
	loaders = append(loaders, views)

	s := pongo2.NewSet(viewsDir, loaders...)
	e.sets[viewsDir] = s
	return s, nil
}

func (e *pongoEngine) render(w io.Writer, d pages.Descriptor, data *PageData) error {
	set, err := e.set(filepath.Dir(d.Template))
	if err != nil {
		return err
	}
	tpl, err := set.FromFile(d.Template)
	if err != nil {
		return err
	}
	return tpl.ExecuteWriter(pongoContext(data), w)
}

// pongoContext exposes PageData under the snake_case names Nunjucks
// templates conventionally use.
func pongoContext(data *PageData) pongo2.Context {
	params := make(map[string]any, len(data.Params))
	for k, v := range data.Params {
		params[k] = v
	}
	return pongo2.Context{
		"site": map[string]any{
			"title":       data.Site.Title,
			"author":      data.Site.Author,
			"baseurl":     data.Site.BaseURL,
			"description": data.Site.Description,
		},
		"page": map[string]any{
			"name":     data.Page.Name,
			"filename": data.Page.Filename,
		},
		"title":        data.Title,
		"description":  data.Description,
		"base_href":    data.BaseHref,
		"include_path": data.IncludePath,
		"params":       params,
	}
}

// internal/render/models.go
package render

import (
	"html/template"

	"viewgen/internal/config"
	"viewgen/internal/pages"
)

// PageMeta holds front matter from a markdown view. Keys other than the
// named ones land in Params.
type PageMeta struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Params      map[string]any `yaml:",inline"`
}

// PageData is passed to every template engine.
type PageData struct {
	Site        config.SiteConfig
	Page        pages.Descriptor
	Title       string
	Description string
	// BaseHref is the relative path from the page back to the output root,
	// e.g. "../" when pages are written under pages_dir.
	BaseHref    string
	IncludePath string
	Params      map[string]string
	// Meta is markdown front matter beyond title and description.
	Meta map[string]any
	// Content is the rendered markdown body; empty for other engines.
	Content template.HTML
}

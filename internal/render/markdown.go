// internal/render/markdown.go
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"

	"viewgen/internal/pages"
)

var frontMatterDelim = []byte("---")

// markdownEngine renders markdown views. The body goes through goldmark and,
// unless unsafe, bluemonday; it is then wrapped in the includes layout when
// one is defined.
type markdownEngine struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
	layout    *goEngine
}

func newMarkdownEngine(layout *goEngine, unsafe bool) *markdownEngine {
	e := &markdownEngine{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(
					util.Prioritized(newViewLinkTransformer(pages.DefaultExtensions...), 100),
				),
			),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		layout: layout,
	}
	if !unsafe {
		e.sanitizer = bluemonday.UGCPolicy()
	}
	return e
}

func (e *markdownEngine) render(w io.Writer, d pages.Descriptor, data *PageData) error {
	raw, err := os.ReadFile(d.Template)
	if err != nil {
		return err
	}

	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return err
	}
	if meta.Title != "" {
		data.Title = meta.Title
	}
	if meta.Description != "" {
		data.Description = meta.Description
	}
	data.Meta = meta.Params

	var out bytes.Buffer
	if err := e.md.Convert(body, &out); err != nil {
		return fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	content := out.Bytes()
	if e.sanitizer != nil {
		content = e.sanitizer.SanitizeBytes(content)
	}
	data.Content = template.HTML(content)

	if e.layout != nil && e.layout.hasLayout() {
		return e.layout.renderLayout(w, data)
	}
	_, err = w.Write(content)
	return err
}

// splitFrontMatter separates a leading "---" YAML block from the markdown
// body. Content without front matter is returned unchanged.
func splitFrontMatter(raw []byte) (PageMeta, []byte, error) {
	meta := PageMeta{}
	trimmed := bytes.TrimLeft(raw, "\ufeff")
	if !bytes.HasPrefix(trimmed, frontMatterDelim) {
		return meta, raw, nil
	}

	rest := trimmed[len(frontMatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return meta, raw, nil
	}
	rest = rest[nl+1:]

	end := -1
	for off := 0; off < len(rest); {
		line := rest[off:]
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), frontMatterDelim) {
			end = off
			break
		}
		off += len(line) + 1
	}
	if end < 0 {
		return meta, raw, nil
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return PageMeta{}, nil, fmt.Errorf("failed to parse front matter: %w", err)
	}

	body := rest[end+len(frontMatterDelim):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return meta, body, nil
}

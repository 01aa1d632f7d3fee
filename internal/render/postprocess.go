package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"golang.org/x/net/html"

	"viewgen/internal/config"
)

// injectAssets adds style links before </head> and scripts before </body>.
// When a closing tag is missing the references are appended to the end.
func injectAssets(page []byte, assets config.Assets, baseHref string) []byte {
	if len(assets.Styles) > 0 {
		var tags strings.Builder
		for _, s := range assets.Styles {
			fmt.Fprintf(&tags, "<link rel=\"stylesheet\" href=\"%s\">\n", template.HTMLEscapeString(assetRef(baseHref, s)))
		}
		page = insertBefore(page, "</head>", tags.String())
	}
	if len(assets.Scripts) > 0 {
		var tags strings.Builder
		for _, s := range assets.Scripts {
			fmt.Fprintf(&tags, "<script src=\"%s\"></script>\n", template.HTMLEscapeString(assetRef(baseHref, s)))
		}
		page = insertBefore(page, "</body>", tags.String())
	}
	return page
}

func insertBefore(page []byte, closing, tags string) []byte {
	if i := bytes.LastIndex(page, []byte(closing)); i >= 0 {
		out := make([]byte, 0, len(page)+len(tags))
		out = append(out, page[:i]...)
		out = append(out, tags...)
		return append(out, page[i:]...)
	}
	return append(page, tags...)
}

// assetRef makes a root-relative asset reference relative to the page.
// Absolute URLs are left alone.
func assetRef(baseHref, ref string) string {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "/") {
		return ref
	}
	return baseHref + strings.TrimPrefix(ref, "./")
}

var (
	// blockTags open a new indentation level.
	blockTags = setOf("html", "head", "body", "header", "footer", "main", "nav", "section",
		"article", "aside", "div", "ul", "ol", "dl", "table", "thead", "tbody", "tfoot",
		"tr", "form", "fieldset", "figure", "blockquote", "select", "template", "noscript")
	// lineTags start on their own line but keep their content inline.
	lineTags = setOf("title", "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th",
		"dt", "dd", "caption", "figcaption", "option", "legend", "button", "label")
	// voidLineTags have no content and sit on their own line.
	voidLineTags = setOf("meta", "link", "base", "hr", "source")
	// rawTags keep their content byte for byte.
	rawTags = setOf("pre", "textarea", "script", "style")
)

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Beautify re-indents an HTML document with two spaces per nesting level.
// Inline markup stays on its line, whitespace runs in text collapse to a
// single space, and pre, textarea, script and style content is untouched.
func Beautify(src []byte) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(src))
	b := &beautifier{}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				b.flush()
				return b.out.Bytes(), nil
			}
			return nil, z.Err()
		}

		raw := append([]byte(nil), z.Raw()...)
		if b.rawTag != "" {
			b.out.Write(raw)
			if tt == html.EndTagToken {
				if name, _ := z.TagName(); string(name) == b.rawTag {
					b.rawTag = ""
					b.out.WriteByte('\n')
				}
			}
			continue
		}

		switch tt {
		case html.TextToken:
			b.line.Write(collapseSpace(raw))
		case html.CommentToken, html.DoctypeToken:
			b.block(raw)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			b.startTag(string(name), raw, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := z.TagName()
			b.endTag(string(name), raw)
		}
	}
}

type beautifier struct {
	out    bytes.Buffer
	line   bytes.Buffer
	depth  int
	rawTag string
}

func (b *beautifier) indent() {
	for i := 0; i < b.depth; i++ {
		b.out.WriteString("  ")
	}
}

// flush writes the pending inline content as one line.
func (b *beautifier) flush() {
	text := bytes.TrimSpace(b.line.Bytes())
	b.line.Reset()
	if len(text) == 0 {
		return
	}
	b.indent()
	b.out.Write(text)
	b.out.WriteByte('\n')
}

func (b *beautifier) block(raw []byte) {
	b.flush()
	b.indent()
	b.out.Write(raw)
	b.out.WriteByte('\n')
}

func (b *beautifier) startTag(name string, raw []byte, selfClosing bool) {
	switch {
	case rawTags[name] && !selfClosing:
		b.flush()
		b.indent()
		b.out.Write(raw)
		b.rawTag = name
	case blockTags[name]:
		b.block(raw)
		if !selfClosing {
			b.depth++
		}
	case lineTags[name]:
		b.flush()
		b.line.Write(raw)
	case voidLineTags[name]:
		b.block(raw)
	default:
		b.line.Write(raw)
	}
}

func (b *beautifier) endTag(name string, raw []byte) {
	switch {
	case blockTags[name]:
		b.flush()
		if b.depth > 0 {
			b.depth--
		}
		b.indent()
		b.out.Write(raw)
		b.out.WriteByte('\n')
	case lineTags[name]:
		b.line.Write(raw)
		b.flush()
	default:
		b.line.Write(raw)
	}
}

func collapseSpace(text []byte) []byte {
	out := make([]byte, 0, len(text))
	space := false
	for _, c := range text {
		switch c {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				out = append(out, ' ')
			}
			space = true
		default:
			out = append(out, c)
			space = false
		}
	}
	return out
}

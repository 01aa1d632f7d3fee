// internal/render/goldmark_extensions.go
package render

import (
	"bytes"
	"net/url"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// viewLinkTransformer rewrites relative links between views so they point
// at the generated pages: "about.md" and "about.njk#team" become
// "about.html" and "about.html#team".
type viewLinkTransformer struct {
	exts [][]byte
}

func newViewLinkTransformer(exts ...string) parser.ASTTransformer {
	t := &viewLinkTransformer{}
	for _, e := range exts {
		t.exts = append(t.exts, []byte("."+e))
	}
	return t
}

func (t *viewLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = t.rewrite(link.Destination)
		return ast.WalkContinue, nil
	})
}

// rewrite swaps a view extension at the end of the path for ".html". Any
// query or fragment is split off first and appended unchanged, so only the
// path decides whether the link is rewritten. Links with a scheme or host
// point outside the site and are returned as is.
func (t *viewLinkTransformer) rewrite(dest []byte) []byte {
	if u, err := url.Parse(string(dest)); err != nil || u.Scheme != "" || u.Host != "" {
		return dest
	}

	path, frag := dest, []byte(nil)
	if i := bytes.IndexAny(dest, "?#"); i >= 0 {
		path, frag = dest[:i], dest[i:]
	}
	for _, ext := range t.exts {
		if bytes.HasSuffix(path, ext) {
			out := append([]byte{}, bytes.TrimSuffix(path, ext)...)
			out = append(out, ".html"...)
			return append(out, frag...)
		}
	}
	return dest
}

// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"viewgen/internal/config"
	"viewgen/internal/pages"
)

// ErrExists is returned instead of overwriting an existing file.
var ErrExists = errors.New("file already exists")

// CreateProject writes a starter project into root.
func CreateProject(root string) error {
	fmt.Println("Scaffolding new project in:", root)
	dirs := []string{"src/html/views", "src/html/includes"}
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"viewgen.yaml":                  configContent,
		".env.example":                  envExampleContent,
		"src/html/views/index.html":     indexViewContent,
		"src/html/includes/header.html": headerIncludeContent,
		"src/html/includes/footer.html": footerIncludeContent,
		"src/html/includes/layout.html": layoutIncludeContent,
	}
	for path, content := range files {
		if err := writeNew(filepath.Join(root, path), []byte(content)); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}

	fmt.Println("Project scaffolded. You can now:")
	fmt.Println("  cd", root)
	fmt.Println("  viewgen new about")
	fmt.Println("  viewgen build")
	return nil
}

// Kinds lists the view kinds CreateView understands.
var Kinds = []string{"html", "md", "njk"}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9.]+`)

// Slug turns a title into a file base name: "About Us!" becomes "about-us".
func Slug(title string) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(s, "-.")
}

// CreateView writes a new view named after title into viewsDir and returns
// its path.
func CreateView(viewsDir, title, kind string, site config.SiteConfig) (string, error) {
	archetype, ok := archetypes[kind]
	if !ok || !pages.Supports(kind) {
		return "", fmt.Errorf("unknown view kind %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
	slug := Slug(title)
	if slug == "" {
		return "", fmt.Errorf("cannot derive a file name from %q", title)
	}

	tmpl, err := template.New("archetype").Delims("[[", "]]").Parse(archetype)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s archetype: %w", kind, err)
	}
	frontMatter, err := yaml.Marshal(viewMeta{Title: title, Author: site.Author})
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	data := struct {
		Title       string
		FrontMatter string
	}{
		Title:       title,
		FrontMatter: string(frontMatter),
	}
	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute %s archetype: %w", kind, err)
	}

	if err := os.MkdirAll(viewsDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(viewsDir, slug+"."+kind)
	if err := writeNew(path, output.Bytes()); err != nil {
		return "", err
	}
	fmt.Println("Created:", path)
	return path, nil
}

// viewMeta is the front matter of a new markdown view. It is encoded with
// yaml so titles containing ": " or starting with "#" stay valid.
type viewMeta struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Archetypes use [[ ]] delimiters so the template syntax of the generated
// view passes through untouched.
var archetypes = map[string]string{
	"html": `{{ template "header.html" . }}
<main>
  <h1>[[ .Title ]]</h1>
  <p>Write something meaningful here.</p>
</main>
{{ template "footer.html" . }}
`,
	"md": `---
[[ .FrontMatter ]]---

Write something meaningful here.
`,
	"njk": `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>[[ .Title ]] | {{ site.title }}</title>
</head>
<body>
  <h1>[[ .Title ]]</h1>
  <p>Write something meaningful here.</p>
</body>
</html>
`,
}

const configContent = `site:
  title: My Site
  author: Your Name
  baseurl: /
  description: A new site generated by viewgen.
views: src/html/views
includes: src/html/includes
output: dist
exclude: [readme]
beautify: true
manifest: dist/pages.yaml
`

const envExampleContent = `# Copy to .env to expose a constant include path to every page.
VIEWGEN_INCLUDE_PATH=/includes
`

const indexViewContent = `{{ template "header.html" . }}
<main>
  <h1>{{ .Site.Title }}</h1>
  <p>{{ .Site.Description }}</p>
</main>
{{ template "footer.html" . }}
`

const headerIncludeContent = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }} | {{ .Site.Title }}</title>
  <meta name="description" content="{{ .Description }}">
</head>
<body>
<header>
  <a href="{{ .BaseHref }}index.html">{{ .Site.Title }}</a>
</header>
`

const footerIncludeContent = `<footer>
  &copy; {{ .Site.Author }}
</footer>
</body>
</html>
`

const layoutIncludeContent = `{{ define "main" }}{{ template "header.html" . }}
<main>
  {{ .Content }}
</main>
{{ template "footer.html" . }}{{ end }}
`

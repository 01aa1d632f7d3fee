package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewgen/internal/config"
	vgerrors "viewgen/internal/errors"
	"viewgen/internal/manifest"
	"viewgen/internal/pages"
)

func setupProject(t *testing.T, cfgBody string, files map[string]string) config.Config {
	t.Helper()
	t.Setenv(config.EnvIncludePath, "/shared")

	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	cfgPath := filepath.Join(root, "viewgen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	return cfg
}

func TestBuildSite(t *testing.T) {
	cfg := setupProject(t, `
site:
  title: Demo
views: src/views
includes: src/includes
output: dist
manifest: dist/manifest.yaml
`, map[string]string{
		"src/views/index.html":   `{{ template "header.html" . }}<p>{{ .IncludePath }}</p>`,
		"src/views/about.md":     "# About\n",
		"src/views/README.md":    "not a page",
		"src/includes/header.html": `<h1>{{ .Site.Title }}</h1>`,
	})

	res, err := BuildSite(context.Background(), cfg, BuildOptions{})
	require.NoError(t, err)

	out := cfg.OutputDir()
	assert.Equal(t, []string{filepath.Join(out, "about.html"), filepath.Join(out, "index.html")}, res.Pages)
	assert.Equal(t, []string{"about.html", "index.html"}, pages.Outputs(res.Descriptors))

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Demo</h1><p>/shared</p>", string(index))
	assert.NoFileExists(t, filepath.Join(out, "README.html"))

	m, err := manifest.Read(res.Manifest)
	require.NoError(t, err)
	require.Len(t, m.Pages, 2)
	assert.Equal(t, "about.html", m.Pages[0].Output)
	assert.Equal(t, "../src/views/about.md", m.Pages[0].Template)
	assert.False(t, m.Pages[0].Inject)
}

func TestBuildSite_MissingViewsWritesNothing(t *testing.T) {
	cfg := setupProject(t, "views: nowhere\noutput: dist\n", nil)

	_, err := BuildSite(context.Background(), cfg, BuildOptions{})
	require.ErrorIs(t, err, pages.ErrDirectoryNotFound)
	assert.NoDirExists(t, cfg.OutputDir())
}

func TestBuildSite_DuplicateOutputWritesNothing(t *testing.T) {
	cfg := setupProject(t, "views: views\noutput: dist\n", map[string]string{
		"views/index.html": "a",
		"views/index.md":   "b",
	})

	_, err := BuildSite(context.Background(), cfg, BuildOptions{})
	require.ErrorIs(t, err, pages.ErrDuplicateOutputName)
	assert.NoDirExists(t, cfg.OutputDir())
}

func TestBuildSite_CleanDestination(t *testing.T) {
	cfg := setupProject(t, "views: views\noutput: dist\n", map[string]string{
		"views/index.html": "fresh",
		"dist/stale.html":  "old",
	})

	_, err := BuildSite(context.Background(), cfg, BuildOptions{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.OutputDir(), "stale.html"))

	_, err = BuildSite(context.Background(), cfg, BuildOptions{CleanDestination: true})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir(), "stale.html"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir(), "index.html"))
}

func TestBuildSite_ExtensionRestriction(t *testing.T) {
	cfg := setupProject(t, "views: views\noutput: dist\nextension: njk\n", map[string]string{
		"views/index.njk":  "<p>{{ title }}</p>",
		"views/notes.txt":  "ignored",
		"views/draft.html": "ignored",
	})

	res, err := BuildSite(context.Background(), cfg, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, pages.Outputs(res.Descriptors))
}

func TestBuildSite_Cancelled(t *testing.T) {
	cfg := setupProject(t, "views: views\noutput: dist\n", map[string]string{
		"views/index.html": "x",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := BuildSite(ctx, cfg, BuildOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Pages)
}

func TestBuildSite_RefusesOutputHoldingSources(t *testing.T) {
	root := t.TempDir()
	view := filepath.Join(root, "src", "html", "views", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(view), 0o755))
	require.NoError(t, os.WriteFile(view, []byte("keep"), 0o644))
	cfgFile := filepath.Join(root, "viewgen.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("output: .\n"), 0o644))

	cfg, err := config.Defaults(root)
	require.NoError(t, err)
	cfg.Output = "."

	_, err = BuildSite(context.Background(), cfg, BuildOptions{CleanDestination: true})
	require.Error(t, err)
	assert.True(t, vgerrors.IsCategory(err, vgerrors.CategoryValidation))
	assert.FileExists(t, view)
	assert.FileExists(t, cfgFile)
}

package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewgen/internal/builder"
	"viewgen/internal/config"
	"viewgen/internal/pages"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.BindTo(context.Background(), (*context.Context)(nil)))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	t.Setenv(config.EnvIncludePath, "")
	root := t.TempDir()
	t.Chdir(root)

	cli, _ := parse(t, "list")
	cfg, err := cli.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src/html/views"), cfg.ViewsDir())
}

func TestLoadConfig_ExplicitFileMustExist(t *testing.T) {
	t.Chdir(t.TempDir())

	cli, _ := parse(t, "--config", "other.yaml", "list")
	_, err := cli.loadConfig()
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestBuildAndList(t *testing.T) {
	t.Setenv(config.EnvIncludePath, "")
	root := t.TempDir()
	t.Chdir(root)
	writeFiles(t, root, map[string]string{
		"viewgen.yaml":              "site:\n  title: Demo\nmanifest: dist/pages.yaml\n",
		"src/html/views/index.html": "<h1>{{ .Site.Title }}</h1>",
		"src/html/views/about.md":   "# About\n",
		"src/html/views/readme.md":  "skipped",
	})

	cli, kctx := parse(t, "list", "--format", "yaml")
	var out bytes.Buffer
	cli.List.out = &out
	require.NoError(t, kctx.Run(&Globals{}, cli))
	assert.Equal(t, "pages:\n"+
		"    - output: about.html\n      template: about.md\n      extension: md\n      inject: false\n"+
		"    - output: index.html\n      template: index.html\n      extension: html\n      inject: false\n",
		out.String())
	assert.NoDirExists(t, filepath.Join(root, "dist"))

	cli, kctx = parse(t, "build", "--clean")
	require.NoError(t, kctx.Run(&Globals{}, cli))
	index, err := os.ReadFile(filepath.Join(root, "dist", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Demo</h1>", string(index))
	assert.FileExists(t, filepath.Join(root, "dist", "pages.yaml"))
}

func TestNewView(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	cli, kctx := parse(t, "new", "Getting Started", "--kind", "md")
	require.NoError(t, kctx.Run(&Globals{}, cli))
	assert.FileExists(t, filepath.Join(root, "src/html/views/getting-started.md"))
}

func TestPrintDescriptors(t *testing.T) {
	views := t.TempDir()
	writeFiles(t, views, map[string]string{"index.html": "x", "contact.njk": "y"})
	ds, err := pages.Generate(views, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printDescriptors(&out, ds, views))
	assert.Equal(t, fmt.Sprintf("%-30s -> contact.html\n%-30s -> index.html\n2 pages\n", "contact.njk", "index.html"), out.String())
}

func TestUnderDir(t *testing.T) {
	out := t.TempDir()
	ignore := underDir(out)
	assert.True(t, ignore(out))
	assert.True(t, ignore(filepath.Join(out, "nested", "index.html")))
	assert.False(t, ignore(out+"-other"))
	assert.False(t, ignore(filepath.Dir(out)))
}

func TestWatch_ManifestBesideConfigDoesNotRetrigger(t *testing.T) {
	t.Setenv(config.EnvIncludePath, "")
	root := t.TempDir()
	t.Chdir(root)
	writeFiles(t, root, map[string]string{
		"viewgen.yaml":     "views: views\noutput: dist\nmanifest: pages.yaml\n",
		"views/index.html": "<p>v1</p>",
	})

	cli, _ := parse(t, "build", "--watch")
	cfg, err := cli.loadConfig()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w := cli.Build.watcher(ctx, cli, cfg, builder.BuildOptions{})
	w.Debounce = 20 * time.Millisecond
	var rebuilds atomic.Int32
	rebuild := w.Rebuild
	w.Rebuild = func() error {
		rebuilds.Add(1)
		return rebuild()
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, func() bool {
		if rebuilds.Load() == 0 {
			_ = os.WriteFile(filepath.Join(root, "views", "index.html"), []byte("<p>v2</p>"), 0o644)
		}
		return rebuilds.Load() > 0
	}, 5*time.Second, 100*time.Millisecond)
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, "pages.yaml"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	settled := rebuilds.Load()
	assert.Never(t, func() bool { return rebuilds.Load() > settled }, 500*time.Millisecond, 50*time.Millisecond)
}

func TestWrittenBy(t *testing.T) {
	t.Setenv(config.EnvIncludePath, "")
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"viewgen.yaml": "output: dist\nmanifest: pages.yaml\n"})

	cfg, err := config.Load(filepath.Join(root, "viewgen.yaml"))
	require.NoError(t, err)
	ignore := writtenBy(cfg)
	assert.True(t, ignore(filepath.Join(root, "pages.yaml")))
	assert.True(t, ignore(filepath.Join(root, "dist", "index.html")))
	assert.False(t, ignore(filepath.Join(root, "viewgen.yaml")))
	assert.False(t, ignore(filepath.Join(root, "src", "html", "views", "index.html")))

	writeFiles(t, root, map[string]string{"viewgen.yaml": "output: public\n"})
	cfg, err = config.Load(filepath.Join(root, "viewgen.yaml"))
	require.NoError(t, err)
	ignore = writtenBy(cfg)
	assert.False(t, ignore(filepath.Join(root, "pages.yaml")))
	assert.True(t, ignore(filepath.Join(root, "public", "index.html")))
}

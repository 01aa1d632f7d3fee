// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	vgerrors "viewgen/internal/errors"
	"viewgen/internal/pages"
)

// EnvIncludePath overrides Config.IncludePath when set in the process
// environment or in a .env file next to the config file.
const EnvIncludePath = "VIEWGEN_INCLUDE_PATH"

// ErrConfigNotFound is returned by Load when the config file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// SiteConfig holds site-wide metadata exposed to every template as .Site.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	BaseURL     string `yaml:"baseurl"`
	Description string `yaml:"description"`
}

// Assets lists references a page receives when it asks for injection.
type Assets struct {
	Scripts []string `yaml:"scripts"`
	Styles  []string `yaml:"styles"`
}

// Config is the viewgen.yaml build configuration.
type Config struct {
	Site SiteConfig `yaml:"site"`

	Views    string `yaml:"views"`
	Includes string `yaml:"includes"`
	Output   string `yaml:"output"`
	PagesDir string `yaml:"pages_dir"`

	Exclude         []string `yaml:"exclude"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	Extension       string   `yaml:"extension"`

	IncludePath string `yaml:"include_path"`
	Beautify    bool   `yaml:"beautify"`
	Manifest    string `yaml:"manifest"`
	Assets      Assets `yaml:"assets"`

	// baseDir is the directory of the loaded file; relative paths are
	// resolved against it.
	baseDir string
}

// Defaults returns the configuration used when no config file is present,
// rooted at dir and with the environment overlay applied.
func Defaults(dir string) (Config, error) {
	cfg := Config{baseDir: dir}
	cfg.applyDefaults()
	if err := cfg.applyEnv(filepath.Join(dir, ".env")); err != nil {
		return Config{}, vgerrors.Wrap(err, vgerrors.CategoryConfig, vgerrors.SeverityFatal, "could not read .env file")
	}
	return cfg, nil
}

// Load reads, parses, overlays environment values and validates the config
// at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, vgerrors.Wrap(ErrConfigNotFound, vgerrors.CategoryConfig, vgerrors.SeverityFatal, "configuration file not found").
			WithContext("path", path)
	}
	if err != nil {
		return Config{}, vgerrors.Wrap(err, vgerrors.CategoryConfig, vgerrors.SeverityFatal, "could not read config file").
			WithContext("path", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, vgerrors.Wrap(err, vgerrors.CategoryConfig, vgerrors.SeverityFatal, "could not parse config file").
			WithContext("path", path)
	}
	if cfg.baseDir, err = filepath.Abs(filepath.Dir(path)); err != nil {
		return Config{}, vgerrors.Wrap(err, vgerrors.CategoryConfig, vgerrors.SeverityFatal, "could not resolve config directory").
			WithContext("path", path)
	}

	if err := cfg.applyEnv(filepath.Join(cfg.baseDir, ".env")); err != nil {
		return Config{}, vgerrors.Wrap(err, vgerrors.CategoryConfig, vgerrors.SeverityFatal, "could not read .env file")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML config data and applies defaults. It does not read the
// environment or validate.
func Parse(data []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Views == "" {
		c.Views = filepath.Join("src", "html", "views")
	}
	if c.Includes == "" {
		c.Includes = filepath.Join("src", "html", "includes")
	}
	if c.Output == "" {
		c.Output = "dist"
	}
	if c.Exclude == nil {
		c.Exclude = []string{"readme"}
	}
	c.Extension = strings.TrimPrefix(c.Extension, ".")
}

// applyEnv resolves the include path constant. The process environment wins
// over the .env file; a missing .env file is not an error.
func (c *Config) applyEnv(envFile string) error {
	if v, ok := os.LookupEnv(EnvIncludePath); ok {
		c.IncludePath = v
		return nil
	}
	vars, err := godotenv.Read(envFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if v, ok := vars[EnvIncludePath]; ok {
		c.IncludePath = v
	}
	return nil
}

// Validate checks the configuration for values that would break a build.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Views) == "" {
		return validationFailed("views", "must not be empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		return validationFailed("output", "must not be empty")
	}
	// The output directory may be emptied by a clean build, so it must not
	// hold any of the project's sources.
	out := absPath(c.OutputDir())
	sources := []struct{ name, path string }{
		{"views", c.ViewsDir()},
		{"includes", c.IncludesDir()},
	}
	if c.baseDir != "" {
		sources = append(sources, struct{ name, path string }{"the config directory", c.baseDir})
	}
	for _, src := range sources {
		if within(out, absPath(src.path)) {
			return validationFailed("output", "must not contain "+src.name)
		}
	}
	if pd := filepath.Clean(c.PagesDir); filepath.IsAbs(pd) || pd == ".." || strings.HasPrefix(pd, ".."+string(filepath.Separator)) {
		return validationFailed("pages_dir", "must be a relative path inside output")
	}
	for _, p := range c.ExcludePatterns {
		if !doublestar.ValidatePattern(p) {
			return validationFailed("exclude_patterns", fmt.Sprintf("invalid pattern %q", p))
		}
	}
	return nil
}

// Filter builds the page filter described by exclude, exclude_patterns and
// extension.
func (c Config) Filter() pages.Filter {
	var filters []pages.Filter
	if len(c.Exclude) > 0 {
		filters = append(filters, pages.ExcludeNames(c.Exclude...))
	}
	if len(c.ExcludePatterns) > 0 {
		filters = append(filters, pages.ExcludeGlob(c.ExcludePatterns...))
	}
	if c.Extension != "" {
		filters = append(filters, pages.RequireExt(c.Extension))
	}
	if len(filters) == 0 {
		return nil
	}
	return pages.All(filters...)
}

// Params returns the build-wide constants handed to every page.
func (c Config) Params() map[string]string {
	if c.IncludePath == "" {
		return nil
	}
	return map[string]string{pages.ParamIncludePath: c.IncludePath}
}

// ViewsDir, IncludesDir and OutputDir resolve the configured directories
// against the config file's directory.
func (c Config) ViewsDir() string    { return c.resolve(c.Views) }
func (c Config) IncludesDir() string { return c.resolve(c.Includes) }
func (c Config) OutputDir() string   { return c.resolve(c.Output) }

// ManifestPath is empty when no manifest is configured.
func (c Config) ManifestPath() string {
	if c.Manifest == "" {
		return ""
	}
	return c.resolve(c.Manifest)
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func validationFailed(field, reason string) error {
	return vgerrors.New(vgerrors.CategoryValidation, vgerrors.SeverityFatal, field+" "+reason).
		WithContext("field", field)
}

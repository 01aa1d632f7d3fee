package commands

import (
	"errors"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"viewgen/internal/config"
	"viewgen/internal/logfields"
)

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = "viewgen.yaml"

type Globals struct {
	Debug   bool
	Version string
}

// CLI is the root command line. Flags declared here apply to every command.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"viewgen.yaml"`
	Debug   bool             `help:"Enable debug logging and verbose errors."`
	Version kong.VersionFlag `help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render every view into the output directory"`
	List  ListCmd  `cmd:"" help:"List the pages a build would generate without writing anything"`
	Init  InitCmd  `cmd:"" help:"Scaffold a new project"`
	New   NewCmd   `cmd:"" help:"Create a new view from an archetype"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply() error {
	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	return nil
}

// loadConfig reads the config at path. When the default file is absent the
// built-in defaults rooted at the working directory are used instead; an
// explicitly named file must exist.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err == nil || !errors.Is(err, config.ErrConfigNotFound) || c.Config != DefaultConfigFile {
		return cfg, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	log.Debug().Str(logfields.KeyDir, wd).Msg("No config file, using defaults")
	cfg, err = config.Defaults(wd)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

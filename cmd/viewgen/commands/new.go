package commands

import (
	"context"

	"viewgen/internal/scaffold"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Name string `arg:"" help:"Title of the new view; the file name is derived from it"`
	Kind string `short:"k" help:"View kind (html, md, njk)" enum:"html,md,njk" default:"html"`
}

func (n *NewCmd) Run(_ context.Context, _ *Globals, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	_, err = scaffold.CreateView(cfg.ViewsDir(), n.Name, n.Kind, cfg.Site)
	return err
}

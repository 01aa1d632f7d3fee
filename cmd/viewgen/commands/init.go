package commands

import (
	"context"

	"viewgen/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir string `arg:"" optional:"" help:"Directory to create the project in" default:"." type:"path"`
}

func (i *InitCmd) Run(_ context.Context, _ *Globals) error {
	return scaffold.CreateProject(i.Dir)
}

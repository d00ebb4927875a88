package commands

import (
	"fmt"

	"git.home.luguber.info/inful/distbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	workDir, err := root.workDir()
	if err != nil {
		return err
	}
	path, _ := root.configPath(workDir)
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Wrote configuration to %s\n", path)
	return nil
}

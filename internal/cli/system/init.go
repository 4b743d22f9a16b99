package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/config"
)

type InitCmd struct {
	Force bool `help:"Overwrite an existing config file with the current settings."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if ctx.ConfigPath != "" {
		_, err := os.Stat(ctx.ConfigPath)
		switch {
		case errors.Is(err, os.ErrNotExist) || (err == nil && c.Force):
			if err := config.Write(ctx.ConfigPath, ctx.Config); err != nil {
				return err
			}
			ctx.Printf("Wrote config to: %s\n", ctx.ConfigPath)
		case err != nil:
			return fmt.Errorf("failed to access config file: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized tracklit storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

package cli

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/urfave/cli/v3"
)

func syncCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "sync",
		Usage: "Pull the remote document and show the result",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			engine, _, err := cfg.newEngine(ctx)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			sp.Suffix = " syncing"
			sp.Start()
			err = engine.Start(ctx)
			sp.Stop()
			if err != nil {
				return err
			}

			renderGrouped(c.Root().Writer, engine.Grouped(), time.Now())
			return nil
		},
	}
}

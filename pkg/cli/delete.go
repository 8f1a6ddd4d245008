package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/urfave/cli/v3"
)

func deleteCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a meeting",
		ArgsUsage: "<meeting-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := model.MeetingID(c.Args().First())
			if id == "" {
				return goerr.New("meeting ID is required")
			}

			engine, _, err := cfg.newEngine(ctx)
			if err != nil {
				return err
			}
			if err := engine.Start(ctx); err != nil {
				return err
			}

			m, err := engine.Get(id)
			if err != nil {
				return err
			}
			if err := engine.Delete(ctx, id); err != nil {
				return err
			}
			engine.Wait()

			fmt.Fprintf(c.Root().Writer, "Deleted %s\n", m.Name)
			return nil
		},
	}
}

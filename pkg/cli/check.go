package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/urfave/cli/v3"
)

func checkCommand() *cli.Command {
	var (
		cfg  config
		undo bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "undo",
			Usage:       "Uncheck instead of check",
			Destination: &undo,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "check",
		Usage:     "Check off an agenda item",
		ArgsUsage: "<meeting-id> <item-number>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := model.MeetingID(c.Args().Get(0))
			numArg := c.Args().Get(1)
			if id == "" || numArg == "" {
				return goerr.New("meeting ID and item number are required")
			}
			num, err := strconv.Atoi(numArg)
			if err != nil {
				return goerr.Wrap(err, "item number must be numeric", goerr.V("arg", numArg))
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
			if num < 1 || num > len(m.AgendaItems) {
				return goerr.New("item number out of range", goerr.V("number", num), goerr.V("items", len(m.AgendaItems)))
			}
			item := m.AgendaItems[num-1]

			updated, err := engine.SetChecked(ctx, id, item.ID, !undo)
			if err != nil {
				return err
			}
			engine.Wait()

			mark := "[x]"
			if undo {
				mark = "[ ]"
			}
			fmt.Fprintf(c.Root().Writer, "%s %s (%s)\n", mark, item.Text, updated.Name)
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "show",
		Usage:     "Show a meeting with its agenda",
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

			w := c.Root().Writer
			fmt.Fprintf(w, "%s\n", m.Name)
			if m.Date != nil {
				marker := ""
				if m.Passed(time.Now()) {
					marker = " (passed)"
				}
				fmt.Fprintf(w, "Date: %s%s\n", m.Date.Format(dateFormat), marker)
			} else {
				fmt.Fprintln(w, "Date: not scheduled yet")
			}
			fmt.Fprintln(w, "Agenda:")
			for i, item := range m.AgendaItems {
				mark := "[ ]"
				if item.Checked {
					mark = "[x]"
				}
				fmt.Fprintf(w, "  %d. %s %s\n", i+1, mark, item.Text)
			}
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/urfave/cli/v3"
)

const dateFormat = "Mon 2 Jan 2006 15:04"

func listCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List meetings, scheduled first",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			engine, _, err := cfg.newEngine(ctx)
			if err != nil {
				return err
			}
			if err := engine.Start(ctx); err != nil {
				return err
			}

			renderGrouped(c.Root().Writer, engine.Grouped(), time.Now())
			return nil
		},
	}
}

func renderGrouped(w io.Writer, g model.Grouped, now time.Time) {
	if len(g.Scheduled) == 0 && len(g.Unscheduled) == 0 {
		fmt.Fprintln(w, "No meetings. Use 'overleg add' to create one.")
		return
	}

	if len(g.Scheduled) > 0 {
		fmt.Fprintln(w, "Scheduled")
		for _, m := range g.Scheduled {
			marker := ""
			if m.Passed(now) {
				marker = " (passed)"
			}
			fmt.Fprintf(w, "  %s  %s%s  %d item(s)\n    %s\n",
				m.Date.Format(dateFormat), m.Name, marker, len(m.AgendaItems), m.ID)
		}
	}

	if len(g.Unscheduled) > 0 {
		fmt.Fprintln(w, "Unscheduled")
		for _, m := range g.Unscheduled {
			fmt.Fprintf(w, "  %s  %d item(s)\n    %s\n", m.Name, len(m.AgendaItems), m.ID)
		}
	}
}

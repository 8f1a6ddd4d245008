package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	syncengine "github.com/overleg-dev/overleg/pkg/usecase/sync"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	var (
		cfg   config
		name  string
		date  string
		items []string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Meeting name",
			Required:    true,
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "date",
			Aliases:     []string{"d"},
			Usage:       "Meeting date (2006-01-02 15:04, RFC3339, or 'tomorrow'); omit for unscheduled",
			Destination: &date,
		},
		&cli.StringSliceFlag{
			Name:        "item",
			Aliases:     []string{"i"},
			Usage:       "Agenda item (repeatable, at least one)",
			Destination: &items,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "add",
		Usage: "Create a new meeting",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			engine, _, err := cfg.newEngine(ctx)
			if err != nil {
				return err
			}
			if err := engine.Start(ctx); err != nil {
				return err
			}

			input := syncengine.CreateInput{Name: name, Items: items}
			if date != "" {
				d, err := parseDate(date, time.Now())
				if err != nil {
					return err
				}
				input.Date = &d
			}

			m, err := engine.Create(ctx, input)
			if err != nil {
				return err
			}
			engine.Wait()

			fmt.Fprintf(c.Root().Writer, "Created %s (%s)\n", m.Name, m.ID)
			return nil
		},
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate accepts a handful of layouts plus "tomorrow", which maps to
// tomorrow at 10:00 local time.
func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "tomorrow" {
		t := now.AddDate(0, 0, 1)
		return time.Date(t.Year(), t.Month(), t.Day(), 10, 0, 0, 0, t.Location()), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, goerr.New("unrecognized date", goerr.V("date", s))
}

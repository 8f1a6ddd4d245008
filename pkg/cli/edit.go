package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/urfave/cli/v3"
)

func editCommand() *cli.Command {
	var (
		cfg       config
		name      string
		date      string
		clearDate bool
		items     []string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "New meeting name",
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "date",
			Aliases:     []string{"d"},
			Usage:       "New meeting date",
			Destination: &date,
		},
		&cli.BoolFlag{
			Name:        "clear-date",
			Usage:       "Make the meeting unscheduled",
			Destination: &clearDate,
		},
		&cli.StringSliceFlag{
			Name:        "item",
			Aliases:     []string{"i"},
			Usage:       "Replacement agenda item (repeatable; replaces the whole list)",
			Destination: &items,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "edit",
		Usage:     "Update a meeting",
		ArgsUsage: "<meeting-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := model.MeetingID(c.Args().First())
			if id == "" {
				return goerr.New("meeting ID is required")
			}

			patch := &model.Patch{ClearDate: clearDate}
			if name != "" {
				patch.Name = &name
			}
			if date != "" {
				if clearDate {
					return goerr.New("--date and --clear-date are mutually exclusive")
				}
				d, err := parseDate(date, time.Now())
				if err != nil {
					return err
				}
				patch.Date = &d
			}
			for _, text := range items {
				patch.AgendaItems = append(patch.AgendaItems, &model.AgendaItem{
					ID:   model.NewAgendaItemID(),
					Text: text,
				})
			}

			engine, _, err := cfg.newEngine(ctx)
			if err != nil {
				return err
			}
			if err := engine.Start(ctx); err != nil {
				return err
			}

			m, err := engine.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			engine.Wait()

			fmt.Fprintf(c.Root().Writer, "Updated %s\n", m.Name)
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func notifyCommand() *cli.Command {
	var (
		cfg     config
		disable bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "disable",
			Usage:       "Turn reminder notifications off",
			Destination: &disable,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "notify",
		Usage: "Enable or disable reminder notifications",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.newLogger()

			app, err := cfg.loadAppConfig()
			if err != nil {
				return err
			}

			if disable {
				app.Notifications = false
			} else {
				notifier := cfg.newNotifier(app)
				app.Notifications = notifier.RequestPermission()
			}

			path, err := cfg.configPath()
			if err != nil {
				return err
			}
			if err := app.Save(path); err != nil {
				return err
			}

			if app.Notifications {
				fmt.Fprintln(c.Root().Writer, "Notifications enabled")
			} else {
				fmt.Fprintln(c.Root().Writer, "Notifications disabled")
			}
			return nil
		},
	}
}

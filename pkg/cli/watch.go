package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/overleg-dev/overleg/pkg/utils/logging"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

func watchCommand() *cli.Command {
	var (
		cfg     config
		refresh string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "refresh",
			Usage:       "Cron schedule for periodic re-sync",
			Value:       "*/15 * * * *",
			Sources:     cli.EnvVars("OVERLEG_REFRESH"),
			Destination: &refresh,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "watch",
		Usage: "Run in the foreground: host reminder timers and re-sync periodically",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			engine, scheduler, err := cfg.newEngine(ctx)
			if err != nil {
				return err
			}
			defer scheduler.Stop()

			if err := engine.Start(ctx); err != nil {
				return err
			}
			logger := logging.From(ctx)
			logger.Info("watching", "meetings", len(engine.List()), "refresh", refresh)

			cr := cron.New()
			_, err = cr.AddFunc(refresh, func() {
				if err := engine.Pull(ctx); err != nil {
					logger.Warn("periodic pull failed", "error", err)
					return
				}
				scheduler.RearmAll(engine.List())
			})
			if err != nil {
				return goerr.Wrap(err, "invalid refresh schedule", goerr.V("refresh", refresh))
			}
			cr.Start()
			defer cr.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig)
			case <-ctx.Done():
			}

			engine.Wait()
			fmt.Fprintln(c.Root().Writer, "stopped")
			return nil
		},
	}
}

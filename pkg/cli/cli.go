package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/overleg-dev/overleg/pkg/model"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "overleg",
		Usage: "Personal meeting and agenda tracker with Drive sync",
		Commands: []*cli.Command{
			authCommand(),
			addCommand(),
			listCommand(),
			showCommand(),
			checkCommand(),
			editCommand(),
			deleteCommand(),
			syncCommand(),
			watchCommand(),
			notifyCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// printStatus writes transient sync status lines to stderr so they never
// mix with command output.
func printStatus(st model.Status) {
	switch st {
	case model.StatusSyncing:
		fmt.Fprintln(os.Stderr, "syncing...")
	case model.StatusError:
		fmt.Fprintln(os.Stderr, "sync failed, changes kept locally")
	}
}

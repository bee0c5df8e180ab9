package command

import (
	"context"
	"time"

	commandHandler "edulift/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewIndexHandler, commandHandler.NewStatsHandler)

const commandTimeout = 2 * time.Minute

type Command struct {
	indexHandler *commandHandler.IndexHandler
	statsHandler *commandHandler.StatsHandler
}

// NewCommand .
func NewCommand(
	indexHandler *commandHandler.IndexHandler,
	statsHandler *commandHandler.StatsHandler,
) *Command {
	return &Command{
		indexHandler: indexHandler,
		statsHandler: statsHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	var groupHomeID string

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "print user counts (total, per role, optional group home)",
		RunE: func(cmd *cobra.Command, args []string) error {
			command, cleanup, err := newCmd()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return command.statsHandler.Print(ctx, cmd, groupHomeID)
		},
	}
	statsCmd.Flags().StringVar(&groupHomeID, "group-home", "", "group home id")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "ensure-indexes",
			Short: "create the users collection indexes",
			RunE: func(cmd *cobra.Command, args []string) error {
				command, cleanup, err := newCmd()
				if err != nil {
					return err
				}
				defer cleanup()

				ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
				defer cancel()
				return command.indexHandler.EnsureIndexes(ctx, cmd)
			},
		},
		statsCmd,
	)
}

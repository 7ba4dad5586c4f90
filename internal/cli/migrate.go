package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx, rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start", err)
			}
			defer a.Close()

			if err := a.Migrate(ctx); err != nil {
				return WrapExitError(ExitCommandError, "migration failed", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return err
		},
	}
}

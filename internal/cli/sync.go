package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/humayunejaz/travel-planning-app/internal/service"
)

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Promote pending local trips to the database",
		Long: `Push every trip that was created while the database was unreachable.

Each promoted trip keeps its id and collaborators and is removed from the
local cache. Trips that fail stay pending for the next run.

Examples:
  tripctl sync
  tripctl sync --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx, rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start", err)
			}
			defer a.Close()

			report, err := a.Trips.SyncPending(ctx)
			if err != nil {
				if errors.Is(err, service.ErrRemoteUnavailable) {
					return WrapExitError(ExitCommandError, "database unreachable, nothing synced", err)
				}
				return WrapExitError(ExitFailure, "sync failed", err)
			}
			if err := printResult(cmd.OutOrStdout(), rootOpts.Format, report, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "pending: %d  synced: %d  failed: %d\n", report.Pending, report.Synced, report.Failed)
				return err
			}); err != nil {
				return err
			}
			if report.Failed > 0 {
				return WrapExitError(ExitFailure, fmt.Sprintf("%d trip(s) still pending", report.Failed), nil)
			}
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local trip cache",
	}
	cmd.AddCommand(newCacheListCommand(rootOpts))
	return cmd
}

func newCacheListCommand(rootOpts *RootOptions) *cobra.Command {
	var pendingOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trips held in the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx, rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start", err)
			}
			defer a.Close()

			trips, err := a.Trips.ListLocalTrips(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read local cache", err)
			}
			if pendingOnly {
				kept := trips[:0]
				for _, trip := range trips {
					if trip.PendingSync {
						kept = append(kept, trip)
					}
				}
				trips = kept
			}

			return printResult(cmd.OutOrStdout(), rootOpts.Format, trips, func(w io.Writer) error {
				if len(trips) == 0 {
					_, err := fmt.Fprintln(w, "local cache is empty")
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tOWNER\tCOLLABORATORS\tPENDING\tCREATED")
				for _, trip := range trips {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\n",
						trip.ID, trip.Title, trip.OwnerID, len(trip.Collaborators), trip.PendingSync, humanize.Time(trip.CreatedAt))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "only show trips waiting to be synced")
	return cmd
}

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewInvitationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invitation",
		Short: "Look up trip invitations",
	}
	cmd.AddCommand(newInvitationShowCommand(rootOpts))
	return cmd
}

func newInvitationShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <token>",
		Short: "Show a pending invitation and its registration link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rootOpts.open(ctx, rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start", err)
			}
			defer a.Close()

			invitation, err := a.Collaboration.GetInvitationByToken(ctx, args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "failed to load invitation", err)
			}
			if invitation == nil {
				return WrapExitError(ExitFailure, "no pending invitation for that token", nil)
			}
			link := a.Collaboration.InvitationLink(invitation)
			out := struct {
				TripID    string    `json:"trip_id"`
				Email     string    `json:"email"`
				InvitedBy string    `json:"invited_by"`
				Status    string    `json:"status"`
				ExpiresAt time.Time `json:"expires_at"`
				Link      string    `json:"link"`
			}{
				TripID:    invitation.TripID.String(),
				Email:     invitation.Email,
				InvitedBy: invitation.InvitedBy,
				Status:    string(invitation.Status),
				ExpiresAt: invitation.ExpiresAt,
				Link:      link,
			}
			return printResult(cmd.OutOrStdout(), rootOpts.Format, out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "trip:       %s\nemail:      %s\ninvited by: %s\nstatus:     %s\nexpires:    %s\nlink:       %s\n",
					out.TripID, out.Email, out.InvitedBy, out.Status, humanize.Time(out.ExpiresAt), out.Link)
				return err
			})
		},
	}
}

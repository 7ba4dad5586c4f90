package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/humayunejaz/travel-planning-app/internal/app"
	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
	"github.com/humayunejaz/travel-planning-app/internal/service"
)

func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administer user accounts",
	}
	cmd.AddCommand(newUserGrantRoleCommand(rootOpts))
	return cmd
}

func newUserGrantRoleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-role <user-id> <traveler|agency>",
		Short: "Change the role of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid user id", err)
			}
			role := domain.UserRole(args[1])
			if !role.Valid() {
				return WrapExitError(ExitCommandError, "invalid role", fmt.Errorf("%w: %q", service.ErrRoleInvalid, args[1]))
			}

			ctx := cmd.Context()
			a, err := rootOpts.open(ctx, rootOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start", err)
			}
			defer a.Close()

			user, err := a.GrantRole(ctx, userID, role)
			switch {
			case errors.Is(err, app.ErrNoDatabase):
				return WrapExitError(ExitCommandError, "accounts need the database", err)
			case errors.Is(err, ports.ErrRecordNotFound):
				return WrapExitError(ExitFailure, "no such user", err)
			case err != nil:
				return WrapExitError(ExitFailure, "failed to update role", err)
			}

			out := struct {
				ID    string `json:"id"`
				Email string `json:"email"`
				Role  string `json:"role"`
			}{
				ID:    user.ID.String(),
				Email: user.Email,
				Role:  string(user.Role),
			}
			return printResult(cmd.OutOrStdout(), rootOpts.Format, out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s (%s) is now %s\n", out.Email, out.ID, out.Role)
				return err
			})
		},
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/app"
	"github.com/humayunejaz/travel-planning-app/internal/config"
	"github.com/humayunejaz/travel-planning-app/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"
	Verbose bool

	// open builds the application; tests swap it for a local-only build.
	open func(ctx context.Context, opts *RootOptions) (*app.App, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the tripctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{open: openApp})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tripctl",
		Short: "Operate the trip store",
		Long:  "Inspect the local trip cache, promote pending trips and look up invitations.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load environment from this file instead of .env")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log service diagnostics to stderr")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewInvitationCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))

	return cmd
}

func openApp(ctx context.Context, opts *RootOptions) (*app.App, error) {
	var files []string
	if opts.EnvFile != "" {
		files = append(files, opts.EnvFile)
	}
	cfg, err := config.LoadEnv(files...)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop().Sugar()
	if opts.Verbose {
		logger, _, err := logging.New(logging.Config{Level: cfg.LogLevel, Development: true})
		if err != nil {
			return nil, err
		}
		log = logger.Sugar()
	}
	return app.New(cfg, log)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

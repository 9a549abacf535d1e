package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mataroo/mataroo/internal/interfaces/cli/account"
	"github.com/mataroo/mataroo/internal/interfaces/cli/bootstrap"
	"github.com/mataroo/mataroo/internal/interfaces/cli/connections"
	"github.com/mataroo/mataroo/internal/interfaces/cli/content"
	"github.com/mataroo/mataroo/internal/interfaces/cli/server"
	"github.com/mataroo/mataroo/internal/interfaces/cli/upgrade"
	apperrors "github.com/mataroo/mataroo/internal/shared/errors"
)

func main() {
	flags := &bootstrap.Flags{}

	rootCmd := &cobra.Command{
		Use:           "mataroo",
		Short:         "Mataroo - AI social posting from your terminal",
		Long:          `Mataroo drafts and publishes social posts, manages linked accounts and your subscription, and serves a local dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.Register(rootCmd)

	rootCmd.AddCommand(
		account.NewLoginCommand(flags),
		account.NewLogoutCommand(flags),
		account.NewStatusCommand(flags),
		connections.NewCommand(flags),
		upgrade.NewCommand(flags),
		content.NewGenerateCommand(flags),
		content.NewPostCommand(flags),
		content.NewHistoryCommand(flags),
		server.NewCommand(flags),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe prefers the user-facing message of an application error.
func describe(err error) string {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		return err.Error()
	}
	if appErr.Details != "" && appErr.Details != appErr.Message {
		return appErr.Message + ": " + appErr.Details
	}
	return appErr.Message
}

// Package account holds the login, logout and status commands.
package account

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	authusecases "github.com/mataroo/mataroo/internal/application/auth/usecases"
	connusecases "github.com/mataroo/mataroo/internal/application/connection/usecases"
	subusecases "github.com/mataroo/mataroo/internal/application/subscription/usecases"
	"github.com/mataroo/mataroo/internal/interfaces/cli/bootstrap"
	"github.com/mataroo/mataroo/internal/interfaces/cli/output"
	apperrors "github.com/mataroo/mataroo/internal/shared/errors"
)

func NewLoginCommand(flags *bootstrap.Flags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				if email, err = prompt(cmd.ErrOrStderr(), in, "Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword(cmd.ErrOrStderr(), in)
			if err != nil {
				return err
			}

			result, err := app.Login.Execute(cmd.Context(), authusecases.LoginCommand{Email: email, Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (session valid until %s)\n",
				result.Email, result.ExpiresAt.Local().Format(time.DateTime))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	return cmd
}

func NewLogoutCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Logout.Execute(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func NewStatusCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session, plan usage and linked accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			return printStatus(cmd.Context(), cmd.OutOrStdout(), app)
		},
	}
}

func printStatus(ctx context.Context, out io.Writer, app *bootstrap.App) error {
	sess, err := app.Sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil {
		return apperrors.NewUnauthenticatedError("Run `mataroo login` first")
	}

	t := output.NewTable(out)
	t.Append([]string{"Account", sess.Email})
	t.Append([]string{"Session expires", sess.ExpiresAt.Local().Format(time.DateTime)})

	usage, err := app.GetUsage.Execute(ctx, subusecases.GetUsageQuery{Fresh: true})
	if err != nil {
		t.Render()
		return err
	}
	t.Append([]string{"Plan", fmt.Sprintf("%s (%s)", usage.PlanName, usage.Status)})
	t.Append([]string{"Posts used", fmt.Sprintf("%d / %s", usage.PostsUsed, usage.PostsLimit)})
	if usage.CurrentPeriodEnd != nil {
		t.Append([]string{"Period ends", *usage.CurrentPeriodEnd})
	}
	t.Append([]string{"", usage.Message})

	conns, err := app.ListConnections.Execute(ctx, connusecases.ListConnectionsQuery{})
	if err != nil {
		t.Render()
		return err
	}
	for _, c := range conns.Connections {
		state := "connected"
		if !c.IsActive {
			state = "inactive"
		}
		t.Append([]string{c.DisplayName, fmt.Sprintf("%s @%s", state, c.Username)})
	}
	if len(conns.Connections) == 0 {
		t.Append([]string{"Accounts", "none linked"})
	}
	t.Render()
	return nil
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal, or a plain line when
// stdin is piped.
func readPassword(out io.Writer, in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(out, in, "")
	}
	fmt.Fprint(out, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

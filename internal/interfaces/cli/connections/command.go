package connections

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	connusecases "github.com/mataroo/mataroo/internal/application/connection/usecases"
	"github.com/mataroo/mataroo/internal/interfaces/cli/bootstrap"
	"github.com/mataroo/mataroo/internal/interfaces/cli/output"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Manage linked social accounts",
	}

	cmd.AddCommand(
		newListCommand(flags),
		newConnectCommand(flags),
		newDisconnectCommand(flags),
	)
	return cmd
}

func newListCommand(flags *bootstrap.Flags) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List linked accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.ListConnections.Execute(cmd.Context(), connusecases.ListConnectionsQuery{Fresh: fresh})
			if err != nil {
				return err
			}

			t := output.NewTable(cmd.OutOrStdout(), "PLATFORM", "CONNECTED", "USERNAME", "SINCE")

			platforms := make([]string, 0, len(result.Connected))
			for p := range result.Connected {
				platforms = append(platforms, p)
			}
			sort.Strings(platforms)

			for _, p := range platforms {
				username, since := "-", "-"
				for _, c := range result.Connections {
					if c.Platform != p {
						continue
					}
					if c.Username != "" {
						username = "@" + c.Username
					}
					if c.ConnectedAt != nil {
						since = *c.ConnectedAt
					}
				}
				t.Append([]string{p, strconv.FormatBool(result.Connected[p]), username, since})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore the cached list")
	return cmd
}

func newConnectCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <platform>",
		Short: "Link an account through the provider's authorization page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags, bootstrap.WithURLPrinter(func(url string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Open %s\n", url)
			}))
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Connect.Execute(cmd.Context(), connusecases.ConnectCommand{Platform: args[0]})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Authorize %s in your browser:\n  %s\n", result.Platform, result.AuthURL)
			fmt.Fprintln(cmd.OutOrStdout(), "Run `mataroo serve` to receive the redirect, or `mataroo connections list --fresh` afterwards.")
			return nil
		},
	}
}

func newDisconnectCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <platform>",
		Short: "Unlink an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Disconnect.Execute(cmd.Context(), connusecases.DisconnectCommand{Platform: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
}

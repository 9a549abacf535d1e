package upgrade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	paydto "github.com/mataroo/mataroo/internal/application/payment/dto"
	payusecases "github.com/mataroo/mataroo/internal/application/payment/usecases"
	"github.com/mataroo/mataroo/internal/interfaces/cli/bootstrap"
	"github.com/mataroo/mataroo/internal/interfaces/cli/server"
	apperrors "github.com/mataroo/mataroo/internal/shared/errors"
)

const pollInterval = 500 * time.Millisecond

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade to the Pro plan",
		Long: `Create a payment order, open the checkout in your browser and wait for the
payment to be verified. The local dashboard server runs while the checkout is open.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			app, err := bootstrap.Load(ctx, flags, bootstrap.WithURLPrinter(func(url string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Complete the payment at %s\n", url)
			}))
			if err != nil {
				return err
			}
			defer app.Close()

			serveCtx, stopServer := context.WithCancel(context.Background())
			serveErr := make(chan error, 1)
			go func() { serveErr <- server.Serve(serveCtx, app) }()
			defer func() {
				stopServer()
				<-serveErr
			}()

			if _, err := app.Upgrade.Start(ctx); err != nil {
				return err
			}

			final, err := wait(ctx, app.Upgrade, serveErr)
			if err != nil {
				return err
			}
			return report(cmd, final)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "How long to wait for the checkout to finish")
	return cmd
}

type attemptSource interface {
	Current() *paydto.AttemptDTO
}

// wait polls until the attempt leaves the in-flight states.
func wait(ctx context.Context, flow attemptSource, serveErr <-chan error) (*paydto.AttemptDTO, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if current := flow.Current(); !current.Busy {
			return current, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, errors.New("checkout was not completed in time")
			}
			return nil, ctx.Err()
		case err := <-serveErr:
			if err == nil {
				err = errors.New("dashboard server stopped")
			}
			return nil, err
		case <-ticker.C:
		}
	}
}

func report(cmd *cobra.Command, a *paydto.AttemptDTO) error {
	outcome := a.Outcome
	if outcome == "" {
		outcome = a.State
	}

	switch outcome {
	case "verified":
		fmt.Fprintln(cmd.OutOrStdout(), payusecases.MessageUpgraded)
		return nil
	case "dismissed":
		fmt.Fprintln(cmd.OutOrStdout(), a.Message)
		return nil
	case "verification_failed":
		return apperrors.NewVerificationRejectedError(payusecases.MessageVerificationFailed)
	default:
		return apperrors.NewGatewayFailedError(orDefault(a.Message, payusecases.MessagePaymentFailed))
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

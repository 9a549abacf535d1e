package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mataroo/mataroo/internal/infrastructure/config"
	"github.com/mataroo/mataroo/internal/shared/biztime"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// Flags are the persistent flags every command shares.
type Flags struct {
	ConfigFile string
	Debug      bool
}

// Register binds the flags to cmd and all of its subcommands.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.ConfigFile, "config", "c", "", "Config file (default: ./configs/config.yaml or $HOME/.mataroo/config.yaml)")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}

// Load reads configuration, initializes logging and wires the client.
func Load(ctx context.Context, f *Flags, opts ...Option) (*App, error) {
	cfg, err := config.Load(f.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, f.Debug); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if f.Debug {
		logger.SetLevel(slog.LevelDebug)
	}

	if err := biztime.Init(cfg.Biz.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return New(ctx, cfg, logger.NewLogger(), opts...)
}

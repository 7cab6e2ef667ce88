// Package cli implements studyctl, the operator tool for indexing notes and
// running the tutor without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studybuddy/internal/bootstrap"
	"studybuddy/internal/config"
	"studybuddy/internal/logger"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "studyctl",
	Short: "Study Buddy operator tool",
	Long: `studyctl indexes study material and talks to the tutor from the shell.
It reads the same configuration as the server (CONFIG_FILE, ENV_FILE and
environment variables).

Example usage:
  studyctl ingest --reset                 # Rebuild the index from data/
  studyctl ask "what is osmosis?"         # Ask the tutor
  studyctl quiz "cell biology" -n 5       # Generate a quiz`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log, err = logger.New(cfg.Log.Level, cfg.App.Env)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp validates the config, wires the application and runs fn with a
// context carrying the logger tagged with action.
func withApp(cmd *cobra.Command, action string, fn func(ctx context.Context, a *bootstrap.App) error) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := logger.WithAction(ctxzap.ToContext(cmd.Context(), log), action)
	a, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close resources failed", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}

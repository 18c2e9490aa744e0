// Package cli implements the parkctl command tree.
package cli

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"parkcore/internal/config"
	"parkcore/internal/logging"
)

// state is shared by every subcommand after the root's pre-run.
type state struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewRootCommand builds parkctl. Configuration comes from PARK_* variables;
// flags override individual settings.
func NewRootCommand() *cobra.Command {
	st := &state{}
	var (
		logLevel string
		storage  string
	)
	root := &cobra.Command{
		Use:           "parkctl",
		Short:         "Run and operate the park zone engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if storage != "" {
				cfg.Storage.Driver = storage
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, _ := config.ParseLevel(cfg.LogLevel)
			st.cfg = cfg
			st.logger = logging.New(logging.Config{Level: level, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override PARK_LOG_LEVEL")
	root.PersistentFlags().StringVar(&storage, "storage", "", "override PARK_STORAGE_DRIVER (memory, sqlite, postgres, badger)")

	root.AddCommand(
		newServeCommand(st),
		newSpeciesCommand(st),
		newCompatCommand(st),
		newStatusCommand(st),
		newSeedCommand(st),
		newSnapshotCommand(st),
	)
	return root
}

// Execute runs parkctl with os.Args and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		slog.Error("parkctl failed", "error", err)
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}


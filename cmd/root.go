package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hurou927/db-join-path/internal/config"
	"github.com/hurou927/db-join-path/internal/logging"
)

var (
	cfgPath     string
	schemaFiles []string
	logLevel    string
	cfg         *config.Config
	logger      *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "db-join-path",
	Short: "Compute the joins connecting tables of a described schema",
	Long: `db-join-path reads a table schema (a data package descriptor, a SQLite
database or a live PostgreSQL database), builds its foreign key graph and
computes the minimal join clauses connecting one table to another.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		switch {
		case cfgPath != "":
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			if len(schemaFiles) > 0 {
				cfg.UseFiles(schemaFiles)
			}
		case len(schemaFiles) > 0:
			cfg = &config.Config{}
			cfg.UseFiles(schemaFiles)
		default:
			return fmt.Errorf("--config or --schema is required")
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringArrayVar(&schemaFiles, "schema", nil, "data package descriptor (JSON or YAML); repeatable, overrides the config source")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

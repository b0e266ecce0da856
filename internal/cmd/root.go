package cmd

import (
	"fmt"
	"os"

	"github.com/datahub/backend/internal/config"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	flagConfig string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "datahub",
	Short: "DataHub catalog server",
	Long: `DataHub keeps a catalog of users' files, the tags attached to them
and the collections they are grouped into.

Get started:
  datahub config generate     Write a datahub.yaml with the defaults
  datahub seed                Install the demo data set
  datahub serve               Start the HTTP API`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFile(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Setup(logger.Options{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
		utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file (default: datahub.yaml in ., ./config or /etc/datahub)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

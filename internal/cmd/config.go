package cmd

import (
	"fmt"
	"os"

	"github.com/datahub/backend/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flagOutput    string
	flagOverwrite bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and generate configuration",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a config file populated with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.Default())
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}

		if flagOutput == "" || flagOutput == "-" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}

		if !flagOverwrite {
			if _, err := os.Stat(flagOutput); err == nil {
				return fmt.Errorf("%s already exists (use --overwrite to replace it)", flagOutput)
			}
		}
		if err := os.WriteFile(flagOutput, data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", flagOutput, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flagOutput)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.JWT.Secret != "" {
			shown.JWT.Secret = "[REDACTED]"
		}
		if shown.DB.Password != "" {
			shown.DB.Password = "[REDACTED]"
		}
		if shown.MinIO.SecretKey != "" {
			shown.MinIO.SecretKey = "[REDACTED]"
		}

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configGenerateCmd.Flags().StringVarP(&flagOutput, "output", "o", "datahub.yaml", "Destination file, or - for stdout")
	configGenerateCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "Replace an existing file")

	configCmd.AddCommand(configGenerateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

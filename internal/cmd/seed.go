package cmd

import (
	"context"
	"fmt"

	"github.com/datahub/backend/internal/database"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the demo users, tags, files and collections",
	Long: `Seed creates alice, bob and carol (password "password") with a few
tagged files and collections. Rows that already exist are left as they are,
so the command can be run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		db, err := database.Connect(cfg.DB)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer func() {
			_ = database.Close(db)
		}()

		result, err := database.Seed(ctx, db)
		if err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d tags, %d files, %d collections\n",
			result.Users, result.Tags, result.Files, result.Collections)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

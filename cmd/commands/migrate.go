package commands

import (
	"rukami/internal/database"
	"rukami/pkg/logger"

	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close(db)
		logger.Logger.Info().Msg("Migrations applied")
		return nil
	},
}

// seedCmd loads sample categories and products
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample categories and products into empty tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close(db)
		if err := database.Seed(cmd.Context(), db); err != nil {
			return err
		}
		logger.Logger.Info().Msg("Sample data loaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// Package commands implements the rukami command line.
package commands

import (
	"fmt"
	"os"

	"rukami/internal/config"
	"rukami/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rukami",
	Short: "Rukami - marketplace for handmade goods",
	Long: `Rukami serves the marketplace REST API and the Telegram bot.

Configuration is read from environment variables and an optional config.yaml.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded

		logger.Init(cmd.Name(), cfg.Debug)
		logger.SetLevel(cfg.LogLevel)
		if cfg.Debug {
			logger.SetLevel("debug")
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (default ./config.yaml if present)")
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"rukami/internal/database"
	"rukami/internal/server"
	"rukami/internal/services"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// botCmd runs the Telegram bot without the HTTP API
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot and new product notifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.BotToken == "" {
			return fmt.Errorf("BOT_TOKEN is required")
		}
		return runBotOnly(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBotOnly(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)

	events := openEvents()
	var publisher services.EventPublisher
	if events != nil {
		defer events.Close()
		publisher = events
	}

	g, gctx := errgroup.WithContext(ctx)
	closeStore, err := runBot(gctx, g, db, server.NewServices(db, cfg, publisher), events)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"rukami/internal/database"
	"rukami/internal/server"
	"rukami/internal/services"
	"rukami/pkg/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var withBot bool

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Long: `Run the REST API. When BOT_TOKEN is set the Telegram bot and the
new product notifier run in the same process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withBot, "bot", true, "Also run the Telegram bot when BOT_TOKEN is set")
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDefaultSecret() {
		logger.Logger.Warn().Msg("SESSION_SECRET is not set, using an insecure development secret")
	}

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

	svc := server.NewServices(db, cfg, publisher)
	app := server.New(cfg, db, svc)

	g, gctx := errgroup.WithContext(ctx)

	switch {
	case !withBot:
		logger.Logger.Info().Msg("Telegram bot disabled by --bot=false")
	case cfg.BotToken == "":
		logger.Logger.Info().Msg("BOT_TOKEN not set, Telegram bot disabled")
	default:
		closeStore, err := runBot(gctx, g, db, svc, events)
		if err != nil {
			return err
		}
		defer closeStore()
	}

	g.Go(func() error {
		logger.Logger.Info().Str("addr", cfg.Addr()).Msg("Starting HTTP server")
		return app.Listen(cfg.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Logger.Info().Msg("Shutting down HTTP server")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Logger.Info().Msg("Server gracefully stopped")
	return nil
}

package commands

import (
	"context"
	"fmt"

	"rukami/internal/bot"
	"rukami/internal/database"
	"rukami/internal/notifier"
	"rukami/internal/repositories"
	"rukami/internal/server"
	"rukami/pkg/logger"
	"rukami/pkg/rabbitmq"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// notifierQueue receives product.created events that wake the notifier early.
const notifierQueue = "rukami.notifier"

// openDatabase connects and brings the schema up to date.
func openDatabase() (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

// openEvents connects to RabbitMQ when RABBITMQ_URL is set. A nil client
// means events are disabled.
func openEvents() *rabbitmq.Client {
	if cfg.RabbitMQURL == "" {
		return nil
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("RabbitMQ unavailable, product events disabled")
		return nil
	}
	return client
}

// sessionStore picks Redis when REDIS_URL is set and memory otherwise.
func sessionStore(ctx context.Context) (bot.SessionStore, func(), error) {
	if cfg.RedisURL == "" {
		return bot.NewMemoryStore(cfg.BotSessionTTL), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Logger.Info().Str("addr", opts.Addr).Msg("Bot sessions stored in Redis")
	return bot.NewRedisStore(client, cfg.BotSessionTTL), func() { client.Close() }, nil
}

// runBot starts the Telegram bot and the new product notifier on g.
func runBot(ctx context.Context, g *errgroup.Group, db *gorm.DB, svc *server.Services, events *rabbitmq.Client) (func(), error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Logger.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	store, closeStore, err := sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	b := bot.New(api, bot.Services{
		Auth:       svc.Auth,
		Categories: svc.Categories,
		Products:   svc.Products,
		Favorites:  svc.Favorites,
		Cart:       svc.Cart,
	}, store, cfg.UploadDir)

	n := notifier.New(
		repositories.NewGORMProductRepository(db),
		repositories.NewGORMUserRepository(db),
		bot.NewSender(api, cfg.UploadDir),
		cfg.NotifyInterval,
		cfg.NotifySendDelay,
	)

	if events != nil {
		wake := func(ev rabbitmq.ProductEvent) error {
			logger.Logger.Debug().Uint("product_id", ev.ProductID).Msg("Product created, waking notifier")
			n.Wake()
			return nil
		}
		if err := events.ConsumeProductEvents(ctx, notifierQueue, rabbitmq.EventProductCreated, wake); err != nil {
			logger.Logger.Warn().Err(err).Msg("Product event consumer not started, notifier polls only")
		}
	}

	g.Go(func() error { return b.Run(ctx) })
	g.Go(func() error { return n.Run(ctx) })
	return closeStore, nil
}

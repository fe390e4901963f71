// Package notifier broadcasts newly listed products to chat subscribers.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"rukami/internal/models"
	"rukami/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ImageUnavailableNote is appended to the text when a photo could not be sent.
const ImageUnavailableNote = "⚠️ Изображение временно недоступно"

// initialLookback is how far back the first tick looks.
const initialLookback = time.Hour

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rukami_notifications_total",
		Help: "New product notifications by delivery result",
	},
	[]string{"result"},
)

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Text string
	Data string
}

// Message is one outbound chat message. A non-empty PhotoURL sends a photo
// with Text as its caption.
type Message struct {
	ChatID   int64
	Text     string
	PhotoURL string
	Buttons  [][]Button
}

// Sender delivers a message to a chat.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ProductSource finds products listed after a point in time.
type ProductSource interface {
	NewProductsSince(ctx context.Context, since time.Time) ([]models.Product, error)
}

// SubscriberSource lists users who opted in to broadcasts.
type SubscriberSource interface {
	ListSubscribers(ctx context.Context) ([]models.User, error)
}

// Notifier polls for new products and fans each one out to every subscriber.
type Notifier struct {
	products    ProductSource
	subscribers SubscriberSource
	sender      Sender

	Interval  time.Duration
	SendDelay time.Duration

	now  func() time.Time
	wake chan struct{}

	mu        sync.Mutex
	watermark time.Time
}

// New creates a Notifier. The watermark is set on the first Tick.
func New(products ProductSource, subscribers SubscriberSource, sender Sender, interval, sendDelay time.Duration) *Notifier {
	return &Notifier{
		products:    products,
		subscribers: subscribers,
		sender:      sender,
		Interval:    interval,
		SendDelay:   sendDelay,
		now:         time.Now,
		wake:        make(chan struct{}, 1),
	}
}

// Watermark returns the creation time up to which products have been broadcast.
func (n *Notifier) Watermark() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.watermark
}

// Wake asks a running loop to tick now instead of waiting for the interval.
// It never blocks.
func (n *Notifier) Wake() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Run ticks until ctx is cancelled. Tick errors are logged and the loop continues.
func (n *Notifier) Run(ctx context.Context) error {
	logger.Logger.Info().Dur("interval", n.Interval).Msg("Product notifier started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info().Msg("Product notifier stopped")
			return nil
		case <-timer.C:
		case <-n.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if err := n.Tick(ctx); err != nil && ctx.Err() == nil {
			logger.Logger.Error().Err(err).Msg("Product notification tick failed")
		}
		timer.Reset(n.Interval)
	}
}

// Tick broadcasts products created after the watermark and then advances the
// watermark to the tick's start. When a query fails the watermark is kept so
// the next tick retries the same window.
func (n *Notifier) Tick(ctx context.Context) error {
	now := n.now().UTC()

	n.mu.Lock()
	since := n.watermark
	if since.IsZero() {
		since = now.Add(-initialLookback)
		n.watermark = since
	}
	n.mu.Unlock()

	products, err := n.products.NewProductsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to query new products: %w", err)
	}

	if len(products) > 0 {
		subscribers, err := n.subscribers.ListSubscribers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list subscribers: %w", err)
		}
		logger.Logger.Info().
			Int("products", len(products)).
			Int("subscribers", len(subscribers)).
			Msg("Broadcasting new products")
		if err := n.broadcast(ctx, products, subscribers); err != nil {
			return err
		}
	}

	n.mu.Lock()
	n.watermark = now
	n.mu.Unlock()
	return nil
}

func (n *Notifier) broadcast(ctx context.Context, products []models.Product, subscribers []models.User) error {
	first := true
	for i := range products {
		for _, user := range subscribers {
			if user.TelegramID == nil {
				continue
			}
			if !first {
				if err := sleep(ctx, n.SendDelay); err != nil {
					return err
				}
			}
			first = false
			n.deliver(ctx, ProductMessage(*user.TelegramID, &products[i]))
		}
	}
	return nil
}

// deliver sends msg, falling back to text when the photo fails. Failures
// are logged and counted, never retried.
func (n *Notifier) deliver(ctx context.Context, msg Message) {
	err := n.sender.Send(ctx, msg)
	if err == nil {
		notificationsTotal.WithLabelValues("sent").Inc()
		return
	}

	if msg.PhotoURL != "" {
		logger.Logger.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("Failed to send product photo")
		fallback := msg
		fallback.PhotoURL = ""
		fallback.Text = msg.Text + "\n\n" + ImageUnavailableNote
		if err = n.sender.Send(ctx, fallback); err == nil {
			notificationsTotal.WithLabelValues("fallback").Inc()
			return
		}
	}

	notificationsTotal.WithLabelValues("failed").Inc()
	logger.Logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("Failed to send product notification")
}

// ProductMessage renders the broadcast for one product in Telegram Markdown.
func ProductMessage(chatID int64, p *models.Product) Message {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }

	var b strings.Builder
	b.WriteString("🆕 *Новый товар в Rukami!*\n\n")
	fmt.Fprintf(&b, "🎨 *%s*\n\n", esc(p.Name))
	fmt.Fprintf(&b, "📝 %s\n\n", esc(p.Description))
	fmt.Fprintf(&b, "💰 *Цена:* %s ₽\n", p.Price.StringFixed(2))
	fmt.Fprintf(&b, "📂 *Категория:* %s\n", esc(p.CategoryName()))
	fmt.Fprintf(&b, "👤 *Продавец:* %s\n", esc(p.SellerName()))

	return Message{
		ChatID:   chatID,
		Text:     b.String(),
		PhotoURL: p.ImageURL,
		Buttons: [][]Button{
			{{Text: "👀 Посмотреть", Data: fmt.Sprintf("product_%d", p.ID)}},
			{{Text: "🛍️ Каталог", Data: "catalog"}},
		},
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

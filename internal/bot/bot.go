// Package bot is the Telegram front-end of the marketplace.
package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"rukami/internal/models"
	"rukami/internal/services"
	"rukami/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// categoryPageSize caps the products listed for one category.
const categoryPageSize = 10

var updatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rukami_bot_updates_total",
		Help: "Telegram updates handled by kind",
	},
	[]string{"kind"},
)

// Client is the subset of *tgbotapi.BotAPI the bot uses.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services are the domain operations the bot drives.
type Services struct {
	Auth       *services.AuthService
	Categories *services.CategoryService
	Products   *services.ProductService
	Favorites  *services.FavoriteService
	Cart       *services.CartService
}

// Bot routes Telegram updates to commands, callbacks and dialogues.
type Bot struct {
	api       Client
	svc       Services
	sessions  SessionStore
	uploadDir string

	mu        sync.Mutex
	dialogues map[int64]*dialogue
}

// New creates a Bot. uploadDir resolves locally stored product images.
func New(api Client, svc Services, sessions SessionStore, uploadDir string) *Bot {
	return &Bot{
		api:       api,
		svc:       svc,
		sessions:  sessions,
		uploadDir: uploadDir,
		dialogues: make(map[int64]*dialogue),
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	logger.Logger.Info().Msg("Telegram bot started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Logger.Info().Msg("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one update. Panics are logged, not propagated.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Logger.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("Recovered from panic in bot handler")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		updatesTotal.WithLabelValues("callback").Inc()
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		updatesTotal.WithLabelValues("message").Inc()
		b.handleMessage(ctx, update.Message)
	default:
		updatesTotal.WithLabelValues("other").Inc()
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		aborted := b.abortDialogue(chatID)
		switch msg.Command() {
		case "start":
			b.start(ctx, msg)
		case "catalog":
			text, markup := b.catalogView(ctx)
			b.reply(chatID, text, &markup)
		case "help":
			b.reply(chatID, textHelp, nil)
		case "cancel":
			if aborted {
				b.replyPlain(chatID, textCancelled)
			} else {
				b.replyPlain(chatID, textUnknown)
			}
		default:
			b.replyPlain(chatID, textUnknown)
		}
		return
	}

	if d := b.activeDialogue(chatID); d != nil {
		var telegramID int64
		if msg.From != nil {
			telegramID = msg.From.ID
		}
		reply := b.advance(ctx, input{chatID: chatID, telegramID: telegramID, messageID: msg.MessageID, text: msg.Text}, d)
		b.replyPlain(chatID, reply)
		return
	}

	b.replyPlain(chatID, textUnknown)
}

// start restores the session of a linked Telegram account and shows the menu.
func (b *Bot) start(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	firstName := ""
	if msg.From != nil {
		firstName = msg.From.FirstName
		if _, err := b.sessions.Get(ctx, chatID); errors.Is(err, ErrNoSession) {
			if user, err := b.svc.Auth.GetByTelegramID(ctx, msg.From.ID); err == nil {
				if _, err := b.sessions.Open(ctx, chatID, user); err != nil {
					logger.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to restore bot session")
				}
			}
		}
	}

	markup := mainMenuKeyboard(b.authenticated(ctx, chatID))
	b.reply(chatID, welcomeText(firstName), &markup)
}

func (b *Bot) authenticated(ctx context.Context, chatID int64) bool {
	_, err := b.session(ctx, chatID)
	return err == nil
}

func (b *Bot) session(ctx context.Context, chatID int64) (*Session, error) {
	s, err := b.sessions.Get(ctx, chatID)
	if err != nil && !errors.Is(err, ErrNoSession) {
		logger.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("Session lookup failed")
	}
	return s, err
}

// view is the content of one screen.
type view struct {
	text   string
	markup tgbotapi.InlineKeyboardMarkup
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		b.answer(q.ID, "")
		return
	}
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID
	data := q.Data

	toast := ""
	var screen *view

	switch {
	case data == cbCatalog:
		text, markup := b.catalogView(ctx)
		screen = &view{text, markup}
	case data == cbAbout:
		screen = &view{textAbout, menuOnlyKeyboard()}
	case data == cbMainMenu:
		screen = &view{welcomeText(q.From.FirstName), mainMenuKeyboard(b.authenticated(ctx, chatID))}
	case data == cbRegister:
		b.startDialogue(chatID, StateRegisterName)
		screen = &view{promptRegisterName, tgbotapi.InlineKeyboardMarkup{}}
	case data == cbLogin:
		b.startDialogue(chatID, StateLoginEmail)
		screen = &view{promptLogin, tgbotapi.InlineKeyboardMarkup{}}
	case data == cbLogout:
		if err := b.sessions.Close(ctx, chatID); err != nil {
			logger.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to close bot session")
		}
		toast = "👋 Вы вышли из аккаунта"
		screen = &view{welcomeText(q.From.FirstName), mainMenuKeyboard(false)}
	case strings.HasPrefix(data, cbCategoryPrefix):
		if id, ok := parseID(data, cbCategoryPrefix); ok {
			text, markup := b.categoryView(ctx, id)
			screen = &view{text, markup}
		}
	case strings.HasPrefix(data, cbProductPrefix):
		if id, ok := parseID(data, cbProductPrefix); ok {
			b.showProduct(ctx, chatID, messageID, id)
		}
	default:
		toast, screen = b.handleMemberCallback(ctx, q, chatID)
	}

	b.answer(q.ID, toast)
	if screen != nil {
		b.edit(chatID, messageID, screen.text, screen.markup)
	}
}

// handleMemberCallback serves callbacks that need a session.
func (b *Bot) handleMemberCallback(ctx context.Context, q *tgbotapi.CallbackQuery, chatID int64) (string, *view) {
	data := q.Data
	switch {
	case data == cbFavorites, data == cbCart, data == cbProfile,
		data == cbNotifySettings, data == cbNotifyOn, data == cbNotifyOff,
		strings.HasPrefix(data, cbAddToCartPrefix), strings.HasPrefix(data, cbAddFavoritePrefix):
	default:
		logger.Logger.Debug().Str("data", data).Msg("Unknown callback")
		return "", nil
	}

	s, err := b.session(ctx, chatID)
	if err != nil {
		return "", &view{textAuthRequired, authRequiredKeyboard()}
	}

	switch {
	case data == cbFavorites:
		favorites, err := b.svc.Favorites.List(ctx, s.UserID)
		if err != nil {
			return b.failed(err, "favorites")
		}
		products := make([]models.Product, 0, len(favorites))
		for _, f := range favorites {
			if f.Product != nil {
				products = append(products, *f.Product)
			}
		}
		return "", &view{favoritesText(favorites), productListKeyboard(products, cbMainMenu)}

	case data == cbCart:
		cart, err := b.svc.Cart.Get(ctx, s.UserID)
		if err != nil {
			return b.failed(err, "cart")
		}
		return "", &view{cartText(cart), menuOnlyKeyboard()}

	case data == cbProfile:
		user, err := b.svc.Auth.GetUser(ctx, s.UserID)
		if err != nil {
			return b.failed(err, "profile")
		}
		return "", &view{profileText(user), profileKeyboard()}

	case data == cbNotifySettings, data == cbNotifyOn, data == cbNotifyOff:
		toast := ""
		if data != cbNotifySettings {
			enabled := data == cbNotifyOn
			if err := b.svc.Auth.SetNotifications(ctx, q.From.ID, enabled); err != nil {
				return b.failed(err, "notifications")
			}
			toast = "🔔 Уведомления выключены"
			if enabled {
				toast = "🔔 Уведомления включены"
			}
		}
		user, err := b.svc.Auth.GetUser(ctx, s.UserID)
		if err != nil {
			return b.failed(err, "notifications")
		}
		return toast, &view{notificationsText(user.NotificationsEnabled), notificationsKeyboard(user.NotificationsEnabled)}

	case strings.HasPrefix(data, cbAddToCartPrefix):
		id, ok := parseID(data, cbAddToCartPrefix)
		if !ok {
			return "", nil
		}
		if err := b.svc.Cart.Add(ctx, s.UserID, id, 1); err != nil {
			return userFacing(err, "Не удалось добавить товар в корзину"), nil
		}
		return "🛒 Товар добавлен в корзину!", nil

	default:
		id, ok := parseID(data, cbAddFavoritePrefix)
		if !ok {
			return "", nil
		}
		if err := b.svc.Favorites.Add(ctx, s.UserID, id); err != nil {
			return userFacing(err, "Не удалось добавить товар в избранное"), nil
		}
		return "❤️ Товар добавлен в избранное!", nil
	}
}

func (b *Bot) failed(err error, what string) (string, *view) {
	logger.Logger.Error().Err(err).Str("screen", what).Msg("Bot screen failed")
	return "", &view{textError, menuOnlyKeyboard()}
}

// userFacing turns a domain error into a short toast.
func userFacing(err error, fallback string) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "Товар не найден"
	case errors.Is(err, services.ErrValidation):
		return "Товар недоступен для заказа"
	}
	logger.Logger.Error().Err(err).Msg(fallback)
	return fallback
}

func (b *Bot) catalogView(ctx context.Context) (string, tgbotapi.InlineKeyboardMarkup) {
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to load catalog")
		return textError, menuOnlyKeyboard()
	}
	if len(categories) == 0 {
		return textNoCategories, menuOnlyKeyboard()
	}
	return textCatalog, catalogKeyboard(categories)
}

func (b *Bot) categoryView(ctx context.Context, categoryID uint) (string, tgbotapi.InlineKeyboardMarkup) {
	page, err := b.svc.Products.ListByCategory(ctx, categoryID, categoryPageSize, 0)
	if errors.Is(err, services.ErrNotFound) {
		return textEmptyCategory, productListKeyboard(nil, cbCatalog)
	}
	if err != nil {
		logger.Logger.Error().Err(err).Uint("category_id", categoryID).Msg("Failed to load category products")
		return textError, menuOnlyKeyboard()
	}
	return categoryProductsText(page.Products), productListKeyboard(page.Products, cbCatalog)
}

// showProduct replaces the current message with the product photo, or edits
// it into a text card when there is no photo or it cannot be sent.
func (b *Bot) showProduct(ctx context.Context, chatID int64, messageID int, productID uint) {
	product, err := b.svc.Products.Get(ctx, productID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			logger.Logger.Error().Err(err).Uint("product_id", productID).Msg("Failed to load product")
		}
		b.edit(chatID, messageID, textNoProduct, productListKeyboard(nil, cbCatalog))
		return
	}

	text := productText(product)
	markup := productKeyboard(product, b.authenticated(ctx, chatID))

	if product.ImageURL == "" {
		b.edit(chatID, messageID, text, markup)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, b.photoFile(product.ImageURL))
	photo.Caption = text
	photo.ParseMode = tgbotapi.ModeMarkdown
	photo.ReplyMarkup = markup
	if _, err := b.api.Send(photo); err != nil {
		logger.Logger.Warn().Err(err).Uint("product_id", productID).Msg("Failed to send product photo")
		b.edit(chatID, messageID, withImageNote(text), markup)
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		logger.Logger.Debug().Err(err).Msg("Failed to delete previous message")
	}
}

// photoFile resolves an image URL. Files under /uploads/ are read from disk
// since Telegram cannot fetch them from a local server.
func (b *Bot) photoFile(url string) tgbotapi.RequestFileData {
	return photoFile(b.uploadDir, url)
}

func photoFile(uploadDir, url string) tgbotapi.RequestFileData {
	if name, ok := strings.CutPrefix(url, "/uploads/"); ok && uploadDir != "" {
		return tgbotapi.FilePath(filepath.Join(uploadDir, filepath.Base(name)))
	}
	return tgbotapi.FileURL(url)
}

func (b *Bot) reply(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(msg); err != nil {
		logger.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) replyPlain(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// edit rewrites a message in place and falls back to a new message when the
// original cannot be edited (for example a photo or a deleted message).
func (b *Bot) edit(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	var edit tgbotapi.EditMessageTextConfig
	if len(markup.InlineKeyboard) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(edit)
	if err == nil || strings.Contains(err.Error(), "message is not modified") {
		return
	}
	logger.Logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to edit message")

	var m *tgbotapi.InlineKeyboardMarkup
	if len(markup.InlineKeyboard) > 0 {
		m = &markup
	}
	b.reply(chatID, text, m)
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logger.Logger.Debug().Err(err).Msg("Failed to answer callback")
	}
}

// forget deletes a message that carried a password.
func (b *Bot) forget(in input) {
	if in.messageID == 0 {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(in.chatID, in.messageID)); err != nil {
		logger.Logger.Debug().Err(err).Msg("Failed to delete password message")
	}
}

func parseID(data, prefix string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil || id == 0 {
		logger.Logger.Debug().Str("data", data).Msg("Malformed callback id")
		return 0, false
	}
	return uint(id), true
}

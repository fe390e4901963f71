package bot

import (
	"context"

	"rukami/internal/notifier"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers notifier messages through the Telegram API.
type Sender struct {
	api       Client
	uploadDir string
}

// NewSender creates a Sender. uploadDir resolves /uploads/ image paths.
func NewSender(api Client, uploadDir string) *Sender {
	return &Sender{api: api, uploadDir: uploadDir}
}

// Send posts msg as a photo with caption when it has a PhotoURL, as text otherwise.
func (s *Sender) Send(ctx context.Context, msg notifier.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	markup := markupFrom(msg.Buttons)

	if msg.PhotoURL != "" {
		photo := tgbotapi.NewPhoto(msg.ChatID, photoFile(s.uploadDir, msg.PhotoURL))
		photo.Caption = msg.Text
		photo.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			photo.ReplyMarkup = *markup
		}
		_, err := s.api.Send(photo)
		return err
	}

	text := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	text.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		text.ReplyMarkup = *markup
	}
	_, err := s.api.Send(text)
	return err
}

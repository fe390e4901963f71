package bot

import (
	"context"
	"testing"

	"rukami/internal/notifier"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender(t *testing.T) {
	api := &fakeAPI{}
	sender := NewSender(api, "/srv/uploads")
	buttons := [][]notifier.Button{{{Text: "👀 Посмотреть", Data: "product_1"}}}

	require.NoError(t, sender.Send(context.Background(), notifier.Message{ChatID: 1, Text: "hi", Buttons: buttons}))
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "product_1", *markup.InlineKeyboard[0][0].CallbackData)

	require.NoError(t, sender.Send(context.Background(), notifier.Message{ChatID: 1, Text: "caption", PhotoURL: "/uploads/a.png"}))
	photo, ok := api.sent[1].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, "caption", photo.Caption)
	assert.Equal(t, tgbotapi.FilePath("/srv/uploads/a.png"), photo.File)

	api.failPhoto = true
	assert.Error(t, sender.Send(context.Background(), notifier.Message{ChatID: 1, PhotoURL: "https://x/y.png"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, notifier.Message{ChatID: 1, Text: "late"}), context.Canceled)
}

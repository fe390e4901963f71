package bot

import (
	"context"
	"errors"
	"strings"

	"rukami/internal/services"
	"rukami/internal/validation"
	"rukami/pkg/logger"
)

// State is a step of a multi-message dialogue.
type State string

// Dialogue states. The zero State means no dialogue is active.
const (
	StateNone             State = ""
	StateRegisterName     State = "register_name"
	StateRegisterEmail    State = "register_email"
	StateRegisterPhone    State = "register_phone"
	StateRegisterPassword State = "register_password"
	StateLoginEmail       State = "login_email"
	StateLoginPassword    State = "login_password"
)

type dialogue struct {
	state State
	data  map[string]string
}

// input is one text message received while a dialogue is active.
type input struct {
	chatID     int64
	telegramID int64
	messageID  int
	text       string
}

// stepFunc consumes one message and returns the reply and the next state.
// Returning the current state re-prompts; StateNone ends the dialogue.
type stepFunc func(b *Bot, ctx context.Context, in input, d *dialogue) (string, State)

var steps = map[State]stepFunc{
	StateRegisterName:     (*Bot).registerName,
	StateRegisterEmail:    (*Bot).registerEmail,
	StateRegisterPhone:    (*Bot).registerPhone,
	StateRegisterPassword: (*Bot).registerPassword,
	StateLoginEmail:       (*Bot).loginEmail,
	StateLoginPassword:    (*Bot).loginPassword,
}

const (
	promptRegisterName  = "📝 *Регистрация*\n\nВведите ваше полное имя:\n\n/cancel - отменить"
	promptLogin         = "🔑 *Авторизация*\n\nВведите ваш email:\n\n/cancel - отменить"
	promptEmail         = "📧 Теперь введите ваш email:"
	promptPhone         = "📱 Введите ваш номер телефона:"
	promptNewPassword   = "🔐 Придумайте пароль (минимум 6 символов):"
	promptPassword      = "🔐 Введите ваш пароль:"
	retryName           = "Имя должно содержать минимум 2 символа. Попробуйте еще раз:"
	retryEmail          = "Неверный формат email. Попробуйте еще раз:"
	retryEmailTaken     = "Этот email уже зарегистрирован. Попробуйте другой:"
	retryPhone          = "Неверный формат телефона. Попробуйте еще раз (например: +7 900 123 45 67):"
	retryPassword       = "Пароль должен содержать от 6 символов и быть не длиннее 72 байт. Попробуйте еще раз:"
	failedRegistration  = "❌ Ошибка регистрации. Попробуйте позже или обратитесь в поддержку."
	failedLogin         = "❌ Неверный email или пароль. Попробуйте еще раз или зарегистрируйтесь."
	failedTelegramInUse = "❌ Этот Telegram аккаунт уже привязан к другому пользователю."
)

func (b *Bot) startDialogue(chatID int64, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dialogues[chatID] = &dialogue{state: state, data: make(map[string]string)}
}

// abortDialogue drops any active dialogue and reports whether there was one.
func (b *Bot) abortDialogue(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.dialogues[chatID]
	delete(b.dialogues, chatID)
	return ok
}

func (b *Bot) activeDialogue(chatID int64) *dialogue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dialogues[chatID]
}

// advance runs the step for the dialogue's state and stores the next one.
func (b *Bot) advance(ctx context.Context, in input, d *dialogue) string {
	step, ok := steps[d.state]
	if !ok {
		b.abortDialogue(in.chatID)
		return textUnknown
	}

	reply, next := step(b, ctx, in, d)

	b.mu.Lock()
	defer b.mu.Unlock()
	if next == StateNone {
		delete(b.dialogues, in.chatID)
	} else {
		d.state = next
	}
	return reply
}

func (b *Bot) registerName(_ context.Context, in input, d *dialogue) (string, State) {
	name := strings.TrimSpace(in.text)
	if len([]rune(name)) < 2 {
		return retryName, StateRegisterName
	}
	d.data["name"] = name
	return promptEmail, StateRegisterEmail
}

func (b *Bot) registerEmail(ctx context.Context, in input, d *dialogue) (string, State) {
	email := strings.ToLower(strings.TrimSpace(in.text))
	if !validation.IsEmail(email) {
		return retryEmail, StateRegisterEmail
	}
	taken, err := b.svc.Auth.EmailRegistered(ctx, email)
	if err != nil {
		logger.Logger.Error().Err(err).Int64("chat_id", in.chatID).Msg("Email lookup failed")
		return failedRegistration, StateNone
	}
	if taken {
		return retryEmailTaken, StateRegisterEmail
	}
	d.data["email"] = email
	return promptPhone, StateRegisterPhone
}

func (b *Bot) registerPhone(_ context.Context, in input, d *dialogue) (string, State) {
	phone := strings.TrimSpace(in.text)
	if !validation.IsPhone(phone) {
		return retryPhone, StateRegisterPhone
	}
	d.data["phone"] = phone
	return promptNewPassword, StateRegisterPassword
}

func (b *Bot) registerPassword(ctx context.Context, in input, d *dialogue) (string, State) {
	password := in.text
	b.forget(in)
	if err := services.ValidatePassword(password); err != nil {
		return retryPassword, StateRegisterPassword
	}

	telegramID := in.telegramID
	user, err := b.svc.Auth.Register(ctx, services.RegisterInput{
		Name:       d.data["name"],
		Email:      d.data["email"],
		Phone:      d.data["phone"],
		Password:   password,
		TelegramID: &telegramID,
	})
	if err != nil {
		logger.Logger.Warn().Err(err).Int64("chat_id", in.chatID).Msg("Bot registration failed")
		if errors.Is(err, services.ErrConflict) {
			return failedTelegramInUse, StateNone
		}
		return failedRegistration, StateNone
	}

	if _, err := b.sessions.Open(ctx, in.chatID, user); err != nil {
		logger.Logger.Error().Err(err).Int64("chat_id", in.chatID).Msg("Failed to open bot session")
	}
	return "✅ Регистрация завершена!\n\nДобро пожаловать в Rukami! Используйте /start для начала работы.", StateNone
}

func (b *Bot) loginEmail(_ context.Context, in input, d *dialogue) (string, State) {
	email := strings.ToLower(strings.TrimSpace(in.text))
	if !validation.IsEmail(email) {
		return retryEmail, StateLoginEmail
	}
	d.data["email"] = email
	return promptPassword, StateLoginPassword
}

func (b *Bot) loginPassword(ctx context.Context, in input, d *dialogue) (string, State) {
	password := in.text
	b.forget(in)

	user, err := b.svc.Auth.LinkExternalIdentity(ctx, d.data["email"], password, in.telegramID)
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return failedLogin, StateNone
	case errors.Is(err, services.ErrConflict):
		return failedTelegramInUse, StateNone
	case err != nil:
		logger.Logger.Error().Err(err).Int64("chat_id", in.chatID).Msg("Bot login failed")
		return textError, StateNone
	}

	if _, err := b.sessions.Open(ctx, in.chatID, user); err != nil {
		logger.Logger.Error().Err(err).Int64("chat_id", in.chatID).Msg("Failed to open bot session")
		return textError, StateNone
	}
	return "✅ Авторизация успешна!\n\nДобро пожаловать, " + user.Name + "! Используйте /start для начала работы.", StateNone
}

package bot

import (
	"fmt"

	"rukami/internal/models"
	"rukami/internal/notifier"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data understood by the bot.
const (
	cbCatalog           = "catalog"
	cbFavorites         = "favorites"
	cbCart              = "cart"
	cbProfile           = "profile"
	cbNotifySettings    = "notifications_settings"
	cbNotifyOn          = "notifications_on"
	cbNotifyOff         = "notifications_off"
	cbLogout            = "logout"
	cbAbout             = "about"
	cbMainMenu          = "main_menu"
	cbRegister          = "register"
	cbLogin             = "login"
	cbCategoryPrefix    = "category_"
	cbProductPrefix     = "product_"
	cbAddToCartPrefix   = "add_to_cart_"
	cbAddFavoritePrefix = "add_to_favorites_"
)

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

func backToMenu() []tgbotapi.InlineKeyboardButton {
	return row(button("◀️ Главное меню", cbMainMenu))
}

func mainMenuKeyboard(authenticated bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(button("🛍️ Каталог товаров", cbCatalog)),
	}
	if authenticated {
		rows = append(rows,
			row(button("❤️ Избранное", cbFavorites)),
			row(button("🛒 Корзина", cbCart)),
			row(button("👤 Профиль", cbProfile)),
		)
	} else {
		rows = append(rows,
			row(button("🔑 Войти", cbLogin)),
			row(button("📝 Регистрация", cbRegister)),
		)
	}
	rows = append(rows, row(button("ℹ️ О проекте", cbAbout)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func authRequiredKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("🔑 Войти", cbLogin)),
		row(button("📝 Регистрация", cbRegister)),
		backToMenu(),
	)
}

func catalogKeyboard(categories []models.CategoryWithCount) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories)+1)
	for _, c := range categories {
		label := c.Name
		if c.ProductsCount > 0 {
			label = fmt.Sprintf("%s (%d)", c.Name, c.ProductsCount)
		}
		rows = append(rows, row(button(label, fmt.Sprintf("%s%d", cbCategoryPrefix, c.ID))))
	}
	rows = append(rows, backToMenu())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productListKeyboard(products []models.Product, back string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, row(button("👀 "+truncate(p.Name, 30), fmt.Sprintf("%s%d", cbProductPrefix, p.ID))))
	}
	if back == cbCatalog {
		rows = append(rows, row(button("◀️ Назад к каталогу", cbCatalog)))
	} else {
		rows = append(rows, backToMenu())
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productKeyboard(p *models.Product, authenticated bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if authenticated {
		rows = append(rows,
			row(button("🛒 Добавить в корзину", fmt.Sprintf("%s%d", cbAddToCartPrefix, p.ID))),
			row(button("❤️ В избранное", fmt.Sprintf("%s%d", cbAddFavoritePrefix, p.ID))),
		)
	} else {
		rows = append(rows, row(button("🔑 Войти для покупки", cbLogin)))
	}
	rows = append(rows, row(button("◀️ Назад", fmt.Sprintf("%s%d", cbCategoryPrefix, p.CategoryID))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func profileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(button("🔔 Настройки уведомлений", cbNotifySettings)),
		row(button("🚪 Выйти из аккаунта", cbLogout)),
		backToMenu(),
	)
}

func notificationsKeyboard(enabled bool) tgbotapi.InlineKeyboardMarkup {
	toggle := button("🔔 Включить уведомления", cbNotifyOn)
	if enabled {
		toggle = button("🔕 Выключить уведомления", cbNotifyOff)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row(toggle),
		row(button("◀️ Назад к профилю", cbProfile)),
	)
}

func menuOnlyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(backToMenu())
}

// markupFrom converts notifier buttons into an inline keyboard.
func markupFrom(buttons [][]notifier.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, r := range buttons {
		var out []tgbotapi.InlineKeyboardButton
		for _, b := range r {
			out = append(out, button(b.Text, b.Data))
		}
		rows = append(rows, out)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

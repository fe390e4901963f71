package bot

import (
	"fmt"
	"strings"

	"rukami/internal/models"
	"rukami/internal/notifier"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	textWelcomeBody = "Rukami - это маркетплейс уникальных товаров ручной работы.\n" +
		"Здесь вы найдете:\n" +
		"• Керамику и посуду\n" +
		"• Украшения и бижутерию\n" +
		"• Текстиль и вязаные изделия\n" +
		"• Деревянные изделия\n" +
		"• Натуральное мыло и свечи\n" +
		"• И многое другое!\n\n" +
		"Выберите действие:"

	textHelp = "🤖 *Команды бота Rukami:*\n\n" +
		"/start - Главное меню\n" +
		"/catalog - Каталог товаров\n" +
		"/help - Справка\n" +
		"/cancel - Отменить регистрацию или вход\n\n" +
		"*Навигация:*\n" +
		"Используйте кнопки для удобной навигации по боту.\n\n" +
		"*Функции:*\n" +
		"• Просмотр каталога товаров с изображениями\n" +
		"• Регистрация и авторизация\n" +
		"• Добавление в корзину и избранное\n" +
		"• Уведомления о новых товарах"

	textAbout = "ℹ️ *О проекте Rukami*\n\n" +
		"Rukami - маркетплейс уникальных товаров ручной работы.\n\n" +
		"*Наша миссия:*\n" +
		"Поддержать мастеров и ремесленников, предоставив платформу для продажи их творений.\n\n" +
		"*Что мы предлагаем:*\n" +
		"• Широкий выбор handmade товаров\n" +
		"• Прямую связь с мастерами\n" +
		"• Удобную покупку через Telegram\n\n" +
		"*Версия бота:* 1.0.0"

	textAuthRequired  = "🔒 Для использования этой функции необходимо авторизоваться."
	textCatalog       = "🛍️ *Каталог товаров*\n\nВыберите категорию:"
	textNoCategories  = "Пока что категории не добавлены."
	textEmptyCategory = "В этой категории пока нет товаров."
	textNoProduct     = "Товар не найден."
	textCancelled     = "Операция отменена. Используйте /start для возврата в главное меню."
	textUnknown       = "Не понимаю сообщение. Используйте /start или /help."
	textError         = "Произошла ошибка. Попробуйте позже."
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func welcomeText(firstName string) string {
	greeting := "🌟 Добро пожаловать в Rukami!"
	if firstName != "" {
		greeting = fmt.Sprintf("🌟 Добро пожаловать в Rukami, %s!", esc(firstName))
	}
	return greeting + "\n\n" + textWelcomeBody
}

func categoryProductsText(products []models.Product) string {
	if len(products) == 0 {
		return textEmptyCategory
	}
	var b strings.Builder
	b.WriteString("📦 *Товары в категории*\n\n")
	for i := range products {
		p := &products[i]
		fmt.Fprintf(&b, "• *%s*\n", esc(p.Name))
		fmt.Fprintf(&b, "  💰 %s ₽\n", p.Price.StringFixed(2))
		fmt.Fprintf(&b, "  👤 %s\n\n", esc(p.Author))
	}
	return b.String()
}

func productText(p *models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎨 *%s*\n\n", esc(p.Name))
	fmt.Fprintf(&b, "📝 %s\n\n", esc(p.Description))
	fmt.Fprintf(&b, "💰 *Цена:* %s ₽\n", p.Price.StringFixed(2))
	fmt.Fprintf(&b, "📂 *Категория:* %s\n", esc(p.CategoryName()))
	fmt.Fprintf(&b, "👤 *Продавец:* %s\n", esc(p.SellerName()))
	if p.Owner != nil && p.Owner.Phone != "" {
		fmt.Fprintf(&b, "📞 *Контакт:* %s\n", esc(p.Owner.Phone))
	}
	fmt.Fprintf(&b, "📅 *Добавлено:* %s\n", p.CreatedAt.Format("02.01.2006"))
	return b.String()
}

func profileText(u *models.User) string {
	phone := u.Phone
	if phone == "" {
		phone = "Не указан"
	}
	var b strings.Builder
	b.WriteString("👤 *Профиль*\n\n")
	fmt.Fprintf(&b, "*Имя:* %s\n", esc(u.Name))
	fmt.Fprintf(&b, "*Email:* %s\n", esc(u.Email))
	fmt.Fprintf(&b, "*Телефон:* %s\n", esc(phone))
	fmt.Fprintf(&b, "*Дата регистрации:* %s\n", u.CreatedAt.Format("02.01.2006"))
	return b.String()
}

func notificationsText(enabled bool) string {
	status := "❌ Выключены"
	if enabled {
		status = "✅ Включены"
	}
	return "🔔 *Настройки уведомлений*\n\n" +
		"Уведомления о новых товарах: " + status + "\n\n" +
		"Вы можете включить или выключить уведомления о появлении новых товаров в магазине."
}

func favoritesText(favorites []models.Favorite) string {
	if len(favorites) == 0 {
		return "❤️ *Избранное*\n\nВ избранном пока ничего нет."
	}
	var b strings.Builder
	b.WriteString("❤️ *Избранное*\n\n")
	for _, f := range favorites {
		if f.Product == nil {
			continue
		}
		fmt.Fprintf(&b, "• *%s* - %s ₽\n", esc(f.Product.Name), f.Product.Price.StringFixed(2))
	}
	return b.String()
}

func cartText(cart *models.Cart) string {
	if len(cart.Items) == 0 {
		return "🛒 *Корзина*\n\nКорзина пуста."
	}
	var b strings.Builder
	b.WriteString("🛒 *Корзина*\n\n")
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Product == nil {
			continue
		}
		fmt.Fprintf(&b, "• *%s*\n  %d × %s ₽ = %s ₽\n",
			esc(item.Product.Name), item.Quantity, item.Product.Price.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\n💰 *Итого:* %s ₽", cart.Total.StringFixed(2))
	return b.String()
}

// withImageNote appends the notice used when a product photo cannot be shown.
func withImageNote(text string) string {
	return text + "\n\n" + notifier.ImageUnavailableNote
}

package database

import (
	"context"
	"errors"
	"fmt"

	"rukami/internal/models"
	"rukami/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const studioEmail = "studio@rukami.local"

type seedCategory struct {
	name, description, slug, image string
}

type seedProduct struct {
	name, description string
	price             int64
	categorySlug      string
	author, image     string
}

var sampleCategories = []seedCategory{
	{"Керамика", "Изделия из глины и керамики ручной работы", "ceramics", "category-ceramics.jpg"},
	{"Украшения", "Ювелирные изделия и бижутерия ручной работы", "jewelry", "category-jewelry.jpg"},
	{"Текстиль", "Вязаные изделия, пледы, подушки", "textiles", "category-textiles.jpg"},
	{"Дерево", "Изделия из дерева: шкатулки, декор, мебель", "wood", "category-wood.jpg"},
	{"Мыло", "Натуральное мыло ручной варки", "soap", "category-soap.jpg"},
	{"Свечи", "Ароматические и декоративные свечи", "candles", "category-candles.jpg"},
	{"Игрушки", "Мягкие игрушки и куклы ручной работы", "toys", "category-toys.jpg"},
	{"Картины", "Живопись и графика", "paintings", "category-paintings.jpg"},
	{"Сумки", "Кожаные и текстильные сумки", "bags", "category-bags.jpg"},
	{"Декор", "Предметы интерьера и декор", "decor", "category-decor.jpg"},
}

var sampleProducts = []seedProduct{
	{"Керамическая ваза 'Закат'", "Уникальная ваза ручной работы с градиентом заката. Идеально подходит для живых цветов.", 3500, "ceramics", "Мария Петрова", "ceramic-vase.jpg"},
	{"Серебряное кольцо с аметистом", "Элегантное кольцо из серебра 925 пробы с натуральным аметистом.", 4200, "jewelry", "Анна Смирнова", "silver-ring.jpg"},
	{"Вязаный плед 'Облака'", "Мягкий плед из натуральной шерсти, связанный вручную. Размер 150x200 см.", 5800, "textiles", "Елена Козлова", "knitted-blanket.jpg"},
	{"Деревянная шкатулка", "Резная шкатулка из массива дуба с инкрустацией. Ручная работа.", 2900, "wood", "Игорь Волков", "wooden-box.jpg"},
	{"Натуральное мыло 'Лаванда'", "Мыло ручной варки с эфирным маслом лаванды и сушеными цветами.", 450, "soap", "Ольга Новикова", "lavender-soap.jpg"},
	{"Соевая свеча 'Уют'", "Ароматическая свеча из соевого воска с запахом ванили и корицы.", 890, "candles", "Дарья Белова", "soy-candle.jpg"},
	{"Мягкая игрушка 'Мишка Тедди'", "Классический мишка Тедди ручной работы из натурального плюша.", 1850, "toys", "Светлана Орлова", "teddy-bear.jpg"},
	{"Акварель 'Весенний сад'", "Оригинальная акварельная картина с изображением цветущего сада.", 7500, "paintings", "Александр Васильев", "watercolor-garden.jpg"},
	{"Керамическая тарелка", "Декоративная тарелка с ручной росписью в этническом стиле.", 1200, "ceramics", "Мария Петрова", "ceramic-plate.jpg"},
	{"Кожаная сумка", "Стильная сумка из натуральной кожи ручной работы.", 6500, "bags", "Михаил Кузнецов", "leather-bag.jpg"},
}

// Seed inserts sample categories and products into empty tables.
// Sample products are owned by a studio account that cannot log in.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var categories int64
		if err := tx.Model(&models.Category{}).Count(&categories).Error; err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		if categories == 0 {
			for i, c := range sampleCategories {
				cat := models.Category{
					Name:        c.name,
					Description: c.description,
					Slug:        c.slug,
					ImageURL:    c.image,
					IsActive:    true,
					SortOrder:   (i + 1) * 10,
				}
				if err := tx.Create(&cat).Error; err != nil {
					return fmt.Errorf("failed to seed category %s: %w", c.slug, err)
				}
			}
			logger.Logger.Info().Int("count", len(sampleCategories)).Msg("Seeded categories")
		}

		var products int64
		if err := tx.Model(&models.Product{}).Count(&products).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if products > 0 {
			return nil
		}

		owner, err := studioUser(tx)
		if err != nil {
			return err
		}

		for _, p := range sampleProducts {
			var cat models.Category
			if err := tx.Where("slug = ?", p.categorySlug).First(&cat).Error; err != nil {
				logger.Logger.Warn().Str("slug", p.categorySlug).Msg("Skipping sample product with missing category")
				continue
			}
			product := models.Product{
				Name:        p.name,
				Description: p.description,
				Price:       decimal.NewFromInt(p.price),
				CategoryID:  cat.ID,
				UserID:      owner.ID,
				Author:      p.author,
				ImageURL:    p.image,
				InStock:     true,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to seed product %q: %w", p.name, err)
			}
		}
		logger.Logger.Info().Int("count", len(sampleProducts)).Msg("Seeded products")
		return nil
	})
}

func studioUser(tx *gorm.DB) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", studioEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up studio user: %w", err)
	}

	// Random password nobody knows.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash studio password: %w", err)
	}
	user = models.User{
		Name:         "Rukami Studio",
		Email:        studioEmail,
		PasswordHash: string(hash),
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create studio user: %w", err)
	}
	return &user, nil
}

// Package server assembles the Fiber application from services.
package server

import (
	"rukami/internal/config"
	"rukami/internal/handlers"
	"rukami/internal/middleware"
	"rukami/internal/repositories"
	"rukami/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services bundles everything the HTTP layer talks to.
type Services struct {
	Auth       *services.AuthService
	Categories *services.CategoryService
	Products   *services.ProductService
	Favorites  *services.FavoriteService
	Cart       *services.CartService
	Reviews    *services.ReviewService
	Profile    *services.ProfileService
}

// NewServices wires services on top of GORM repositories. events may be nil.
func NewServices(db *gorm.DB, cfg *config.Config, events services.EventPublisher) *Services {
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	favoriteRepo := repositories.NewGORMFavoriteRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)

	return &Services{
		Auth:       services.NewAuthService(userRepo, cfg.SessionSecret, cfg.SessionTTL),
		Categories: services.NewCategoryService(categoryRepo),
		Products:   services.NewProductService(productRepo, categoryRepo, events, cfg.UploadDir),
		Favorites:  services.NewFavoriteService(favoriteRepo, productRepo),
		Cart:       services.NewCartService(cartRepo, productRepo),
		Reviews:    services.NewReviewService(reviewRepo, productRepo),
		Profile:    services.NewProfileService(productRepo, favoriteRepo, cartRepo, reviewRepo),
	}
}

// New builds the Fiber app with middleware and every route registered.
func New(cfg *config.Config, db *gorm.DB, svc *Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Rukami API",
		ErrorHandler: handlers.ErrorHandler,
		// Multipart uploads carry some framing on top of the file itself.
		BodyLimit: cfg.MaxFileSize + 1<<20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.NewSystemHandler(db, cfg.DBDriver).RegisterRoutes(app)
	app.Static("/uploads", cfg.UploadDir)

	session := middleware.SessionRequired(svc.Auth, cfg.SessionCookieName)
	api := app.Group("/api")

	cookie := handlers.SessionCookie{
		Name:   cfg.SessionCookieName,
		TTL:    cfg.SessionTTL,
		Secure: !cfg.Debug,
	}
	handlers.NewAuthHandler(svc.Auth, cookie).RegisterRoutes(api, session)
	handlers.NewCategoryHandler(svc.Categories).RegisterRoutes(api)
	handlers.NewProductHandler(svc.Products, int64(cfg.MaxFileSize)).RegisterRoutes(api, session)
	handlers.NewFavoriteHandler(svc.Favorites).RegisterRoutes(api, session)
	handlers.NewCartHandler(svc.Cart).RegisterRoutes(api, session)
	handlers.NewReviewHandler(svc.Reviews).RegisterRoutes(api, session)
	handlers.NewProfileHandler(svc.Auth, svc.Products, svc.Profile).RegisterRoutes(api, session)
	handlers.NewUserHandler(svc.Auth).RegisterRoutes(api)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	return app
}

package router

import (
	"net/http"

	directorysvc "geodir-backend/internal/application/directory"
	"geodir-backend/internal/config"
	"geodir-backend/internal/infrastructure/database"
	healthhandler "geodir-backend/internal/interfaces/handlers/health"
	orghandler "geodir-backend/internal/interfaces/handlers/organizations"
	"geodir-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with global middleware and route
// registration. Redis is optional (traffic counters only); the directory
// routes are mounted only when a database is configured.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Root)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		oh := &orghandler.Handlers{
			Service: &directorysvc.Service{DB: db},
		}
		api := app.Group("/api", middleware.RequireAPIKey(cfg.APIKey))
		api.Get("/organizations/", oh.ByAttributes)
		api.Get("/organizations/activities/", oh.ByActivity)
		api.Get("/organizations/buildings/", oh.ByBuilding)
	}

	return app, db, rdb, nil
}

// Handler adapts the Fiber app to net/http for serverless hosting.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

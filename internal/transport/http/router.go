package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/userdesk/backend/internal/config"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/core/services"
	"github.com/userdesk/backend/internal/infrastructure/db"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"github.com/userdesk/backend/internal/transport/http/handlers"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
}

// SetupRoutes wires repositories, services and handlers and registers
// every route. The returned cleanup service is run by main on its own
// schedule.
func SetupRoutes(app *fiber.App, cfg RouterConfig) *services.CleanupService {
	// Initialize repositories
	userRepo := db.NewUserRepository(cfg.DB, cfg.Logger)
	infoViewRepo := db.NewInfoViewRepository(cfg.DB, cfg.Logger)

	var taskStore ports.TaskStore
	if cfg.Config.Tasks.UseMemoryStore {
		taskStore = db.NewMemoryTaskStore()
	} else {
		taskStore = db.NewTaskRepository(cfg.DB, cfg.Logger)
	}

	// Initialize services
	userService := services.NewUserService(services.UserServiceConfig{
		Repository: userRepo,
		Logger:     cfg.Logger,
	})
	infoViewService := services.NewInfoViewService(infoViewRepo, cfg.Logger)

	exportService := services.NewExportService(services.ExportServiceConfig{
		UserRepo:  userRepo,
		TaskStore: taskStore,
		Logger:    cfg.Logger,
		ExportDir: cfg.Config.Storage.ExportDir,
		BatchSize: cfg.Config.Tasks.ExportBatchSize,
	})

	importService := services.NewImportService(services.ImportServiceConfig{
		UserRepo:  userRepo,
		TaskStore: taskStore,
		Logger:    cfg.Logger,
	})

	cleanupService := services.NewCleanupService(services.CleanupServiceConfig{
		TaskStore: taskStore,
		Logger:    cfg.Logger,
		Retention: cfg.Config.Tasks.Retention,
		Interval:  cfg.Config.Tasks.CleanupInterval,
		ExportDir: cfg.Config.Storage.ExportDir,
	})

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, cfg.Logger)
	infoViewHandler := handlers.NewInfoViewHandler(infoViewService, cfg.Logger)
	exportHandler := handlers.NewExportHandler(exportService, cfg.Logger)
	importHandler := handlers.NewImportHandler(importService, cfg.Logger, cfg.Config.Storage.UploadDir)
	taskHandler := handlers.NewTaskHandler(taskStore, cfg.Logger)

	// Websocket upgrade gate for live task progress
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/tasks/:id", websocket.New(taskHandler.StreamProgress))

	// API v1 routes
	api := app.Group("/api/v1")

	// User routes
	users := api.Group("/users")
	users.Post("/", userHandler.CreateUser)
	users.Get("/", userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Delete("/:id", userHandler.DeleteUser)

	// Info view routes
	api.Get("/info-views", infoViewHandler.GetInfoViews)

	// Export / import task routes
	api.Post("/export", exportHandler.CreateExport)
	api.Post("/import", importHandler.CreateImport)
	api.Get("/import/template", exportHandler.DownloadTemplate)

	// Task routes
	tasks := api.Group("/tasks")
	tasks.Get("/:id", taskHandler.GetTask)
	tasks.Get("/:id/download", taskHandler.DownloadResult)

	return cleanupService
}

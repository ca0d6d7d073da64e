package main

import (
	"fmt"
	"os"
	"time"

	"placemail/backend"
	"placemail/compose"
	"placemail/config"
	"placemail/handlers/api"
	"placemail/middleware"
	"placemail/services"
	"placemail/storage"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

func main() {
	utils.Log.Info("Initializing placemail console...")

	configPath := os.Getenv("PLACEMAIL_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	if err := utils.InitI18n(); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	sessionStorage, err := storage.NewSessionStorage(cfg.Session.StoragePath)
	if err != nil {
		utils.Log.Error("Failed to initialize session storage: %v", err)
		os.Exit(1)
	}
	defer sessionStorage.Close()

	store := session.New(session.Config{
		Storage:        sessionStorage,
		Expiration:     cfg.SessionExpiry(),
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
	})

	// Composition root: one backend client, one set of explicitly owned
	// services; handlers get what they need injected
	client := backend.NewClient(cfg, nil, utils.Log)
	templates := services.NewTemplateService(utils.Log)
	logs := services.NewLogService(utils.Log)
	companies := services.NewCompanyService(utils.Log)
	drafts := storage.NewDraftStore(cfg.DraftTTL())
	handoffs := storage.NewHandoffStore(30 * time.Minute)
	pipeline := compose.NewPipeline(utils.Log)

	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.Compose.MaxAttachmentSize)*cfg.Compose.MaxAttachments + 1<<20,
		ErrorHandler: api.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}))
	app.Use(middleware.LocaleMiddleware())
	app.Use(middleware.RateLimiter(100, time.Minute))

	authHandler := api.NewAuthHandler(store, cfg, drafts)
	composeHandler := api.NewComposeHandler(cfg, client, drafts, handoffs, templates, logs, pipeline)
	templateHandler := api.NewTemplateHandler(client, templates)
	logHandler := api.NewLogHandler(cfg, client, logs)
	companyHandler := api.NewCompanyHandler(client, companies, handoffs)
	userHandler := api.NewUserHandler(client)

	// Public routes
	app.Post("/login", authHandler.HandleLogin)
	app.Get("/logout", authHandler.HandleLogout)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Protected API routes
	apiRoutes := app.Group("/api", api.SessionMiddleware(store, cfg))
	{
		// Compose workflow
		apiRoutes.Get("/compose", composeHandler.GetDraft)
		apiRoutes.Put("/compose", composeHandler.UpdateDraft)
		apiRoutes.Post("/compose/template", composeHandler.SelectTemplate)
		apiRoutes.Delete("/compose/template", composeHandler.DeselectTemplate)
		apiRoutes.Post("/compose/attachments", composeHandler.UploadAttachments)
		apiRoutes.Delete("/compose/attachments/:index", composeHandler.RemoveManualAttachment)
		apiRoutes.Delete("/compose/template-attachments/:filename", composeHandler.RemoveTemplateAttachment)
		apiRoutes.Post("/compose/send", composeHandler.Send)

		// Template catalog
		apiRoutes.Get("/templates", templateHandler.ListTemplates)

		// Send history
		apiRoutes.Get("/logs", logHandler.ListLogs)
		apiRoutes.Delete("/logs/:id", logHandler.DeleteLog)

		// Batch companies
		apiRoutes.Get("/companies/batch/:batchId", companyHandler.ListCompanies)
		apiRoutes.Delete("/companies/:id/batch/:batchId", companyHandler.DeleteCompany)
		apiRoutes.Delete("/companies/position/:id", companyHandler.DeletePosition)
		apiRoutes.Post("/companies/handoff", companyHandler.CreateHandoff)

		// User management
		apiRoutes.Get("/users", userHandler.ListUsers)
		apiRoutes.Put("/users/:id", userHandler.UpdateUser)
		apiRoutes.Delete("/users/:id", userHandler.DeleteUser)
	}

	// 404 handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Not found",
		})
	})

	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}

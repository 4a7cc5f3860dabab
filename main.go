package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pemapp/internal/catalog"
	"pemapp/internal/config"
	"pemapp/internal/database"
	"pemapp/internal/gemini"
	"pemapp/internal/handlers"
	"pemapp/internal/history"
	logger "pemapp/internal/logging"
	"pemapp/internal/repository"
	"pemapp/internal/router"
)

func main() {
	// A .env file is optional; PEM_GEMINI_API_KEY usually lives there.
	_ = godotenv.Load()

	// Initialize Logger
	log, err := logger.Init(".")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Load the metric catalog at startup
	cat, err := catalog.Load("config/metrics.yaml")
	if err != nil {
		log.Fatal("Failed to load metric catalog", zap.Error(err))
	}

	// Storage: Postgres when configured, otherwise in-memory guest-only mode.
	var store history.Store
	var users *repository.UserRepository
	if config.Conf.Database.Host != "" {
		db, err := database.Init(log)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		store = repository.NewHistoryRepository(db)
		users = repository.NewUserRepository(db)
	} else {
		log.Warn("No database configured; history is in-memory and accounts are disabled")
		store = history.NewMemoryStore()
	}

	var ai handlers.Analyzer = gemini.NewClient(config.Conf.Gemini.APIKey, config.Conf.Gemini.Model)
	if config.Conf.Gemini.APIKey == "" {
		log.Warn("Gemini API key is not set; analysis requests will fail until PEM_GEMINI_API_KEY is configured")
	}

	r := router.Setup(log, router.Deps{
		Catalog:  cat,
		Analyzer: ai,
		History:  store,
		Users:    users,
	})

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}

package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	httpapi "car-rental-adjustments/internal/api/http"
	"car-rental-adjustments/internal/config"
	"car-rental-adjustments/internal/events"
	"car-rental-adjustments/internal/gateway"
	"car-rental-adjustments/internal/logger"
	"car-rental-adjustments/internal/repository/postgres"
	"car-rental-adjustments/internal/security"
	"car-rental-adjustments/internal/service"
	"car-rental-adjustments/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Car Rental Adjustments...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Storage
	localStorage, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir, cfg.Storage.URLSecret)
	if err != nil {
		logger.Error("Failed to initialize photo storage", "error", err)
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}
	validator := storage.Validator{
		MaxSizeBytes: cfg.Storage.MaxFileSizeMB << 20,
		AllowedTypes: cfg.Storage.AllowedTypes,
	}

	// Initialize payment platform client (payments + fleet)
	platform := gateway.NewClient(cfg.Payments.BaseURL, time.Duration(cfg.Payments.TimeoutSeconds)*time.Second)

	// Initialize outbound events: Redis queue plus customer email
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	publisher := events.NewFanout(
		events.NewRedisPublisher(redisClient, cfg.Redis.Queue, cfg.Redis.Channel),
		service.NewEmailEventNotifier(emailSvc),
	)

	// Initialize Services
	calculator := service.NewPenaltyCalculator(cfg.Penalty)
	returnsSvc := service.NewRentalReturnProcessor(store.RentalRepository, calculator)
	reporterSvc := service.NewDamageReporter(
		store.DamageReportRepository,
		store.RentalRepository,
		localStorage,
		validator,
		time.Duration(cfg.Storage.URLExpiryMinutes)*time.Minute,
	)
	assessorSvc := service.NewDamageAssessor(store.DamageReportRepository, platform, publisher, cfg.Severity)
	chargerSvc := service.NewDamageCharger(store.DamageReportRepository, store.RentalRepository, platform, publisher)
	disputeSvc := service.NewDamageDisputeResolver(store.DamageReportRepository, store.RentalRepository, platform, publisher)
	waiverSvc := service.NewPenaltyWaiverCoordinator(store.RentalRepository, store.PenaltyWaiverRepository, platform, publisher)

	// Initialize HTTP API
	handler := httpapi.NewHandler(returnsSvc, reporterSvc, assessorSvc, chargerSvc, disputeSvc, waiverSvc, localStorage)
	router := mux.NewRouter()
	handler.RegisterRoutes(router, tokenManager)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server stopped", "error", err)
		log.Fatalf("HTTP server stopped: %v", err)
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"communityhub/config"
	_ "communityhub/docs"
	"communityhub/internal/adapters/auth"
	"communityhub/internal/adapters/directory"
	"communityhub/internal/adapters/email"
	delivery "communityhub/internal/delivery/http"
	"communityhub/internal/delivery/http/controllers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
	memorystore "communityhub/internal/repository/memory"
	mongostore "communityhub/internal/repository/mongo"
	pgstore "communityhub/internal/repository/postgres"
	"communityhub/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title CommunityHub Events API
// @version 1.0
// @description Event registration and capacity management for the CommunityHub platform.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger()

	// Select the event store: PostgreSQL when DATABASE_URL is set, MongoDB
	// when MONGO_URL is set, otherwise the in-memory store for local use.
	var store domain.EventStore
	switch {
	case cfg.DBUrl != "":
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		store = pgstore.NewEventStore(db)
		logger.Info("using postgres event store")
	case cfg.MongoURL != "":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to mongo: %v", err)
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		store = mongostore.NewEventStore(client.Database(cfg.MongoDatabase))
		logger.Info("using mongo event store", "database", cfg.MongoDatabase)
	default:
		store = memorystore.NewEventStore()
		logger.Warn("no DATABASE_URL or MONGO_URL set, using in-memory event store")
	}

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	}, logger)
	var notifier domain.Notifier
	if cfg.UserDirectoryURL != "" {
		dir := directory.NewHTTPDirectory(cfg.UserDirectoryURL, cfg.UserDirectoryToken)
		notifier = email.NewPromotionNotifier(mailer, email.NewTemplateRenderer(), dir, logger)
	} else {
		logger.Warn("USER_DIRECTORY_URL not set, promotion notifications will only be logged")
		notifier = email.NewLogNotifier(logger)
	}

	clock := domain.SystemClock{}
	tokenProvider := auth.NewJWTProvider(cfg.JWTSecret)

	registrationService := services.NewRegistrationService(store, notifier, clock, logger, serviceTimeout)
	lifecycleService := services.NewEventLifecycleService(store, clock, serviceTimeout)
	queryService := services.NewEventQueryService(store, serviceTimeout)

	eventController := controllers.NewEventController(logger, lifecycleService, queryService, clock)
	registrationController := controllers.NewRegistrationController(logger, registrationService, clock)

	mux := delivery.NewRouter(eventController, registrationController, tokenProvider, logger)
	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}

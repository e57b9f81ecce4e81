// Package main is the entry point for the doctags API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"doctags/config"
	_ "doctags/docs"
	"doctags/internal/adapters/auth"
	"doctags/internal/adapters/email"
	delivery "doctags/internal/delivery/http"
	"doctags/internal/delivery/http/controllers"
	"doctags/internal/delivery/http/middleware"
	"doctags/internal/domain"
	"doctags/internal/repository/dynamo"
	"doctags/internal/repository/postgres"
	"doctags/internal/services"
)

// @title Doctags API
// @version 1.0
// @description Document tagging service: documents with ordered tag sets, superset tag queries, and tag subscriptions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" {
			logger.Error("JWT_SECRET is required in production")
			os.Exit(1)
		}
		logger.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = "dev-secret-do-not-use-in-production"
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}
	if err := postgres.MigrateUp(ctx, db); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	subRepo := postgres.NewTagSubscriptionRepository(db)

	// Users and subscriptions always live in Postgres; the document store is
	// switchable so tag mutations can ride DynamoDB conditional writes instead
	// of conditional UPDATEs.
	var docRepo domain.DocumentRepository
	switch cfg.DocumentStore {
	case "dynamodb":
		if cfg.AWSAccessKeyID == "" || cfg.AWSSecretAccessKey == "" {
			logger.Error("AWS credentials are required when DOCUMENT_STORE=dynamodb")
			os.Exit(1)
		}
		awsCfg := aws.Config{
			Region: cfg.AWSRegion,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
			),
		}
		docRepo, err = dynamo.NewDocumentRepository(dynamodb.NewFromConfig(awsCfg), dynamo.Config{
			TableName:     cfg.DynamoTable,
			TagsAttribute: cfg.TagsColumn,
		})
		if err != nil {
			logger.Error("failed to create dynamo document repository", "err", err)
			os.Exit(1)
		}
		logger.Info("using dynamodb document store", "table", cfg.DynamoTable, "region", cfg.AWSRegion)
	case "postgres":
		docRepo, err = postgres.NewDocumentRepository(db, postgres.Config{TagsColumn: cfg.TagsColumn})
		if err != nil {
			logger.Error("failed to create postgres document repository", "err", err)
			os.Exit(1)
		}
	default:
		logger.Error("unknown document store", "store", cfg.DocumentStore)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		logger.Error("failed to load email templates", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, renderer)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	tokenExpiry := time.Duration(cfg.TokenExpiryHours) * time.Hour

	userService := services.NewUserService(userRepo, hasher, issuer, tokenExpiry, emailService)
	documentService := services.NewDocumentService(docRepo, subRepo, emailService)
	subscriptionService := services.NewSubscriptionService(subRepo, userRepo)

	router := delivery.NewRouter(
		controllers.NewDocumentController(logger, documentService),
		controllers.NewUserController(logger, userService),
		controllers.NewSubscriptionController(logger, subscriptionService),
		verifier,
	)
	handler := middleware.RequestID(
		middleware.LoggingMiddleware(logger,
			middleware.CORS(cfg.CORSAllowedOrigins, router)))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment, "store", cfg.DocumentStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

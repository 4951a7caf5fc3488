package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/config"
	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
	"github.com/solarhub/solarhub-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting SolarHub API server...", zap.String("env", cfg.GoEnv))

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if err := models.AutoMigrate(db); err != nil {
		return err
	}
	logger.Info("Database migration completed successfully")

	deps, err := buildCollaborators(ctx, cfg, logger)
	if err != nil {
		return err
	}
	app, err := newApplication(cfg, db, logger, deps)
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := setupRouter(app)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server is running", zap.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildCollaborators picks the production implementation of each external system from the configuration
func buildCollaborators(ctx context.Context, cfg *config.Config, logger *zap.Logger) (collaborators, error) {
	deps := collaborators{
		Payments: services.NewStripeGateway(services.NewStripeClient(cfg.StripeSecretKey)),
		Hasher:   services.NewBcryptHasher(0),
	}

	if cfg.MailEnabled() {
		deps.Mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logger.Warn("SMTP_HOST not set, verification codes will only be logged")
		deps.Mailer = services.NewLogMailer(logger)
	}

	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return deps, err
		}
		deps.OTPs = services.NewRedisOTPStore(client)
		logger.Info("Using redis for verification codes")
	}

	if cfg.StorageEnabled() {
		store, err := services.NewS3Store(ctx, cfg)
		if err != nil {
			return deps, err
		}
		deps.Images = store
	} else {
		logger.Warn("AWS_S3_BUCKET not set, image uploads are disabled")
	}

	return deps, nil
}

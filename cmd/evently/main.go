package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"evently/config"
	_ "evently/docs"
	"evently/internal/adapters/auth"
	"evently/internal/adapters/cache"
	"evently/internal/adapters/email"
	"evently/internal/adapters/upload"
	deliveryhttp "evently/internal/delivery/http"
	"evently/internal/delivery/http/controllers"
	"evently/internal/delivery/http/views"
	"evently/internal/domain"
	"evently/internal/eventform"
	"evently/internal/repository/postgres"
	"evently/internal/services"
)

const shutdownTimeout = 10 * time.Second

// @title Evently API
// @version 1.0
// @description JSON API of the Evently event platform. Pages are served as HTML outside /api.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT issued by the auth provider.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := config.NewLogger()
	logger.Info("starting evently", slog.String("env", cfg.Environment))

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Error("invalid time zone", "time_zone", cfg.TimeZone, "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	pageCache, guard, closeCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		logger.Error("failed to set up cache", "provider", cfg.Cache.Provider, "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to set up mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventRepo := postgres.NewEventRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	registrationRepo := postgres.NewEventRegistrationRepository(db)

	eventService := services.NewEventService(eventRepo, categoryRepo, emailService, pageCache, cfg.BaseURL, logger, cfg.RequestTimeout)
	categoryService := services.NewCategoryService(categoryRepo, cfg.RequestTimeout)
	attendeeService := services.NewAttendeeService(eventRepo, registrationRepo, pageCache)

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "err", err)
		os.Exit(1)
	}

	uploader, uploadDir := newUploader(cfg.Upload, cfg.RequestTimeout)

	router := deliveryhttp.NewRouter(logger, deliveryhttp.Controllers{
		Pages: controllers.NewPageController(logger, renderer, eventService, attendeeService, pageCache, controllers.PageOptions{
			CacheTTL:    cfg.Cache.TTL,
			SignInURL:   cfg.Auth.SignInURL,
			ProviderURL: cfg.Auth.ProviderURL,
		}),
		EventForm: controllers.NewEventFormController(logger, renderer, eventService, categoryService, uploader, guard, controllers.EventFormOptions{
			SignInURL: cfg.Auth.SignInURL,
			Location:  loc,
		}),
		Attendees:  controllers.NewAttendeeController(logger, renderer, cfg.Auth.SignInURL, attendeeService),
		Categories: controllers.NewCategoryController(logger, categoryService),
		Validate:   controllers.NewValidateController(loc),
	}, deliveryhttp.RouterConfig{
		Verifier:       auth.NewJWTVerifier(cfg.Auth.JWTSecret),
		SignInURL:      cfg.Auth.SignInURL,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      uploadDir,
		UploadPath:     cfg.Upload.PublicURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
		IdleTimeout:       time.Minute,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logger.Info("starting server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "err", err)
			stop <- syscall.SIGTERM
		}
	}()

	sig := <-stop
	logger.Info("application stopping", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "err", err)
	}

	if err := closeCache(); err != nil {
		logger.Error("failed to close cache", "err", err)
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close postgres connection", "err", err)
	}
	logger.Info("application stopped")
}

// newCache builds the page cache and submission guard for the configured provider.
func newCache(ctx context.Context, cfg config.Cache) (domain.PageCache, domain.SubmissionGuard, func() error, error) {
	switch cfg.Provider {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, nil, err
		}
		return cache.NewRedisPageCache(client), cache.NewRedisGuard(client), client.Close, nil
	case "memory", "":
		return cache.NewMemoryPageCache(), cache.NewMemoryGuard(), func() error { return nil }, nil
	default:
		return nil, nil, nil, errors.New("unknown cache provider " + cfg.Provider)
	}
}

// newUploader returns the image uploader and, for the local provider, the
// directory the router serves uploaded files from.
func newUploader(cfg config.Upload, timeout time.Duration) (eventform.Uploader, string) {
	if cfg.Provider == "hosted" {
		return upload.NewHostedClient(cfg.Endpoint, cfg.APIKey, &http.Client{Timeout: timeout}), ""
	}
	return upload.NewLocalStore(cfg.Dir, cfg.PublicURL), cfg.Dir
}

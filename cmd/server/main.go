package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	"github.com/afrigis/user-feedback/internal/bootstrap"
	"github.com/afrigis/user-feedback/internal/config"
	"github.com/afrigis/user-feedback/internal/events"
	"github.com/afrigis/user-feedback/internal/handler"
	"github.com/afrigis/user-feedback/internal/hooks"
	"github.com/afrigis/user-feedback/internal/logging"
	"github.com/afrigis/user-feedback/internal/mailer"
	"github.com/afrigis/user-feedback/internal/media"
	"github.com/afrigis/user-feedback/internal/model"
	"github.com/afrigis/user-feedback/internal/notify"
	"github.com/afrigis/user-feedback/internal/repository"
	"github.com/afrigis/user-feedback/internal/service"
	"github.com/afrigis/user-feedback/internal/storage"
	"github.com/afrigis/user-feedback/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()

	var awsCfg *aws.Config
	if cfg.Media.Backend == config.MediaS3 || cfg.AWS.QueueURL != "" {
		c, err := cfg.AWS.LoadAWS(ctx)
		if err != nil {
			logging.Fatal("failed to load aws config", "error", err)
		}
		awsCfg = &c
	}

	backend, err := newMediaBackend(cfg, awsCfg)
	if err != nil {
		logging.Fatal("failed to set up media storage", "backend", cfg.Media.Backend, "error", err)
	}
	naming, err := media.ParseNaming(cfg.Media.Naming)
	if err != nil {
		logging.Fatal("invalid media naming", "error", err)
	}
	images := media.NewStore(backend, media.WithPrefix(cfg.Media.Prefix), media.WithNaming(naming))

	var db repository.DB
	var deliveries repository.DeliveryRepository = repository.NopDeliveryRepository{}
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logging.Fatal("failed to connect to database", "error", err)
		}
		defer pool.Close()
		db = pool
		deliveries = repository.NewPgDeliveryRepository(pool)
	} else {
		slog.Warn("DATABASE_URL not set, delivery records are not kept")
	}

	transport, err := newTransport(cfg, images)
	if err != nil {
		logging.Fatal("failed to set up mail transport", "error", err)
	}

	registry := hooks.NewRegistry()
	composer := notify.NewComposer(notify.Config{SiteName: cfg.SiteName, AdminEmail: cfg.AdminEmail}, registry.Strings)
	pipeline := service.NewFeedbackService(images, composer, mailer.NewDispatcher(transport), deliveries)

	bus := events.NewBus()
	defer bus.Close()
	if err := bus.Subscribe("pipeline", pipeline); err != nil {
		logging.Fatal("failed to subscribe pipeline", "error", err)
	}
	if cfg.AWS.QueueURL != "" {
		relay := events.NewSQSRelay(sqs.NewFromConfig(*awsCfg), cfg.AWS.QueueURL)
		if err := bus.Subscribe("sqs-relay", relay); err != nil {
			logging.Fatal("failed to subscribe sqs relay", "error", err)
		}
	}

	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = handler.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute)
	}

	builder := bootstrap.NewBuilder(bootstrap.Config{
		AjaxURL:        cfg.AjaxURL,
		LoadOnFrontend: true,
		LoadOnBackend:  cfg.LoadOnBackend,
	}, registry)

	router := newRouter(routerDeps{
		cfg:        cfg,
		db:         db,
		publisher:  bus,
		builder:    builder,
		deliveries: deliveries,
		images:     images,
		limiter:    limiter,
		verifier:   auth.Verifier{Secret: auth.SessionSecretBytes(cfg.SessionSecret), Issuer: cfg.JWTIssuer},
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "media_backend", cfg.Media.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newMediaBackend(cfg *config.Config, awsCfg *aws.Config) (storage.Storage, error) {
	if cfg.Media.Backend == config.MediaS3 {
		return storage.NewS3Storage(*awsCfg, cfg.Media.Bucket, "screenshots"), nil
	}
	return storage.NewLocalStorage(cfg.Media.Dir)
}

func newTransport(cfg *config.Config, attachments mailer.AttachmentOpener) (mailer.Transport, error) {
	if cfg.SMTP.Host == "" {
		slog.Warn("SMTP_HOST not set, notifications are logged instead of sent")
		return mailer.NewLogTransport(slog.Default()), nil
	}
	return mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.MailFrom,
		Timeout:  cfg.SMTP.Timeout,
	}, attachments)
}

// theme returns the site theme advertised to the widget.
func theme(cfg *config.Config) model.Theme {
	return model.Theme{Name: cfg.ThemeName, Stylesheet: cfg.ThemeStylesheet}
}


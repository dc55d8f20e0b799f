package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devtrails/campdir/internal/auth"
	"github.com/devtrails/campdir/internal/config"
	"github.com/devtrails/campdir/internal/db"
	"github.com/devtrails/campdir/internal/geocode"
	httpx "github.com/devtrails/campdir/internal/http"
	"github.com/devtrails/campdir/internal/http/handlers"
	"github.com/devtrails/campdir/internal/http/middlewares"
	"github.com/devtrails/campdir/internal/mailer"
	"github.com/devtrails/campdir/internal/observability"
	"github.com/devtrails/campdir/internal/repo/mongodb"
	"github.com/devtrails/campdir/internal/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is opt-in; without an endpoint the app runs untraced
	var tracerShutdown func(context.Context) error

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "campdir", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		tracerShutdown = shutdown
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	client, err := db.Connect(cfg.MongoURI)

	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}

	database := client.Database(cfg.MongoDB)

	{
		ctx, cancel := config.WithTimeout(10 * time.Second)

		if err := db.EnsureIndexes(ctx, database); err != nil {
			log.Error("ensure indexes failed", "err", err)
			cancel()
			os.Exit(1)
		}

		if err := db.EnsureAdminUser(ctx, database, cfg); err != nil {
			log.Error("ensure admin user failed", "err", err)
			cancel()
			os.Exit(1)
		}
		cancel()
	}

	// repositories
	usersRepo := mongodb.NewUsersRepo(database, prom)
	bootcampsRepo := mongodb.NewBootcampsRepo(database, prom)
	coursesRepo := mongodb.NewCoursesRepo(database, prom)
	reviewsRepo := mongodb.NewReviewsRepo(database, prom)

	// geocoder, cached through redis when an address is configured
	var geo geocode.Geocoder = geocode.NewHTTPGeocoder(cfg.GeocoderURL, cfg.GeocoderKey)
	var rdb *redis.Client

	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		geo = geocode.NewCachedGeocoder(geo, rdb, 24*time.Hour, log)
	}

	// outbound mail goes through the circuit breaker regardless of backend
	var mail mailer.Mailer

	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUser,
			Password:  cfg.SMTPPass,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		})
	} else {
		mail = mailer.NewLogMailer(log)
	}
	mail = mailer.NewProtectedMailer(mail, mailer.ProtectedMailerConfig{}, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTExpire)
	authMw := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	photos := storage.NewPhotoStore(cfg.FileUploadPath)

	router := httpx.NewRouter(httpx.Deps{
		Cfg:  cfg,
		Prom: prom,
		Reg:  reg,
		Auth: authMw,

		Health:    handlers.NewHealthHandler(httpx.MongoPinger{Client: client}),
		AuthH:     handlers.NewAuthHandler(usersRepo, jwtManager, mail, cfg),
		Bootcamps: handlers.NewBootcampsHandler(bootcampsRepo, geo, photos, cfg.MaxFileUpload),
		Courses:   handlers.NewCoursesHandler(coursesRepo, bootcampsRepo),
		Reviews:   handlers.NewReviewsHandler(reviewsRepo, bootcampsRepo),
		Users:     handlers.NewUsersHandler(usersRepo),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := client.Disconnect(ctx); err != nil {
			log.Error("mongo disconnect failed", "err", err)
		}

		if rdb != nil {
			if err := rdb.Close(); err != nil {
				log.Error("redis close failed", "err", err)
			}
		}

		if tracerShutdown != nil {
			if err := tracerShutdown(ctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

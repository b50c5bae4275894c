package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	nats "github.com/nats-io/nats.go"

	"ShopCatalog/internal/config"
	"ShopCatalog/internal/repository"
	"ShopCatalog/internal/service"
	externalHttp "ShopCatalog/internal/transport/http"
	"ShopCatalog/migrations/postgres"
	"ShopCatalog/pkg/cache"
	"ShopCatalog/pkg/events"
	"ShopCatalog/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// подключаем Postgres
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Postgres")
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		log.WithError(err).Fatal("failed to ping Postgres")
	}

	// применяем встроенные миграции схемы каталога
	if err := postgres.Up(db); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}

	// подключаем Redis
	cacheClient := cache.NewRedisClient(&redis.Options{Addr: cfg.RedisAddr})
	// подключаем NATS
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("catalog-api"))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to NATS")
	}
	publisher := events.NewPublisher(nc, cfg.NATSSubject)

	// создаем репозиторий и сервис
	repo := repository.NewCatalogRepository(db)
	srv := service.NewCatalogService(repo, cacheClient, publisher, log, cfg.CacheTTL)

	// настраиваем HTTP маршруты и middleware логирования
	r := mux.NewRouter()
	r.Use(externalHttp.LoggingMiddleware(log))
	h := externalHttp.NewHandler(srv, log,
		externalHttp.ReadyCheck{Name: "postgres", Check: db.PingContext},
		externalHttp.ReadyCheck{Name: "redis", Check: cacheClient.Ping},
		externalHttp.ReadyCheck{Name: "nats", Check: func(context.Context) error {
			if !nc.IsConnected() {
				return errors.New(nc.Status().String())
			}
			return nil
		}},
	)
	h.RegisterRoutes(r)

	// запускаем HTTP сервер с поддержкой graceful shutdown
	srvHttp := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("starting server")
		if err := srvHttp.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// ожидаем сигнал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srvHttp.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	log.Info("server exited properly")
	if err := cacheClient.Close(); err != nil {
		log.WithError(err).Warn("failed to close Redis client")
	}
	// корректно дренируем и закрываем NATS-соединение
	if err := nc.Drain(); err != nil {
		log.WithError(err).Warn("failed to drain NATS connection")
	}
}

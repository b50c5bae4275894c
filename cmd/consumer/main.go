package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ClickHouse/clickhouse-go"
	"github.com/nats-io/nats.go"

	"ShopCatalog/internal/config"
	"ShopCatalog/internal/consumer"
	"ShopCatalog/internal/repository"
	"ShopCatalog/migrations/clickhouse"
	"ShopCatalog/pkg/events"
	"ShopCatalog/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Подключаемся к NATS
	natsClosed := make(chan struct{})
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("catalog-audit"),
		nats.ClosedHandler(func(*nats.Conn) { close(natsClosed) }))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to NATS")
	}
	defer nc.Close()

	// Подключаемся к ClickHouse
	db, err := sql.Open("clickhouse", cfg.ClickHouseDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to ClickHouse")
	}
	defer func() { _ = db.Close() }()

	// Применяем миграции ClickHouse
	if err := clickhouse.Up(db); err != nil {
		log.WithError(err).Fatal("failed to apply ClickHouse migrations")
	}

	// Создаём репозиторий и консьюмера
	repo := repository.NewClickhouseRepo(db, log)
	cons := consumer.NewConsumer(repo, cfg.BatchSize, log)

	// Запускаем HTTP-сервер для healthz и readyz
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil || !nc.IsConnected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "ready", "pending": cons.Pending()})
	})
	healthSrv := &http.Server{Addr: ":" + cfg.ConsumerPort, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.WithField("port", cfg.ConsumerPort).Info("starting health server")
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("health server failed")
		}
	}()

	// Периодический сброс неполных пакетов
	runCtx, stopRun := context.WithCancel(context.Background())
	go cons.Run(runCtx, cfg.FlushInterval)

	// Подписываемся на все события каталога
	subject := events.SubscribeSubject(cfg.NATSSubject)
	_, err = nc.Subscribe(subject, func(msg *nats.Msg) {
		if err := cons.HandleMessage(context.Background(), msg.Data); err != nil {
			log.WithError(err).WithField("subject", msg.Subject).Warn("failed to handle message")
		}
	})
	if err != nil {
		log.WithError(err).WithField("subject", subject).Fatal("failed to subscribe")
	}
	log.WithField("subject", subject).Info("consumer subscribed")

	// Ждём сигнала завершения
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down consumer...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("health server shutdown failed")
	}

	// Дренируем подписку: уже полученные сообщения обрабатываются, новые не приходят
	if err := nc.Drain(); err != nil {
		log.WithError(err).Warn("failed to drain NATS connection")
	} else {
		select {
		case <-natsClosed:
		case <-ctx.Done():
			log.WithField("subject", subject).Warn("NATS drain timed out")
		}
	}
	stopRun()
	if err := cons.Shutdown(ctx); err != nil {
		log.WithError(err).Error("failed to flush consumer events")
	}
}

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/registry/internal/registry/config"
	"github.com/gartstein/registry/internal/registry/controller"
	"github.com/gartstein/registry/internal/registry/db"
	"github.com/gartstein/registry/internal/registry/events"
	"github.com/gartstein/registry/internal/registry/handlers"
	"github.com/gartstein/registry/internal/registry/store"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger config yet
		logger, _ := zap.NewProduction()
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger := initLogger(cfg.LogDevelopment)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	var publishers events.Fanout

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := backoff.RetryNotifyWithData(func() (*events.Producer, error) {
			return events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
		}, startupBackOff(), retryNotify(logger, "Kafka producer"))
		if err != nil {
			logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
		}
		defer producer.Close()
		publishers = append(publishers, producer)
	}

	switch {
	case cfg.DirectJournal():
		repo, err := openJournal(cfg, logger)
		if err != nil {
			logger.Fatal("failed to initialize journal", zap.Error(err))
		}
		defer repo.Close()
		publishers = append(publishers, db.NewJournal(repo, logger))
	case cfg.JournalDriver != config.JournalNone:
		logger.Info("Journal is written by the journal consumer from Kafka",
			zap.String("topic", cfg.Topic),
		)
	}

	var producer controller.EventProducer = events.Nop{}
	if len(publishers) > 0 {
		producer = publishers
	}

	st := store.New()
	registrySvc := controller.NewRegistryService(st.Companies, st.Employees, producer, logger)
	registryHandler := handlers.NewRegistryHandler(registrySvc, logger)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	if err := server.RegisterHTTPHandler(
		registryHandler,
		cfg.RateLimit,
		[]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}); err != nil {
		logger.Fatal("Failed to register HTTP handler", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	waitForShutdown(server, errCh, logger)
}

// initLogger initializes a Zap production logger, or a development one on request.
func initLogger(development bool) *zap.Logger {
	if development {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func openJournal(cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	pg := &db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
	return backoff.RetryNotifyWithData(func() (*db.Repository, error) {
		return db.Open(cfg.JournalDriver, cfg.JournalDSN, pg)
	}, startupBackOff(), retryNotify(logger, "journal database"))
}

func startupBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithMaxRetries(b, 5)
}

func retryNotify(logger *zap.Logger, what string) backoff.Notify {
	return func(err error, next time.Duration) {
		logger.Warn("Startup dependency unavailable, retrying",
			zap.String("dependency", what),
			zap.Duration("retry_in", next),
			zap.Error(err),
		)
	}
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, or the
// servers fail, then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}

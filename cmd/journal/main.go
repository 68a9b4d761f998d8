// Command journal consumes registry events from Kafka and appends each one
// to the mutation journal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/registry/internal/registry/config"
	"github.com/gartstein/registry/internal/registry/db"
	"github.com/gartstein/registry/internal/registry/events"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger, _ := zap.NewProduction()
	if cfg.LogDevelopment {
		logger, _ = zap.NewDevelopment()
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required")
	}
	if cfg.JournalDriver == config.JournalNone {
		logger.Fatal("JOURNAL_DRIVER is required")
	}

	pg := &db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
	repo, err := backoff.RetryNotifyWithData(func() (*db.Repository, error) {
		return db.Open(cfg.JournalDriver, cfg.JournalDSN, pg)
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), func(err error, next time.Duration) {
		logger.Warn("Journal database unavailable, retrying", zap.Duration("retry_in", next), zap.Error(err))
	})
	if err != nil {
		logger.Fatal("failed to initialize journal", zap.Error(err))
	}
	defer repo.Close()

	journal := db.NewJournal(repo, logger)
	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, cfg.Topic, logger)
	consumer.RegisterHandler(journal.Handle)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Journal consumer started",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.ConsumerGroup),
	)
	consumer.Start(ctx)

	<-ctx.Done()
	<-consumer.Done()
	consumer.Close()
	logger.Info("Journal consumer stopped")
}

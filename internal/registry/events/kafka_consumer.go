package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader     KafkaReader
	logger     *zap.Logger
	handler    func(context.Context, Event) error
	newBackOff func() backoff.BackOff
	done       chan struct{}
}

// NewConsumer reads registry events from topic as part of groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		Dialer:  kafka.DefaultDialer,
	}), logger)
}

func newConsumer(reader KafkaReader, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader:     reader,
		logger:     logger.Named("kafka_consumer"),
		newBackOff: handlerBackOff,
		done:       make(chan struct{}),
	}
}

// Start runs the fetch loop until ctx is cancelled. A failing handler is
// retried on the same message until it succeeds, and only then is the
// message committed and the next one fetched.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("Failed to fetch message", zap.Error(err))
				continue
			}

			var event Event
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Error("Failed to parse event",
					zap.Error(err),
					zap.ByteString("value", msg.Value),
				)
				// poison message, skip past it
				c.commit(ctx, msg, "")
				continue
			}

			if err := c.handle(ctx, event); err != nil {
				// cancelled mid-retry; the message stays uncommitted
				return
			}

			c.commit(ctx, msg, event.Type)
		}
	}()
}

func (c *Consumer) handle(ctx context.Context, event Event) error {
	return backoff.RetryNotify(func() error {
		return c.handler(ctx, event)
	}, backoff.WithContext(c.newBackOff(), ctx), func(err error, next time.Duration) {
		c.logger.Error("Failed to handle event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Duration("retry_in", next),
		)
	})
}

// handlerBackOff never gives up on its own; only the consumer context ends a retry.
func handlerBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, eventType EventType) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("event_type", string(eventType)),
		)
	}
}

func (c *Consumer) RegisterHandler(fn func(context.Context, Event) error) {
	c.handler = fn
}

// Done is closed once the fetch loop has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}

package db

import (
	"context"
	"time"

	"github.com/gartstein/registry/internal/registry/events"
	"go.uber.org/zap"
)

const journalWriteTimeout = 5 * time.Second

// Journal adapts a Repository to events.Publisher so the registry can
// journal mutations without going through Kafka.
type Journal struct {
	repo   *Repository
	logger *zap.Logger
}

func NewJournal(repo *Repository, logger *zap.Logger) *Journal {
	return &Journal{
		repo:   repo,
		logger: logger.Named("journal"),
	}
}

// Produce writes the event synchronously; failures are logged, not returned.
func (j *Journal) Produce(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalWriteTimeout)
	defer cancel()

	if err := j.Handle(ctx, event); err != nil {
		j.logger.Error("Failed to journal event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("company_id", event.CompanyID),
		)
	}
}

// Handle appends the event; it matches the events.Consumer handler signature.
func (j *Journal) Handle(ctx context.Context, event events.Event) error {
	return j.repo.AppendEvent(ctx, event)
}

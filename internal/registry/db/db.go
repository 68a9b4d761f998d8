// Package db stores an append-only journal of registry mutations. The journal
// is an audit trail; the registry never reads it back on startup.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	dbmodels "github.com/gartstein/registry/internal/registry/db/models"
	"github.com/gartstein/registry/internal/registry/events"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// NewRepository opens the journal on PostgreSQL.
func NewRepository(cfg *Config) (*Repository, error) {
	return open(postgres.Open(cfg.DSN()))
}

// NewSQLiteRepository opens the journal on a SQLite file, or ":memory:".
func NewSQLiteRepository(path string) (*Repository, error) {
	repo, err := open(sqlite.Open(path))
	if err != nil {
		return nil, err
	}
	// one connection: SQLite has a single writer and ":memory:" is per connection
	sqlDB, err := repo.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return repo, nil
}

// Open opens the journal for a driver name: "sqlite" uses path, "postgres" uses pg.
func Open(driver, path string, pg *Config) (*Repository, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteRepository(path)
	case "postgres":
		return NewRepository(pg)
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}
}

func open(dialector gorm.Dialector) (*Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&dbmodels.Event{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// AppendEvent writes one event to the journal.
func (r *Repository) AppendEvent(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	record := &dbmodels.Event{
		Type:       string(event.Type),
		CompanyID:  event.CompanyID,
		EmployeeID: event.EmployeeID(),
		Payload:    string(payload),
		OccurredAt: event.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// ListEvents returns journal records oldest first. An empty companyID lists
// every company; limit <= 0 means no limit.
func (r *Repository) ListEvents(ctx context.Context, companyID string, limit int) ([]dbmodels.Event, error) {
	var records []dbmodels.Event
	query := r.db.WithContext(ctx).Order("id ASC")
	if companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	return r.db.WithContext(ctx).Exec(query, params...).Error
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Package models contains the journal records persisted through GORM.
package models

import "time"

// Event is one journaled registry mutation. Payload holds the JSON encoding
// of the published event.
type Event struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Type       string    `gorm:"size:32;index"`
	CompanyID  string    `gorm:"size:64;index"`
	EmployeeID string    `gorm:"size:128"`
	Payload    string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// TableName sets the table name for GORM.
func (Event) TableName() string {
	return "registry_events"
}

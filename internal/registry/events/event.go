package events

import (
	"context"
	"time"

	"github.com/gartstein/registry/internal/registry/models"
)

type EventType string

const (
	CompanyCreated   EventType = "company_created"
	CompanyUpdated   EventType = "company_updated"
	CompanyDeleted   EventType = "company_deleted"
	CompaniesCleared EventType = "companies_cleared"
	EmployeeAdded    EventType = "employee_added"
	EmployeeUpdated  EventType = "employee_updated"
	EmployeeDeleted  EventType = "employee_deleted"
)

// Event describes one successful registry mutation. CompanyID is empty for
// CompaniesCleared.
type Event struct {
	Type       EventType        `json:"type"`
	CompanyID  string           `json:"companyId,omitempty"`
	Company    *models.Company  `json:"company,omitempty"`
	Employee   *models.Employee `json:"employee,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType EventType, company *models.Company, employee *models.Employee) Event {
	ev := Event{
		Type:       eventType,
		Company:    company,
		Employee:   employee,
		OccurredAt: time.Now().UTC(),
	}
	if company != nil {
		ev.CompanyID = company.ID
	}
	return ev
}

// EmployeeID returns the id of the employee the event is about, if any.
func (ev Event) EmployeeID() string {
	if ev.Employee == nil {
		return ""
	}
	return ev.Employee.EmployeeID
}

// Publisher receives registry events. Produce must not block the caller for long.
type Publisher interface {
	Produce(ctx context.Context, event Event)
}

// Fanout forwards every event to each of its publishers in order.
type Fanout []Publisher

func (f Fanout) Produce(ctx context.Context, event Event) {
	for _, p := range f {
		p.Produce(ctx, event)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Produce(context.Context, Event) {}

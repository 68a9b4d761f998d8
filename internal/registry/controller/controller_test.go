package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	e "github.com/gartstein/registry/internal/registry/errors"
	"github.com/gartstein/registry/internal/registry/events"
	"github.com/gartstein/registry/internal/registry/models"
	"github.com/gartstein/registry/internal/registry/store"
	"go.uber.org/zap/zaptest"
)

// MockProducer is a test double for the event producer.
type MockProducer struct {
	mu             sync.Mutex
	producedEvents []events.Event
	wg             *sync.WaitGroup
}

// Produce records the event and signals the wait group.
func (m *MockProducer) Produce(_ context.Context, event events.Event) {
	m.mu.Lock()
	m.producedEvents = append(m.producedEvents, event)
	m.mu.Unlock()
	if m.wg != nil {
		m.wg.Done()
	}
}

func (m *MockProducer) types() []events.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.EventType, 0, len(m.producedEvents))
	for _, ev := range m.producedEvents {
		out = append(out, ev.Type)
	}
	return out
}

func (m *MockProducer) find(eventType events.EventType) *events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.producedEvents {
		if m.producedEvents[i].Type == eventType {
			ev := m.producedEvents[i]
			return &ev
		}
	}
	return nil
}

// failingCompanyStore returns a non-registry error from every call.
type failingCompanyStore struct {
	CompanyStore
	err error
}

func (f *failingCompanyStore) Create(string) (*models.Company, error)  { return nil, f.err }
func (f *failingCompanyStore) GetByID(string) (*models.Company, error) { return nil, f.err }

func newService(t *testing.T, producer *MockProducer) (*RegistryService, *store.Store) {
	t.Helper()
	s := store.New()
	return NewRegistryService(s.Companies, s.Employees, producer, zaptest.NewLogger(t)), s
}

func salary(v float64) *float64 {
	return &v
}

func TestRegistryService_CreateCompany(t *testing.T) {
	tests := []struct {
		name          string
		existing      []string
		input         string
		expectError   bool
		expectedError error
	}{
		{name: "successful creation", input: "Acme"},
		{name: "duplicate name", existing: []string{"Acme"}, input: "Acme", expectError: true, expectedError: e.ErrDuplicateName},
		{name: "empty name", input: "", expectError: true, expectedError: e.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
			mockProducer.wg.Add(len(tt.existing))
			service, _ := newService(t, mockProducer)
			for _, name := range tt.existing {
				if _, err := service.CreateCompany(context.Background(), name); err != nil {
					t.Fatalf("seeding %q: %v", name, err)
				}
			}
			mockProducer.wg.Wait()

			// For successful creation, add one waitgroup counter for the async event.
			if !tt.expectError {
				mockProducer.wg.Add(1)
			}

			result, err := service.CreateCompany(context.Background(), tt.input)

			if !tt.expectError {
				mockProducer.wg.Wait()
			}

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
				if got := len(mockProducer.types()); got != len(tt.existing) {
					t.Errorf("failed creation must not publish, got %d events", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.ID == "" {
				t.Error("expected company ID to be set")
			}
			if types := mockProducer.types(); len(types) != 1 || types[0] != events.CompanyCreated {
				t.Errorf("expected one creation event, got %v", types)
			}
		})
	}
}

func TestRegistryService_GetCompany(t *testing.T) {
	mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
	mockProducer.wg.Add(1)
	service, _ := newService(t, mockProducer)
	created, err := service.CreateCompany(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mockProducer.wg.Wait()

	got, err := service.GetCompany(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected company ID %v, got %v", created.ID, got.ID)
	}

	_, err = service.GetCompany(context.Background(), "missing")
	if !errors.Is(err, e.ErrNotFound) {
		t.Errorf("expected error %v, got %v", e.ErrNotFound, err)
	}
}

func TestRegistryService_WrapsUnexpectedErrors(t *testing.T) {
	storeErr := errors.New("disk on fire")
	s := store.New()
	service := NewRegistryService(&failingCompanyStore{err: storeErr}, s.Employees, &MockProducer{}, zaptest.NewLogger(t))

	_, err := service.CreateCompany(context.Background(), "Acme")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if err.Error() != "failed to create company: disk on fire" {
		t.Errorf("unexpected message %q", err.Error())
	}

	_, err = service.GetCompany(context.Background(), "c1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestRegistryService_ListCompaniesPage(t *testing.T) {
	mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
	service, _ := newService(t, mockProducer)
	mockProducer.wg.Add(3)
	for _, name := range []string{"a", "b", "c"} {
		if _, err := service.CreateCompany(context.Background(), name); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mockProducer.wg.Wait()

	page, err := service.ListCompaniesPage(context.Background(), "2", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 1 || page[0].Name != "c" {
		t.Errorf("unexpected page %+v", page)
	}

	_, err = service.ListCompaniesPage(context.Background(), "x", "1")
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Errorf("expected error %v, got %v", e.ErrInvalidInput, err)
	}

	if all := service.ListCompanies(context.Background()); len(all) != 3 {
		t.Errorf("expected 3 companies, got %d", len(all))
	}
}

func TestRegistryService_UpdateCompanyName(t *testing.T) {
	mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
	service, _ := newService(t, mockProducer)
	mockProducer.wg.Add(1)
	created, err := service.CreateCompany(context.Background(), "Old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mockProducer.wg.Wait()

	tests := []struct {
		name          string
		id            string
		newName       string
		expectedError error
	}{
		{name: "successful update", id: created.ID, newName: "New"},
		{name: "unknown id", id: "missing", newName: "New", expectedError: e.ErrNotFound},
		{name: "empty name", id: created.ID, newName: "", expectedError: e.ErrInvalidInput},
		{name: "unknown id with empty name", id: "missing", newName: "", expectedError: e.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expectedError == nil {
				mockProducer.wg.Add(1)
			}
			updated, err := service.UpdateCompanyName(context.Background(), tt.id, tt.newName)
			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			mockProducer.wg.Wait()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.Name != tt.newName || updated.ID != created.ID {
				t.Errorf("unexpected company %+v", updated)
			}
		})
	}
}

func TestRegistryService_EmployeeLifecycle(t *testing.T) {
	ctx := context.Background()
	mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
	service, _ := newService(t, mockProducer)

	mockProducer.wg.Add(4)
	company, err := service.CreateCompany(ctx, "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.AddEmployee(ctx, company.ID, &models.Employee{EmployeeID: "e1", Name: "Bob"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := service.UpdateEmployee(ctx, company.ID, "e1", &models.EmployeeUpdate{Salary: salary(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != company.ID {
		t.Errorf("expected owning company, got %+v", updated)
	}
	after, err := service.DeleteEmployee(ctx, company.ID, "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mockProducer.wg.Wait()

	if len(after.EmployeeIDs) != 0 {
		t.Errorf("expected employeeIds to be pruned, got %v", after.EmployeeIDs)
	}
	got := map[events.EventType]bool{}
	for _, typ := range mockProducer.types() {
		got[typ] = true
	}
	if ev := mockProducer.find(events.EmployeeUpdated); ev == nil || ev.Employee == nil {
		t.Errorf("expected employee_updated event with employee, got %+v", ev)
	} else if ev.Employee.Name != "Bob" || ev.Employee.Salary == nil || *ev.Employee.Salary != 10 {
		t.Errorf("expected patched employee in event, got %+v", ev.Employee)
	}
	for _, want := range []events.EventType{events.CompanyCreated, events.EmployeeAdded, events.EmployeeUpdated, events.EmployeeDeleted} {
		if !got[want] {
			t.Errorf("missing %s event", want)
		}
	}

	if _, err := service.AddEmployee(ctx, "missing", &models.Employee{EmployeeID: "e2"}); !errors.Is(err, e.ErrNotFound) {
		t.Errorf("expected error %v, got %v", e.ErrNotFound, err)
	}
	if _, err := service.ListEmployees(ctx, "missing"); !errors.Is(err, e.ErrNotFound) {
		t.Errorf("expected error %v, got %v", e.ErrNotFound, err)
	}
	if _, err := service.UpdateEmployee(ctx, company.ID, "e1", &models.EmployeeUpdate{}); !errors.Is(err, e.ErrNotFound) {
		t.Errorf("expected error %v, got %v", e.ErrNotFound, err)
	}
}

func TestRegistryService_DeleteCompany(t *testing.T) {
	ctx := context.Background()
	mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
	service, _ := newService(t, mockProducer)

	mockProducer.wg.Add(3)
	acme, _ := service.CreateCompany(ctx, "Acme")
	_, _ = service.CreateCompany(ctx, "Globex")
	if _, err := service.AddEmployee(ctx, acme.ID, &models.Employee{EmployeeID: "e1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mockProducer.wg.Wait()

	// For a successful deletion, add one counter for the async deletion event.
	mockProducer.wg.Add(1)
	remaining, err := service.DeleteCompany(ctx, acme.ID)
	mockProducer.wg.Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Name != "Globex" {
		t.Errorf("unexpected remaining companies %+v", remaining)
	}
	if all := service.ListAllEmployees(ctx); len(all) != 0 {
		t.Errorf("expected cascade to remove employees, got %+v", all)
	}

	if _, err := service.DeleteCompany(ctx, acme.ID); !errors.Is(err, e.ErrNotFound) {
		t.Errorf("expected error %v, got %v", e.ErrNotFound, err)
	}
}

func TestRegistryService_DeleteAllCompanies(t *testing.T) {
	ctx := context.Background()
	mockProducer := &MockProducer{wg: new(sync.WaitGroup)}
	service, _ := newService(t, mockProducer)

	mockProducer.wg.Add(2)
	acme, _ := service.CreateCompany(ctx, "Acme")
	if _, err := service.AddEmployee(ctx, acme.ID, &models.Employee{EmployeeID: "e1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mockProducer.wg.Wait()

	mockProducer.wg.Add(1)
	service.DeleteAllCompanies(ctx)
	mockProducer.wg.Wait()

	if n := len(service.ListCompanies(ctx)); n != 0 {
		t.Errorf("expected no companies, got %d", n)
	}
	if n := len(service.ListAllEmployees(ctx)); n != 0 {
		t.Errorf("expected no employees, got %d", n)
	}
	types := mockProducer.types()
	if types[len(types)-1] != events.CompaniesCleared {
		t.Errorf("expected %s last, got %v", events.CompaniesCleared, types)
	}
}

// Package controller implements the service layer of the registry: each
// method calls exactly one store operation, logs the outcome, and publishes
// an event for every successful mutation.
package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/registry/internal/registry/errors"
	"github.com/gartstein/registry/internal/registry/events"
	"github.com/gartstein/registry/internal/registry/models"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(ctx context.Context, event events.Event)
}

// CompanyStore defines the storage interface for Company objects.
type CompanyStore interface {
	Create(name string) (*models.Company, error)
	GetByID(id string) (*models.Company, error)
	ListAll() []*models.Company
	ListPage(pageSize, pageIndex string) ([]*models.Company, error)
	UpdateName(id, name string) (*models.Company, error)
	DeleteByID(id string) ([]*models.Company, error)
	DeleteAll() (companies, employees int)
}

// EmployeeStore defines the storage interface for Employee objects.
type EmployeeStore interface {
	AddEmployee(companyID string, employee *models.Employee) (*models.Company, error)
	ListByCompany(companyID string) ([]*models.Employee, error)
	ListAll() []*models.Employee
	UpdateEmployee(companyID, employeeID string, patch *models.EmployeeUpdate) (*models.Company, *models.Employee, error)
	DeleteEmployee(companyID, employeeID string) (*models.Company, error)
}

// RegistryService provides methods to manage companies and employees.
type RegistryService struct {
	companies CompanyStore
	employees EmployeeStore
	producer  EventProducer
	logger    *zap.Logger
}

// NewRegistryService constructs a RegistryService over the two stores,
// an event producer, and a logger.
func NewRegistryService(companies CompanyStore, employees EmployeeStore, producer EventProducer, logger *zap.Logger) *RegistryService {
	return &RegistryService{
		companies: companies,
		employees: employees,
		producer:  producer,
		logger:    logger.Named("registry_service"),
	}
}

// CreateCompany registers a new company; the name must not be taken.
func (s *RegistryService) CreateCompany(ctx context.Context, name string) (*models.Company, error) {
	company, err := s.companies.Create(name)
	if err != nil {
		return nil, wrap(err, "failed to create company")
	}
	s.logger.Info("Company created",
		zap.String("company_id", company.ID),
		zap.String("name", company.Name),
	)
	s.publish(ctx, events.CompanyCreated, company, nil)
	return company, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *RegistryService) GetCompany(_ context.Context, id string) (*models.Company, error) {
	company, err := s.companies.GetByID(id)
	if err != nil {
		return nil, wrap(err, "failed to get company")
	}
	return company, nil
}

func (s *RegistryService) ListCompanies(_ context.Context) []*models.Company {
	return s.companies.ListAll()
}

// ListCompaniesPage returns one page; pageSize and pageIndex come straight
// from the request and are validated by the store.
func (s *RegistryService) ListCompaniesPage(_ context.Context, pageSize, pageIndex string) ([]*models.Company, error) {
	page, err := s.companies.ListPage(pageSize, pageIndex)
	if err != nil {
		return nil, wrap(err, "failed to list companies")
	}
	return page, nil
}

// UpdateCompanyName renames a company. An unknown id is reported before an
// empty name.
func (s *RegistryService) UpdateCompanyName(ctx context.Context, id, name string) (*models.Company, error) {
	if _, err := s.companies.GetByID(id); err != nil {
		return nil, wrap(err, "failed to update company")
	}
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", e.ErrInvalidInput)
	}
	company, err := s.companies.UpdateName(id, name)
	if err != nil {
		return nil, wrap(err, "failed to update company")
	}
	s.publish(ctx, events.CompanyUpdated, company, nil)
	return company, nil
}

// DeleteCompany removes a company and its employees, returning the
// companies that remain.
func (s *RegistryService) DeleteCompany(ctx context.Context, id string) ([]*models.Company, error) {
	remaining, err := s.companies.DeleteByID(id)
	if err != nil {
		return nil, wrap(err, "failed to delete company")
	}
	s.logger.Info("Company deleted", zap.String("company_id", id))
	s.publish(ctx, events.CompanyDeleted, &models.Company{ID: id, EmployeeIDs: []string{}}, nil)
	return remaining, nil
}

// DeleteAllCompanies empties the registry.
func (s *RegistryService) DeleteAllCompanies(ctx context.Context) {
	companies, employees := s.companies.DeleteAll()
	s.logger.Info("Registry cleared",
		zap.Int("companies", companies),
		zap.Int("employees", employees),
	)
	s.publish(ctx, events.CompaniesCleared, nil, nil)
}

// AddEmployee attaches an employee to a company and returns the company.
func (s *RegistryService) AddEmployee(ctx context.Context, companyID string, employee *models.Employee) (*models.Company, error) {
	company, err := s.employees.AddEmployee(companyID, employee)
	if err != nil {
		return nil, wrap(err, "failed to add employee")
	}
	added := employee.Clone()
	added.CompanyID = companyID
	s.publish(ctx, events.EmployeeAdded, company, added)
	return company, nil
}

func (s *RegistryService) ListEmployees(_ context.Context, companyID string) ([]*models.Employee, error) {
	employees, err := s.employees.ListByCompany(companyID)
	if err != nil {
		return nil, wrap(err, "failed to list employees")
	}
	return employees, nil
}

func (s *RegistryService) ListAllEmployees(_ context.Context) []*models.Employee {
	return s.employees.ListAll()
}

// UpdateEmployee applies a partial update and returns the owning company.
func (s *RegistryService) UpdateEmployee(ctx context.Context, companyID, employeeID string, patch *models.EmployeeUpdate) (*models.Company, error) {
	company, updated, err := s.employees.UpdateEmployee(companyID, employeeID, patch)
	if err != nil {
		return nil, wrap(err, "failed to update employee")
	}
	s.publish(ctx, events.EmployeeUpdated, company, updated)
	return company, nil
}

// DeleteEmployee removes an employee and returns the owning company.
func (s *RegistryService) DeleteEmployee(ctx context.Context, companyID, employeeID string) (*models.Company, error) {
	company, err := s.employees.DeleteEmployee(companyID, employeeID)
	if err != nil {
		return nil, wrap(err, "failed to delete employee")
	}
	s.publish(ctx, events.EmployeeDeleted, company, &models.Employee{EmployeeID: employeeID, CompanyID: companyID})
	return company, nil
}

func (s *RegistryService) publish(ctx context.Context, eventType events.EventType, company *models.Company, employee *models.Employee) {
	event := events.NewEvent(eventType, company, employee)
	ctx = context.WithoutCancel(ctx)
	go func() {
		s.producer.Produce(ctx, event)
	}()
}

// wrap passes registry errors through untouched and annotates anything else.
func wrap(err error, msg string) error {
	if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrDuplicateName) || errors.Is(err, e.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

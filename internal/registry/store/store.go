// Package store implements the relational in-memory registry: a CompanyStore
// and an EmployeeStore sharing one state and one lock, so that cascades and
// the denormalized Company.EmployeeIDs list are updated in a single step.
//
// Every value handed out by the store is a copy; callers cannot reach into
// store state.
package store

import (
	"slices"
	"sync"

	"github.com/gartstein/registry/internal/registry/models"
	"github.com/google/uuid"
)

// IDGenerator returns a new globally unique company identifier.
type IDGenerator func() string

// Option configures a Store.
type Option func(*state)

// WithIDGenerator overrides the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *state) {
		s.newID = gen
	}
}

// Store bundles the two views over the shared registry state.
type Store struct {
	Companies *CompanyStore
	Employees *EmployeeStore
}

// New creates an empty registry.
func New(opts ...Option) *Store {
	st := &state{
		companyByID:  make(map[string]*models.Company),
		employeeByID: make(map[string]*models.Employee),
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(st)
	}
	return &Store{
		Companies: &CompanyStore{state: st},
		Employees: &EmployeeStore{state: st},
	}
}

// state holds both collections. mu guards every field below it.
type state struct {
	mu sync.RWMutex

	companies   []*models.Company
	companyByID map[string]*models.Company

	employees    []*models.Employee
	employeeByID map[string]*models.Employee

	newID IDGenerator
}

func (s *state) company(id string) (*models.Company, bool) {
	c, ok := s.companyByID[id]
	return c, ok
}

func (s *state) employee(id string) (*models.Employee, bool) {
	emp, ok := s.employeeByID[id]
	return emp, ok
}

func (s *state) removeCompany(id string) {
	delete(s.companyByID, id)
	s.companies = slices.DeleteFunc(s.companies, func(c *models.Company) bool {
		return c.ID == id
	})
}

// removeEmployeesOf drops every employee owned by companyID and returns how many went.
func (s *state) removeEmployeesOf(companyID string) int {
	before := len(s.employees)
	s.employees = slices.DeleteFunc(s.employees, func(emp *models.Employee) bool {
		if emp.CompanyID != companyID {
			return false
		}
		delete(s.employeeByID, emp.EmployeeID)
		return true
	})
	return before - len(s.employees)
}

func (s *state) removeEmployee(id string) {
	delete(s.employeeByID, id)
	s.employees = slices.DeleteFunc(s.employees, func(emp *models.Employee) bool {
		return emp.EmployeeID == id
	})
}

func cloneCompanies(in []*models.Company) []*models.Company {
	out := make([]*models.Company, 0, len(in))
	for _, c := range in {
		out = append(out, c.Clone())
	}
	return out
}

func cloneEmployees(in []*models.Employee) []*models.Employee {
	out := make([]*models.Employee, 0, len(in))
	for _, emp := range in {
		out = append(out, emp.Clone())
	}
	return out
}

package store

import (
	"fmt"

	e "github.com/gartstein/registry/internal/registry/errors"
	"github.com/gartstein/registry/internal/registry/models"
)

// CompanyStore owns the company collection.
type CompanyStore struct {
	*state
}

// Create stores a new company under a freshly generated id.
func (s *CompanyStore) Create(name string) (*models.Company, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", e.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.companies {
		if c.Name == name {
			return nil, fmt.Errorf("%w: company %s already exist", e.ErrDuplicateName, name)
		}
	}

	company := &models.Company{
		ID:          s.newID(),
		Name:        name,
		EmployeeIDs: []string{},
	}
	s.companies = append(s.companies, company)
	s.companyByID[company.ID] = company
	return company.Clone(), nil
}

// GetByID returns the company with the given id.
func (s *CompanyStore) GetByID(id string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.company(id)
	if !ok {
		return nil, companyNotFound(id)
	}
	return company.Clone(), nil
}

// ListAll returns every company in insertion order.
func (s *CompanyStore) ListAll() []*models.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneCompanies(s.companies)
}

// ListPage returns one 1-indexed page of ListAll.
func (s *CompanyStore) ListPage(pageSize, pageIndex string) ([]*models.Company, error) {
	size, index, err := ParsePage(pageSize, pageIndex)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneCompanies(Paginate(s.companies, size, index)), nil
}

// UpdateName renames a company in place. The id is never touched.
func (s *CompanyStore) UpdateName(id, name string) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.company(id)
	if !ok {
		return nil, companyNotFound(id)
	}
	company.Name = name
	return company.Clone(), nil
}

// DeleteByID removes a company together with its employees and returns the
// companies that remain.
func (s *CompanyStore) DeleteByID(id string) ([]*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.company(id); !ok {
		return nil, companyNotFound(id)
	}
	s.removeEmployeesOf(id)
	s.removeCompany(id)
	return cloneCompanies(s.companies), nil
}

// DeleteAll empties the registry and reports how many companies and
// employees were removed.
func (s *CompanyStore) DeleteAll() (companies, employees int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	companies, employees = len(s.companies), len(s.employees)
	s.companies = nil
	s.companyByID = make(map[string]*models.Company)
	s.employees = nil
	s.employeeByID = make(map[string]*models.Employee)
	return companies, employees
}

func companyNotFound(id string) error {
	return fmt.Errorf("%w: company %q", e.ErrNotFound, id)
}

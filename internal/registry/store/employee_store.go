package store

import (
	"fmt"
	"slices"

	e "github.com/gartstein/registry/internal/registry/errors"
	"github.com/gartstein/registry/internal/registry/models"
)

// EmployeeStore owns the employee collection and keeps each company's
// EmployeeIDs in step with it.
type EmployeeStore struct {
	*state
}

// AddEmployee attaches a new employee to a company and returns the updated company.
func (s *EmployeeStore) AddEmployee(companyID string, employee *models.Employee) (*models.Company, error) {
	if employee == nil || employee.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employeeId is required", e.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.company(companyID)
	if !ok {
		return nil, companyNotFound(companyID)
	}
	if _, exists := s.employee(employee.EmployeeID); exists {
		return nil, fmt.Errorf("%w: employee %q", e.ErrDuplicateName, employee.EmployeeID)
	}

	stored := employee.Clone()
	stored.CompanyID = companyID
	s.employees = append(s.employees, stored)
	s.employeeByID[stored.EmployeeID] = stored
	company.EmployeeIDs = append(company.EmployeeIDs, stored.EmployeeID)
	return company.Clone(), nil
}

// ListByCompany returns the employees of a company in attach order.
func (s *EmployeeStore) ListByCompany(companyID string) ([]*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.company(companyID)
	if !ok {
		return nil, companyNotFound(companyID)
	}
	out := make([]*models.Employee, 0, len(company.EmployeeIDs))
	for _, id := range company.EmployeeIDs {
		if emp, ok := s.employee(id); ok {
			out = append(out, emp.Clone())
		}
	}
	return out, nil
}

// ListAll returns every employee regardless of owner.
func (s *EmployeeStore) ListAll() []*models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneEmployees(s.employees)
}

// UpdateEmployee merges patch into an employee of the given company and
// returns the owning company and the employee as stored after the patch.
func (s *EmployeeStore) UpdateEmployee(companyID, employeeID string, patch *models.EmployeeUpdate) (*models.Company, *models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, emp, err := s.attached(companyID, employeeID)
	if err != nil {
		return nil, nil, err
	}
	if patch != nil {
		patch.Apply(emp)
	}
	return company.Clone(), emp.Clone(), nil
}

// DeleteEmployee removes an employee and detaches it from its company.
func (s *EmployeeStore) DeleteEmployee(companyID, employeeID string) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, _, err := s.attached(companyID, employeeID)
	if err != nil {
		return nil, err
	}
	s.removeEmployee(employeeID)
	company.EmployeeIDs = slices.DeleteFunc(company.EmployeeIDs, func(id string) bool {
		return id == employeeID
	})
	return company.Clone(), nil
}

// attached resolves a company and one of its employees. Caller holds mu.
func (s *EmployeeStore) attached(companyID, employeeID string) (*models.Company, *models.Employee, error) {
	company, ok := s.company(companyID)
	if !ok {
		return nil, nil, companyNotFound(companyID)
	}
	if !company.HasEmployee(employeeID) {
		return nil, nil, fmt.Errorf("%w: employee %q in company %q", e.ErrNotFound, employeeID, companyID)
	}
	emp, ok := s.employee(employeeID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: employee %q", e.ErrNotFound, employeeID)
	}
	return company, emp, nil
}

// Package models defines the core domain models of the registry:
// Company, Employee and the partial EmployeeUpdate patch.
package models

import "slices"

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the server-assigned unique identifier. It never changes after creation.
	ID string `json:"id"`
	// Name is the company's name, unique among live companies at creation time.
	Name string `json:"name"`
	// EmployeeIDs lists the employees currently attached to the company,
	// in the order they were attached.
	EmployeeIDs []string `json:"employeeIds"`
}

// Clone returns a deep copy of the company. EmployeeIDs is never nil in the copy.
func (c *Company) Clone() *Company {
	ids := slices.Clone(c.EmployeeIDs)
	if ids == nil {
		ids = []string{}
	}
	return &Company{
		ID:          c.ID,
		Name:        c.Name,
		EmployeeIDs: ids,
	}
}

// HasEmployee reports whether employeeID is attached to the company.
func (c *Company) HasEmployee(employeeID string) bool {
	return slices.Contains(c.EmployeeIDs, employeeID)
}

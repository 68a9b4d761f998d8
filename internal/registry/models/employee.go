package models

// Employee defines the domain model for an employee attached to a company.
type Employee struct {
	// EmployeeID is supplied by the caller and is unique across the registry.
	EmployeeID string `json:"employeeId"`
	// CompanyID references the owning company. It is set by the store on attach.
	CompanyID string `json:"companyId"`
	// Name is the employee's name.
	Name string `json:"name"`
	// Salary is optional.
	Salary *float64 `json:"salary,omitempty"`
}

// Clone returns a copy of the employee that shares no memory with the original.
func (e *Employee) Clone() *Employee {
	cp := *e
	if e.Salary != nil {
		salary := *e.Salary
		cp.Salary = &salary
	}
	return &cp
}

// EmployeeUpdate represents the fields that can be updated for an Employee.
// Pointer types are used to allow partial updates.
type EmployeeUpdate struct {
	// Name replaces the stored name when non-nil and non-empty.
	Name *string
	// Salary replaces the stored salary when non-nil.
	Salary *float64
}

// Apply merges the patch into e.
func (u *EmployeeUpdate) Apply(e *Employee) {
	if u.Name != nil && *u.Name != "" {
		e.Name = *u.Name
	}
	if u.Salary != nil {
		salary := *u.Salary
		e.Salary = &salary
	}
}

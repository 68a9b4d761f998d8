package handlers

import "github.com/gartstein/registry/internal/registry/models"

// CompanyRequest is the body of create and rename requests. Any id sent by
// the client is ignored.
type CompanyRequest struct {
	Name string `json:"name" validate:"required"`
}

// AddEmployeeRequest is the body of POST /companies/{id}/employees.
type AddEmployeeRequest struct {
	EmployeeID string   `json:"employeeId" validate:"required"`
	Name       string   `json:"name"`
	Salary     *float64 `json:"salary" validate:"omitempty,gte=0"`
}

// UpdateEmployeeRequest is a partial update; absent fields keep their value.
type UpdateEmployeeRequest struct {
	Name   *string  `json:"name"`
	Salary *float64 `json:"salary" validate:"omitempty,gte=0"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (r *AddEmployeeRequest) toModel() *models.Employee {
	return &models.Employee{
		EmployeeID: r.EmployeeID,
		Name:       r.Name,
		Salary:     r.Salary,
	}
}

func (r *UpdateEmployeeRequest) toModel() *models.EmployeeUpdate {
	return &models.EmployeeUpdate{
		Name:   r.Name,
		Salary: r.Salary,
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gartstein/registry/internal/registry/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RegistryController defines the business logic interface
// that the HTTP handlers will invoke.
type RegistryController interface {
	CreateCompany(ctx context.Context, name string) (*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context) []*models.Company
	ListCompaniesPage(ctx context.Context, pageSize, pageIndex string) ([]*models.Company, error)
	UpdateCompanyName(ctx context.Context, id, name string) (*models.Company, error)
	DeleteCompany(ctx context.Context, id string) ([]*models.Company, error)
	DeleteAllCompanies(ctx context.Context)
	AddEmployee(ctx context.Context, companyID string, employee *models.Employee) (*models.Company, error)
	ListEmployees(ctx context.Context, companyID string) ([]*models.Employee, error)
	ListAllEmployees(ctx context.Context) []*models.Employee
	UpdateEmployee(ctx context.Context, companyID, employeeID string, patch *models.EmployeeUpdate) (*models.Company, error)
	DeleteEmployee(ctx context.Context, companyID, employeeID string) (*models.Company, error)
}

// RegistryHandler translates HTTP requests into RegistryController calls.
type RegistryHandler struct {
	service   RegistryController
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistryHandler constructs a new RegistryHandler with the given service and logger.
func NewRegistryHandler(service RegistryController, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger.Named("http_handler"),
	}
}

// CreateCompany handles POST /companies.
func (h *RegistryHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if !h.decode(w, r, &req) {
		return
	}

	company, err := h.service.CreateCompany(r.Context(), req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/companies/"+company.ID)
	h.respondJSON(w, http.StatusCreated, company)
}

// ListCompanies handles GET /companies, paged when pageSize or pageIndex is given.
func (h *RegistryHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("pageSize") && !query.Has("pageIndex") {
		h.respondJSON(w, http.StatusOK, h.service.ListCompanies(r.Context()))
		return
	}

	page, err := h.service.ListCompaniesPage(r.Context(), query.Get("pageSize"), query.Get("pageIndex"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, page)
}

// ListAllCompanies handles GET /companies/all.
func (h *RegistryHandler) ListAllCompanies(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.ListCompanies(r.Context()))
}

// DeleteAllCompanies handles DELETE /companies/all.
func (h *RegistryHandler) DeleteAllCompanies(w http.ResponseWriter, r *http.Request) {
	h.service.DeleteAllCompanies(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetCompany handles GET /companies/{id}.
func (h *RegistryHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, company)
}

// UpdateCompany handles PUT /companies/{id}. Only the name can change. The
// body is not validated here so an unknown id answers 404 even with an empty name.
func (h *RegistryHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	company, err := h.service.UpdateCompanyName(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, company)
}

// DeleteCompany handles DELETE /companies/{id} and answers with the remaining companies.
func (h *RegistryHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	remaining, err := h.service.DeleteCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, remaining)
}

// AddEmployee handles POST /companies/{id}/employees and answers with the updated company.
func (h *RegistryHandler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var req AddEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	company, err := h.service.AddEmployee(r.Context(), chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, company)
}

// ListEmployees handles GET /companies/{id}/employees.
func (h *RegistryHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.ListEmployees(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, employees)
}

// UpdateEmployee handles PUT/PATCH /companies/{id}/employees/{employeeId}.
func (h *RegistryHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req UpdateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	company, err := h.service.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "employeeId"), req.toModel())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, company)
}

// DeleteEmployee handles DELETE /companies/{id}/employees/{employeeId}.
func (h *RegistryHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.DeleteEmployee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "employeeId"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, company)
}

// ListAllEmployees handles GET /employees.
func (h *RegistryHandler) ListAllEmployees(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.ListAllEmployees(r.Context()))
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (h *RegistryHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !h.decodeJSON(w, r, dst) {
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.respondError(w, http.StatusBadRequest, "validation error", verrs.Error())
			return false
		}
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return false
	}
	return true
}

func (h *RegistryHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

func (h *RegistryHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *RegistryHandler) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	h.respondJSON(w, status, ErrorResponse{Error: errMsg, Message: details})
}

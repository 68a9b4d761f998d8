package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// NewRouter builds the REST API. When health is non-nil, GET /healthz is
// answered through the gRPC health service. A positive rateLimit caps
// requests per client IP per minute.
func NewRouter(h *RegistryHandler, health grpc_health_v1.HealthClient, logger *zap.Logger, rateLimit int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger.Named("http")))
	r.Use(Recoverer(logger))
	if rateLimit > 0 {
		r.Use(httprate.LimitByIP(rateLimit, time.Minute))
	}

	if health != nil {
		gw := runtime.NewServeMux(runtime.WithHealthEndpointAt(health, "/healthz"))
		r.Method(http.MethodGet, "/healthz", gw)
	}

	r.Group(func(r chi.Router) {
		r.Use(ContentType)

		r.Route("/companies", func(r chi.Router) {
			r.Post("/", h.CreateCompany)
			r.Get("/", h.ListCompanies)
			r.Get("/all", h.ListAllCompanies)
			r.Delete("/all", h.DeleteAllCompanies)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCompany)
				r.Put("/", h.UpdateCompany)
				r.Delete("/", h.DeleteCompany)

				r.Route("/employees", func(r chi.Router) {
					r.Post("/", h.AddEmployee)
					r.Get("/", h.ListEmployees)
					r.Put("/{employeeId}", h.UpdateEmployee)
					r.Patch("/{employeeId}", h.UpdateEmployee)
					r.Delete("/{employeeId}", h.DeleteEmployee)
				})
			})
		})

		r.Get("/employees", h.ListAllEmployees)
	})

	return r
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/handler"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/ui"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

// api holds everything the router mounts.
type api struct {
	auth    *middleware.AuthMiddleware
	signIn  func(http.Handler) http.Handler
	cors    func(http.Handler) http.Handler
	metrics *metrics.Metrics
	logger  *zap.Logger

	pages          *ui.Handler
	health         *handler.HealthHandler
	authAPI        *handler.AuthHandler
	events         *handler.EventHandler
	resources      *handler.ResourceHandler
	funds          *handler.FundHandler
	reports        *handler.ReportHandler
	bookings       *handler.BookingHandler
	collaborations *handler.CollaborationHandler
	users          *handler.RegistrationHandler
	changes        *handler.ChangesHandler
}

var dashboards = []struct {
	role domain.Role
	root string
}{
	{domain.RoleAssociation, domain.PathDashboard},
	{domain.RoleFaculty, domain.PathFaculty},
	{domain.RoleAdmin, domain.PathAdmin},
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(a.logger, a.metrics))
	r.Use(chimw.Recoverer)

	// Health endpoints (OpenShift compatible)
	r.Get("/health", a.health.Health)
	r.Get("/health/ready", a.health.Ready)
	r.Get("/health/live", a.health.Live)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api/v1", a.apiRoutes)

	r.Group(func(r chi.Router) {
		r.Use(a.auth.Session)
		r.Use(a.pages.EnsureCSRFToken)
		r.Use(a.pages.RequireCSRF)

		r.Get(domain.PathHome, a.pages.Home)
		r.With(a.auth.RequirePage(services.RedirectIfAuthenticated())).Get(domain.PathSignIn, a.pages.SignInForm)
		r.With(a.auth.RequirePage(services.RedirectIfAuthenticated()), a.signIn).Post(domain.PathSignIn, a.pages.SignIn)
		r.Post(domain.PathSignIn+"/signout", a.pages.SignOut)

		for _, d := range dashboards {
			r.Group(func(r chi.Router) {
				r.Use(a.auth.RequirePage(services.RequireRole(d.role)))
				r.Get(d.root, a.pages.Dashboard)
				r.Get(d.root+"/{tab}", a.pages.Dashboard)
				r.Post(d.root+"/{tab}", a.pages.Act)
			})
		}
	})

	r.NotFound(a.pages.NotFound)
	return r
}

func (a *api) apiRoutes(r chi.Router) {
	r.Use(a.cors)
	r.Use(a.auth.Session)

	r.With(a.signIn).Post("/auth/signin", a.authAPI.SignIn)
	r.Get("/session", a.authAPI.Session)
	r.Get("/resources", a.resources.Catalog)

	r.Group(func(r chi.Router) {
		r.Use(a.auth.RequireAPI(services.RequireAuthenticated()))

		r.Post("/auth/signout", a.authAPI.SignOut)
		r.Post("/account/password", a.authAPI.ChangePassword)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", a.events.List)
			r.Post("/", a.events.Create)
			r.Patch("/{id}/status", a.events.UpdateStatus)
			r.Post("/{id}/cancel", a.events.Cancel)
		})
		r.Route("/resource-requests", func(r chi.Router) {
			r.Get("/", a.resources.List)
			r.Post("/", a.resources.Create)
			r.Patch("/{id}/status", a.resources.UpdateStatus)
		})
		r.Route("/fund-analyses", func(r chi.Router) {
			r.Get("/", a.funds.List)
			r.Post("/", a.funds.Create)
			r.Get("/{id}/sections", a.funds.Sections)
			r.Patch("/{id}/status", a.funds.UpdateStatus)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", a.reports.List)
			r.Post("/", a.reports.Create)
			r.Put("/{id}", a.reports.Update)
			r.Get("/{id}/export", a.reports.Export)
		})
		r.Get("/bookings", a.bookings.Availability)
		r.Post("/bookings", a.bookings.Create)
		r.Get("/collaborations", a.collaborations.List)
		r.Post("/collaborations", a.collaborations.Create)
		r.Get("/changes", a.changes.Stream)

		r.Group(func(r chi.Router) {
			r.Use(a.auth.RequireAPI(services.RequireRole(domain.RoleAdmin)))
			r.Get("/users", a.users.List)
			r.Post("/users", a.users.Register)
		})
	})
}

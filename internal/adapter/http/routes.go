package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/billun/fleetcore/internal/domain/user"
	"github.com/billun/fleetcore/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router.
// Authentication is applied by the router-level middleware; public paths
// (health, login, refresh) are exempted there.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)

		// Companies
		r.Get("/companies/{id}", h.GetCompany)
		r.With(middleware.RequireRole(user.RoleAdmin)).
			Post("/companies", h.CreateCompany)

		// Equipment registry (own company)
		r.Get("/equipment", h.ListEquipment)
		r.Post("/equipment", h.CreateEquipment)
		r.Get("/equipment/{id}", h.GetEquipment)

		// Partnerships. Lifecycle mutations are manager/admin territory;
		// operators can still browse partner equipment and file reports.
		r.Get("/partnerships", h.ListPartnerships)
		r.Get("/partnerships/equipment", h.PartnerEquipment)
		r.Get("/partnerships/stats", h.PartnershipStats)
		r.Get("/partnerships/{id}", h.GetPartnership)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin, user.RoleManager))
			r.Post("/partnerships/invite", h.InvitePartner)
			r.Put("/partnerships/{id}/accept", h.AcceptPartnership)
			r.Put("/partnerships/{id}/decline", h.DeclinePartnership)
			r.Put("/partnerships/{id}/suspend", h.SuspendPartnership)
		})

		// Anomalies
		r.Post("/anomalies/partnership", h.ReportPartnerAnomaly)
		r.Get("/anomalies", h.ListAnomalies)
	})
}

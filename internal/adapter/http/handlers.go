// Package http implements the HTTP adapter: handlers, routes, and
// request/response helpers.
package http

import (
	"net/http"
	"time"

	"github.com/billun/fleetcore/internal/domain/company"
	"github.com/billun/fleetcore/internal/domain/equipment"
	"github.com/billun/fleetcore/internal/domain/user"
	"github.com/billun/fleetcore/internal/middleware"
	"github.com/billun/fleetcore/internal/service"
)

const refreshCookieName = "fleetcore_refresh"

// Handlers bundles the services exposed over HTTP.
type Handlers struct {
	Auth         *service.AuthService
	Companies    *service.CompanyService
	Equipment    *service.EquipmentService
	Partnerships *service.PartnershipService
	Access       *service.AccessService
	Anomalies    *service.AnomalyService

	RefreshTokenExpiry time.Duration
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func (h *Handlers) setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/api/v1/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r)
	if !ok {
		return
	}

	resp, rawRefresh, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.setRefreshCookie(w, rawRefresh, int(h.RefreshTokenExpiry/time.Second))
	writeJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "no refresh token")
		return
	}

	resp, newRawRefresh, err := h.Auth.RefreshTokens(r.Context(), cookie.Value)
	if err != nil {
		h.setRefreshCookie(w, "", -1)
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	h.setRefreshCookie(w, newRawRefresh, int(h.RefreshTokenExpiry/time.Second))
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Auth.Logout(r.Context(), u.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	h.setRefreshCookie(w, "", -1)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me handles GET /api/v1/auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	full, err := h.Auth.GetUser(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, full)
}

// ---------------------------------------------------------------------------
// Companies
// ---------------------------------------------------------------------------

// GetCompany handles GET /api/v1/companies/{id}
func (h *Handlers) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.Companies.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "company not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCompany handles POST /api/v1/companies
func (h *Handlers) CreateCompany(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[company.CreateRequest](w, r)
	if !ok {
		return
	}

	c, err := h.Companies.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "company not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ---------------------------------------------------------------------------
// Equipment
// ---------------------------------------------------------------------------

// ListEquipment handles GET /api/v1/equipment
func (h *Handlers) ListEquipment(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	items, err := h.Equipment.List(r.Context(), u.CompanyID)
	if err != nil {
		writeDomainError(w, err, "equipment not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateEquipment handles POST /api/v1/equipment
func (h *Handlers) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	req, ok := readJSON[equipment.CreateRequest](w, r)
	if !ok {
		return
	}

	e, err := h.Equipment.Create(r.Context(), u.CompanyID, &req)
	if err != nil {
		writeDomainError(w, err, "equipment not found")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// GetEquipment handles GET /api/v1/equipment/{id}
func (h *Handlers) GetEquipment(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	e, err := h.Equipment.Get(r.Context(), u.CompanyID, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "equipment not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

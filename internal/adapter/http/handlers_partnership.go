package http

import (
	"net/http"

	"github.com/billun/fleetcore/internal/domain/partnership"
	"github.com/billun/fleetcore/internal/middleware"
)

// ListPartnerships handles GET /api/v1/partnerships?status=
func (h *Handlers) ListPartnerships(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	status := partnership.Status(r.URL.Query().Get("status"))

	recs, err := h.Partnerships.List(r.Context(), u.CompanyID, status)
	if err != nil {
		writeDomainError(w, err, "partnership not found")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// InvitePartner handles POST /api/v1/partnerships/invite
func (h *Handlers) InvitePartner(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	req, ok := readJSON[partnership.InviteRequest](w, r)
	if !ok {
		return
	}

	rec, err := h.Partnerships.Invite(r.Context(), u.CompanyID, &req)
	if err != nil {
		writeDomainError(w, err, "company not found")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GetPartnership handles GET /api/v1/partnerships/{id}
func (h *Handlers) GetPartnership(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	rec, err := h.Partnerships.Get(r.Context(), u.CompanyID, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "partnership not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// AcceptPartnership handles PUT /api/v1/partnerships/{id}/accept
func (h *Handlers) AcceptPartnership(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	rec, err := h.Partnerships.Accept(r.Context(), u.CompanyID, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "partnership not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeclinePartnership handles PUT /api/v1/partnerships/{id}/decline
func (h *Handlers) DeclinePartnership(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	rec, err := h.Partnerships.Decline(r.Context(), u.CompanyID, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "partnership not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// SuspendPartnership handles PUT /api/v1/partnerships/{id}/suspend
func (h *Handlers) SuspendPartnership(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	rec, err := h.Partnerships.Suspend(r.Context(), u.CompanyID, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "partnership not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PartnerEquipment handles GET /api/v1/partnerships/equipment
func (h *Handlers) PartnerEquipment(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	items, err := h.Access.VisibleEquipment(r.Context(), u.CompanyID)
	if err != nil {
		writeDomainError(w, err, "equipment not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// PartnershipStats handles GET /api/v1/partnerships/stats
func (h *Handlers) PartnershipStats(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	stats, err := h.Partnerships.Stats(r.Context(), u.CompanyID)
	if err != nil {
		writeDomainError(w, err, "partnership not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

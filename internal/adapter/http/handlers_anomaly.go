package http

import (
	"net/http"

	"github.com/billun/fleetcore/internal/domain/anomaly"
	"github.com/billun/fleetcore/internal/middleware"
)

// ReportPartnerAnomaly handles POST /api/v1/anomalies/partnership
func (h *Handlers) ReportPartnerAnomaly(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	req, ok := readJSON[anomaly.PartnerReportRequest](w, r)
	if !ok {
		return
	}

	a, err := h.Anomalies.ReportViaPartnership(r.Context(), u.CompanyID, &req)
	if err != nil {
		writeDomainError(w, err, "equipment or partnership not found")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// ListAnomalies handles GET /api/v1/anomalies
func (h *Handlers) ListAnomalies(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	items, err := h.Anomalies.List(r.Context(), u.CompanyID)
	if err != nil {
		writeDomainError(w, err, "anomaly not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

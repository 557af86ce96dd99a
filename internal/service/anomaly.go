package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/anomaly"
	"github.com/billun/fleetcore/internal/port/database"
	"github.com/billun/fleetcore/internal/port/messagequeue"
	"github.com/billun/fleetcore/internal/resilience"
)

// AnomalyService is the reporting gateway. Cross-tenant reports go through
// the access resolver before anything is persisted.
type AnomalyService struct {
	store   database.Store
	access  *AccessService
	queue   messagequeue.Queue
	breaker *resilience.Breaker
	log     *slog.Logger
}

// NewAnomalyService creates a new anomaly reporting service.
func NewAnomalyService(store database.Store, access *AccessService, queue messagequeue.Queue, breaker *resilience.Breaker, log *slog.Logger) *AnomalyService {
	return &AnomalyService{store: store, access: access, queue: queue, breaker: breaker, log: log}
}

// anomalyEvent is the payload published on the anomalies.reported subject.
type anomalyEvent struct {
	AnomalyID     string    `json:"anomaly_id"`
	EquipmentID   string    `json:"equipment_id"`
	ReporterID    string    `json:"reporter_id"`
	PartnershipID string    `json:"partnership_id,omitempty"`
	Severity      string    `json:"severity"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReportViaPartnership files an anomaly on partner-owned equipment. The
// access resolver authorizes the report and updates the partnership metrics;
// only then is the anomaly persisted and announced.
func (s *AnomalyService) ReportViaPartnership(ctx context.Context, reporterCompanyID string, req *anomaly.PartnerReportRequest) (*anomaly.Anomaly, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	if _, err := s.access.AuthorizeReport(ctx, reporterCompanyID, req.EquipmentID, req.PartnershipID); err != nil {
		return nil, err
	}

	a := &anomaly.Anomaly{
		ID:                     uuid.NewString(),
		EquipmentID:            req.EquipmentID,
		ReporterCompanyID:      reporterCompanyID,
		Description:            req.Description,
		Severity:               req.Severity,
		Status:                 anomaly.StatusOpen,
		ReportedViaPartnership: true,
		PartnershipID:          req.PartnershipID,
	}

	if err := s.store.CreateAnomaly(ctx, a); err != nil {
		return nil, fmt.Errorf("create anomaly: %w", err)
	}

	s.publish(ctx, a)
	return a, nil
}

// List returns anomalies on the company's own equipment.
func (s *AnomalyService) List(ctx context.Context, companyID string) ([]anomaly.Anomaly, error) {
	return s.store.ListAnomaliesForCompany(ctx, companyID)
}

func (s *AnomalyService) publish(ctx context.Context, a *anomaly.Anomaly) {
	ev := anomalyEvent{
		AnomalyID:     a.ID,
		EquipmentID:   a.EquipmentID,
		ReporterID:    a.ReporterCompanyID,
		PartnershipID: a.PartnershipID,
		Severity:      string(a.Severity),
		OccurredAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("marshal anomaly event", "error", err)
		return
	}

	err = s.breaker.Execute(func() error {
		return s.queue.Publish(ctx, messagequeue.SubjectAnomalyReported, data)
	})
	if err != nil {
		s.log.Warn("publish anomaly event failed", "anomaly_id", a.ID, "error", err)
	}
}

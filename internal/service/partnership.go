package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/partnership"
	"github.com/billun/fleetcore/internal/domain/user"
	"github.com/billun/fleetcore/internal/port/cache"
	"github.com/billun/fleetcore/internal/port/database"
	"github.com/billun/fleetcore/internal/port/messagequeue"
	"github.com/billun/fleetcore/internal/resilience"
)

// PartnershipService enforces the invitation/accept/decline protocol over
// pairs of directed partnership records.
//
// A relationship is two rows, one per direction, and the store only ever
// writes one row at a time. This service sequences the paired writes: the
// first write is confirmed before the second is attempted, the second is
// retried once on failure, and a second failure surfaces ErrInconsistent
// with the first write left in place as the detectable partial state.
type PartnershipService struct {
	store     database.Store
	companies *CompanyService
	queue     messagequeue.Queue
	cache     cache.Cache
	breaker   *resilience.Breaker
	log       *slog.Logger
}

// NewPartnershipService creates the partnership lifecycle service.
func NewPartnershipService(store database.Store, companies *CompanyService, queue messagequeue.Queue, c cache.Cache, breaker *resilience.Breaker, log *slog.Logger) *PartnershipService {
	return &PartnershipService{
		store:     store,
		companies: companies,
		queue:     queue,
		cache:     c,
		breaker:   breaker,
		log:       log,
	}
}

// partnershipEvent is the payload published on partnership lifecycle subjects.
type partnershipEvent struct {
	PartnershipID string    `json:"partnership_id"`
	InitiatorID   string    `json:"initiator_id"`
	PartnerID     string    `json:"partner_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Invite creates a pending directed pair from the initiator company to the
// company named in the request. An unknown target is not an error: a
// placeholder company with a disabled contact account is provisioned first.
// The originating record carries the invitation contact and the requested
// access rules; the mirror record starts with the default grant so the
// invited side can adjust its own rules after accepting.
func (s *PartnershipService) Invite(ctx context.Context, initiatorID string, req *partnership.InviteRequest) (*partnership.Partnership, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	initiator, err := s.store.GetCompany(ctx, initiatorID)
	if err != nil {
		return nil, fmt.Errorf("get initiator company: %w", err)
	}

	target, err := s.companies.ResolveOrProvision(ctx, req.TargetCompanyName, req.SIRET, user.CreateRequest{
		Email: req.ContactEmail,
		Name:  req.ContactName,
	})
	if err != nil {
		return nil, err
	}

	if target.ID == initiator.ID {
		return nil, fmt.Errorf("%w: a company cannot partner with itself", domain.ErrValidation)
	}

	// Duplicate check covers both orderings; the partial unique index on
	// (initiator_id, partner_id) catches the race between two concurrent
	// invites for the same pair.
	if _, err := s.store.FindBetween(ctx, initiator.ID, target.ID); err == nil {
		return nil, fmt.Errorf("%w: an active partnership with %s already exists", domain.ErrConflict, target.Name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	forward := &partnership.Partnership{
		ID:                uuid.NewString(),
		InitiatorID:       initiator.ID,
		PartnerID:         target.ID,
		InitiatorName:     initiator.Name,
		PartnerName:       target.Name,
		Status:            partnership.StatusPending,
		InvitationMessage: req.Message,
		ContactPerson: partnership.ContactPerson{
			Name:  req.ContactName,
			Email: req.ContactEmail,
			Phone: req.ContactPhone,
		},
		EquipmentAccess: req.Access(),
	}

	if err := s.store.CreatePartnership(ctx, forward); err != nil {
		return nil, fmt.Errorf("create partnership: %w", err)
	}

	mirror := &partnership.Partnership{
		ID:              uuid.NewString(),
		InitiatorID:     target.ID,
		PartnerID:       initiator.ID,
		InitiatorName:   target.Name,
		PartnerName:     initiator.Name,
		Status:          partnership.StatusPending,
		EquipmentAccess: partnership.DefaultAccess(),
	}

	if err := s.store.CreatePartnership(ctx, mirror); err != nil {
		// A unique violation here means a concurrent invite from the other
		// direction created its own record after our duplicate check. That
		// invite won; the surviving records, one per direction, already form
		// the pair, so the caller sees the same conflict the duplicate check
		// reports.
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: an active partnership with %s already exists", domain.ErrConflict, target.Name)
		}
		s.log.Warn("mirror record write failed, retrying",
			"partnership_id", forward.ID, "error", err)
		if err := s.store.CreatePartnership(ctx, mirror); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, fmt.Errorf("%w: an active partnership with %s already exists", domain.ErrConflict, target.Name)
			}
			s.log.Error("mirror record write failed after retry",
				"partnership_id", forward.ID, "mirror_id", mirror.ID, "error", err)
			return nil, fmt.Errorf("%w: mirror record for partnership %s could not be created: %s",
				domain.ErrInconsistent, forward.ID, err)
		}
	}

	s.publish(ctx, messagequeue.SubjectPartnershipInvited, forward)
	s.invalidateVisibility(ctx, initiator.ID, target.ID)

	return forward, nil
}

// Accept moves a pending pair to accepted. Only the invited side (the
// partner on the named record) may accept. Both directed records get the
// same acceptedAt timestamp; a missing reverse record is logged and
// tolerated so one corrupt row cannot wedge the relationship.
func (s *PartnershipService) Accept(ctx context.Context, callerCompanyID, id string) (*partnership.Partnership, error) {
	return s.resolvePair(ctx, callerCompanyID, id, partnership.StatusAccepted)
}

// Decline moves a pending pair to declined. Declined is terminal: the
// records are kept for history and a fresh invite creates new ones.
func (s *PartnershipService) Decline(ctx context.Context, callerCompanyID, id string) (*partnership.Partnership, error) {
	return s.resolvePair(ctx, callerCompanyID, id, partnership.StatusDeclined)
}

// resolvePair applies an accept or decline to both directions of a pair.
func (s *PartnershipService) resolvePair(ctx context.Context, callerCompanyID, id string, to partnership.Status) (*partnership.Partnership, error) {
	rec, err := s.store.GetPartnership(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get partnership: %w", err)
	}

	if _, party := rec.OtherParty(callerCompanyID); !party {
		return nil, fmt.Errorf("%w: company is not a party to this partnership", domain.ErrForbidden)
	}
	if callerCompanyID != rec.PartnerID {
		return nil, fmt.Errorf("%w: only the invited company can respond to an invitation", domain.ErrForbidden)
	}
	if rec.Status != partnership.StatusPending {
		return nil, fmt.Errorf("%w: partnership is %s, not pending", domain.ErrInvalidState, rec.Status)
	}

	upd := database.StatusUpdate{Status: to}
	var acceptedAt *time.Time
	if to == partnership.StatusAccepted {
		now := time.Now().UTC()
		acceptedAt = &now
		upd.AcceptedAt = acceptedAt
	}

	if err := s.store.UpdatePartnershipStatus(ctx, rec.ID, upd); err != nil {
		return nil, fmt.Errorf("update partnership: %w", err)
	}
	rec.Status = to
	rec.AcceptedAt = acceptedAt

	reverse, err := s.store.FindDirected(ctx, rec.PartnerID, rec.InitiatorID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Recoverable anomaly: the named record is authoritative.
		s.log.Error("reverse partnership record missing",
			"partnership_id", rec.ID, "initiator_id", rec.InitiatorID, "partner_id", rec.PartnerID)
	case err != nil:
		return nil, fmt.Errorf("find reverse record: %w", err)
	default:
		if err := s.store.UpdatePartnershipStatus(ctx, reverse.ID, upd); err != nil {
			s.log.Warn("reverse record write failed, retrying",
				"partnership_id", rec.ID, "reverse_id", reverse.ID, "error", err)
			if err := s.store.UpdatePartnershipStatus(ctx, reverse.ID, upd); err != nil {
				s.log.Error("reverse record write failed after retry",
					"partnership_id", rec.ID, "reverse_id", reverse.ID, "error", err)
				return nil, fmt.Errorf("%w: reverse record %s could not be updated: %s",
					domain.ErrInconsistent, reverse.ID, err)
			}
		}
	}

	subject := messagequeue.SubjectPartnershipAccepted
	if to == partnership.StatusDeclined {
		subject = messagequeue.SubjectPartnershipDeclined
	}
	s.publish(ctx, subject, rec)
	s.invalidateVisibility(ctx, rec.InitiatorID, rec.PartnerID)

	return rec, nil
}

// Suspend unilaterally pauses outbound sharing on the named record only.
// The reverse record is intentionally left untouched: one party pausing
// does not force the other to stop sharing.
func (s *PartnershipService) Suspend(ctx context.Context, callerCompanyID, id string) (*partnership.Partnership, error) {
	rec, err := s.store.GetPartnership(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get partnership: %w", err)
	}

	if _, party := rec.OtherParty(callerCompanyID); !party {
		return nil, fmt.Errorf("%w: company is not a party to this partnership", domain.ErrForbidden)
	}
	if rec.Status != partnership.StatusAccepted {
		return nil, fmt.Errorf("%w: partnership is %s, not accepted", domain.ErrInvalidState, rec.Status)
	}

	now := time.Now().UTC()
	upd := database.StatusUpdate{Status: partnership.StatusSuspended, SuspendedAt: &now}
	if err := s.store.UpdatePartnershipStatus(ctx, rec.ID, upd); err != nil {
		return nil, fmt.Errorf("update partnership: %w", err)
	}
	rec.Status = partnership.StatusSuspended
	rec.SuspendedAt = &now

	s.publish(ctx, messagequeue.SubjectPartnershipSuspended, rec)
	s.invalidateVisibility(ctx, rec.InitiatorID, rec.PartnerID)

	return rec, nil
}

// Get returns a directed record by ID, restricted to its parties.
func (s *PartnershipService) Get(ctx context.Context, callerCompanyID, id string) (*partnership.Partnership, error) {
	rec, err := s.store.GetPartnership(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get partnership: %w", err)
	}
	if _, party := rec.OtherParty(callerCompanyID); !party {
		return nil, fmt.Errorf("%w: company is not a party to this partnership", domain.ErrForbidden)
	}
	return rec, nil
}

// List returns all directed records where the company is a party,
// optionally filtered by status.
func (s *PartnershipService) List(ctx context.Context, companyID string, status partnership.Status) ([]partnership.Partnership, error) {
	if status != "" && !partnership.ValidStatuses[status] {
		return nil, fmt.Errorf("%w: invalid status filter %q", domain.ErrValidation, status)
	}
	return s.store.ListPartnershipsForCompany(ctx, companyID, status)
}

// Stats summarizes partnership activity for one company. Shared-equipment
// totals are counted per qualifying record concurrently since each count is
// an independent query.
func (s *PartnershipService) Stats(ctx context.Context, companyID string) (*partnership.Stats, error) {
	recs, err := s.store.ListPartnershipsForCompany(ctx, companyID, "")
	if err != nil {
		return nil, fmt.Errorf("list partnerships: %w", err)
	}

	stats := &partnership.Stats{}
	var shared atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for i := range recs {
		rec := recs[i]
		switch {
		case rec.Status == partnership.StatusAccepted && rec.InitiatorID == companyID:
			// One record per pair counts the relationship once.
			stats.ActivePartnerships++
		case rec.Status == partnership.StatusPending && rec.ContactPerson.Email != "":
			// Only the originating record of a pair carries the contact,
			// which is what distinguishes sent from received invitations.
			if rec.InitiatorID == companyID {
				stats.SentInvitations++
			} else {
				stats.PendingInvitations++
			}
		}

		if rec.Status == partnership.StatusAccepted && rec.PartnerID == companyID && rec.EquipmentAccess.AllowViewing {
			g.Go(func() error {
				n, err := s.countShared(gctx, rec)
				if err != nil {
					return err
				}
				shared.Add(int64(n))
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count shared equipment: %w", err)
	}

	stats.TotalSharedEquipment = int(shared.Load())
	return stats, nil
}

// countShared counts the initiator's equipment visible through one record.
func (s *PartnershipService) countShared(ctx context.Context, rec partnership.Partnership) (int, error) {
	if len(rec.EquipmentAccess.RestrictedEquipmentIDs) == 0 {
		return s.store.CountEquipmentByCompany(ctx, rec.InitiatorID)
	}
	items, err := s.store.ListEquipmentByCompany(ctx, rec.InitiatorID, rec.EquipmentAccess.RestrictedEquipmentIDs)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// publish emits a lifecycle event through the circuit breaker. Event
// delivery is best-effort: a failure is logged, never surfaced to the
// caller, since the state change has already been committed.
func (s *PartnershipService) publish(ctx context.Context, subject string, rec *partnership.Partnership) {
	ev := partnershipEvent{
		PartnershipID: rec.ID,
		InitiatorID:   rec.InitiatorID,
		PartnerID:     rec.PartnerID,
		Status:        string(rec.Status),
		OccurredAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("marshal partnership event", "subject", subject, "error", err)
		return
	}

	err = s.breaker.Execute(func() error {
		return s.queue.Publish(ctx, subject, data)
	})
	if err != nil {
		s.log.Warn("publish partnership event failed",
			"subject", subject, "partnership_id", rec.ID, "error", err)
	}
}

// invalidateVisibility drops both companies' cached visibility results.
func (s *PartnershipService) invalidateVisibility(ctx context.Context, companyA, companyB string) {
	for _, id := range []string{companyA, companyB} {
		if err := s.cache.Delete(ctx, visibilityCacheKey(id)); err != nil {
			s.log.Warn("invalidate visibility cache", "company_id", id, "error", err)
		}
	}
}

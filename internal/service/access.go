package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/equipment"
	"github.com/billun/fleetcore/internal/domain/partnership"
	"github.com/billun/fleetcore/internal/port/cache"
	"github.com/billun/fleetcore/internal/port/database"
)

// AccessService is the equipment access resolver. It computes which partner
// equipment a company may see and authorizes partner-sourced anomaly reports
// against the per-partnership access rules.
type AccessService struct {
	store database.Store
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewAccessService creates the access resolver.
func NewAccessService(store database.Store, c cache.Cache, ttl time.Duration, log *slog.Logger) *AccessService {
	return &AccessService{store: store, cache: c, ttl: ttl, log: log}
}

func visibilityCacheKey(companyID string) string {
	return "visibility:" + companyID
}

// VisibleEquipment returns every piece of partner equipment the company may
// view. For each accepted record where the company is the partner side and
// viewing is allowed, the initiator's equipment minus the restricted IDs is
// included, tagged with the partnership it came through. Equipment reachable
// via several partnerships appears once per partnership: the access rules
// differ per record, so deduplication would lose information.
//
// Results are cached with a short TTL; lifecycle transitions invalidate the
// cache for both parties.
func (s *AccessService) VisibleEquipment(ctx context.Context, companyID string) ([]equipment.PartnerEquipment, error) {
	key := visibilityCacheKey(companyID)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached []equipment.PartnerEquipment
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		s.log.Warn("discarding corrupt visibility cache entry", "company_id", companyID)
	}

	recs, err := s.store.ListPartnershipsForCompany(ctx, companyID, partnership.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("list partnerships: %w", err)
	}

	result := make([]equipment.PartnerEquipment, 0)
	for _, rec := range recs {
		if rec.PartnerID != companyID || !rec.EquipmentAccess.AllowViewing {
			continue
		}

		items, err := s.store.ListEquipmentByCompany(ctx, rec.InitiatorID, rec.EquipmentAccess.RestrictedEquipmentIDs)
		if err != nil {
			return nil, fmt.Errorf("list equipment for %s: %w", rec.InitiatorID, err)
		}

		for _, e := range items {
			result = append(result, equipment.PartnerEquipment{
				Equipment:      e,
				PartnershipID:  rec.ID,
				PartnerCompany: rec.InitiatorName,
			})
		}
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn("cache visibility result", "company_id", companyID, "error", err)
		}
	}

	return result, nil
}

// AuthorizeReport checks whether the reporting company may file an anomaly
// on the given equipment through the given partnership. The access rules
// come from the directed record whose initiator owns the equipment, so when
// the named record points the other way the reverse record is consulted.
//
// On success the owner's record gains a received report, the reporter's
// record a provided one, and both records' last-activity timestamps move.
func (s *AccessService) AuthorizeReport(ctx context.Context, reporterCompanyID, equipmentID, partnershipID string) (*partnership.Partnership, error) {
	rec, err := s.store.GetPartnership(ctx, partnershipID)
	if err != nil {
		return nil, fmt.Errorf("get partnership: %w", err)
	}

	eq, err := s.store.GetEquipment(ctx, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("get equipment: %w", err)
	}

	if rec.Status != partnership.StatusAccepted {
		return nil, fmt.Errorf("%w: partnership is %s, not accepted", domain.ErrInactive, rec.Status)
	}

	ownerID, party := rec.OtherParty(reporterCompanyID)
	if !party {
		return nil, fmt.Errorf("%w: company is not a party to this partnership", domain.ErrForbidden)
	}
	if eq.CompanyID != ownerID {
		return nil, fmt.Errorf("%w: equipment is not owned by the partner company", domain.ErrForbidden)
	}

	// The rules for the owner's equipment live on the record the owner
	// initiated. Fetch the reverse when the named record points outward
	// from the reporter.
	ownerRec := rec
	reporterRec := rec
	if rec.InitiatorID != ownerID {
		reverse, err := s.store.FindDirected(ctx, ownerID, reporterCompanyID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: no access grant from the equipment owner", domain.ErrForbidden)
			}
			return nil, fmt.Errorf("find owner record: %w", err)
		}
		ownerRec = reverse
	} else {
		reverse, err := s.store.FindDirected(ctx, reporterCompanyID, ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Tolerated: metrics for the reporter side are skipped, the
				// grant on the owner record still decides authorization.
				s.log.Error("reverse partnership record missing",
					"partnership_id", rec.ID, "reporter_id", reporterCompanyID)
				reporterRec = nil
			} else {
				return nil, fmt.Errorf("find reporter record: %w", err)
			}
		} else {
			reporterRec = reverse
		}
	}

	// The grant lives on the owner's record, so its status decides whether
	// the grant is active. Without this a unilateral suspend on the owner
	// side would still let reports through the reporter's accepted record.
	if ownerRec.Status != partnership.StatusAccepted {
		return nil, fmt.Errorf("%w: the owner's grant is %s, not accepted", domain.ErrInactive, ownerRec.Status)
	}

	if !ownerRec.EquipmentAccess.AllowReporting {
		return nil, fmt.Errorf("%w: reporting is not allowed on this partnership", domain.ErrForbidden)
	}
	if ownerRec.EquipmentAccess.Restricted(equipmentID) {
		return nil, fmt.Errorf("%w: no access to this equipment via partnership", domain.ErrForbidden)
	}

	// The two counters move as a pair: when the received side cannot be
	// recorded, the provided side is skipped so the totals stay in step.
	if err := s.store.IncrementPartnershipMetrics(ctx, ownerRec.ID, 1, 0); err != nil {
		s.log.Error("increment owner metrics, skipping reporter side",
			"partnership_id", ownerRec.ID, "error", err)
	} else if reporterRec != nil {
		if err := s.store.IncrementPartnershipMetrics(ctx, reporterRec.ID, 0, 1); err != nil {
			s.log.Error("increment reporter metrics", "partnership_id", reporterRec.ID, "error", err)
		}
	}

	return ownerRec, nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/anomaly"
	"github.com/billun/fleetcore/internal/domain/company"
	"github.com/billun/fleetcore/internal/domain/equipment"
	"github.com/billun/fleetcore/internal/domain/partnership"
	"github.com/billun/fleetcore/internal/domain/user"
	"github.com/billun/fleetcore/internal/port/cache"
	"github.com/billun/fleetcore/internal/port/database"
	"github.com/billun/fleetcore/internal/port/messagequeue"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is an in-memory implementation of database.Store for testing.
type mockStore struct {
	companies     []company.Company
	users         []user.User
	refreshTokens []user.RefreshToken
	equipment     []equipment.Equipment
	partnerships  []partnership.Partnership
	anomalies     []anomaly.Anomaly

	// Error hooks — set these to inject failures.
	getCompanyErr       error
	createCompanyErr    error
	createUserErr       error
	listPartnershipsErr error
	incrementErr        error

	// failCreatePartnershipOn fails CreatePartnership by 1-based call
	// number; updateStatusFails fails the next N updates of a record ID.
	// beforeCreatePartnership runs at the top of each CreatePartnership,
	// letting a test interleave a concurrent write.
	createPartnershipCalls  int
	failCreatePartnershipOn map[int]bool
	updateStatusFails       map[string]int
	beforeCreatePartnership func(call int)
	incrementCalls          int
}

// --- Companies ---

func (m *mockStore) GetCompany(_ context.Context, id string) (*company.Company, error) {
	if m.getCompanyErr != nil {
		return nil, m.getCompanyErr
	}
	for i := range m.companies {
		if m.companies[i].ID == id {
			c := m.companies[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetCompanyByName(_ context.Context, name string) (*company.Company, error) {
	for i := range m.companies {
		if m.companies[i].Name == name {
			c := m.companies[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateCompany(_ context.Context, c *company.Company) error {
	if m.createCompanyErr != nil {
		return m.createCompanyErr
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.companies = append(m.companies, *c)
	return nil
}

func (m *mockStore) UpdateCompany(_ context.Context, c *company.Company) error {
	for i := range m.companies {
		if m.companies[i].ID == c.ID {
			m.companies[i] = *c
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Users ---

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	for i := range m.users {
		if m.users[i].Email == u.Email {
			return domain.ErrConflict
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users = append(m.users, *u)
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) UpdateUser(_ context.Context, u *user.User) error {
	for i := range m.users {
		if m.users[i].ID == u.ID {
			m.users[i] = *u
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListUsers(_ context.Context, companyID string) ([]user.User, error) {
	var out []user.User
	for i := range m.users {
		if m.users[i].CompanyID == companyID {
			out = append(out, m.users[i])
		}
	}
	return out, nil
}

// --- Refresh tokens ---

func (m *mockStore) CreateRefreshToken(_ context.Context, rt *user.RefreshToken) error {
	m.refreshTokens = append(m.refreshTokens, *rt)
	return nil
}

func (m *mockStore) GetRefreshTokenByHash(_ context.Context, hash string) (*user.RefreshToken, error) {
	for i := range m.refreshTokens {
		if m.refreshTokens[i].TokenHash == hash {
			rt := m.refreshTokens[i]
			return &rt, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) RotateRefreshToken(_ context.Context, oldID string, newRT *user.RefreshToken) error {
	for i := range m.refreshTokens {
		if m.refreshTokens[i].ID == oldID {
			m.refreshTokens = append(m.refreshTokens[:i], m.refreshTokens[i+1:]...)
			m.refreshTokens = append(m.refreshTokens, *newRT)
			return nil
		}
	}
	return domain.ErrConflict
}

func (m *mockStore) DeleteRefreshToken(_ context.Context, id string) error {
	for i := range m.refreshTokens {
		if m.refreshTokens[i].ID == id {
			m.refreshTokens = append(m.refreshTokens[:i], m.refreshTokens[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteRefreshTokensByUser(_ context.Context, userID string) error {
	kept := m.refreshTokens[:0]
	for i := range m.refreshTokens {
		if m.refreshTokens[i].UserID != userID {
			kept = append(kept, m.refreshTokens[i])
		}
	}
	m.refreshTokens = kept
	return nil
}

// --- Equipment ---

func (m *mockStore) CreateEquipment(_ context.Context, e *equipment.Equipment) error {
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.equipment = append(m.equipment, *e)
	return nil
}

func (m *mockStore) GetEquipment(_ context.Context, id string) (*equipment.Equipment, error) {
	for i := range m.equipment {
		if m.equipment[i].ID == id {
			e := m.equipment[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListEquipmentByCompany(_ context.Context, companyID string, excludeIDs []string) ([]equipment.Equipment, error) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	out := make([]equipment.Equipment, 0)
	for i := range m.equipment {
		if m.equipment[i].CompanyID == companyID && !excluded[m.equipment[i].ID] {
			out = append(out, m.equipment[i])
		}
	}
	return out, nil
}

func (m *mockStore) CountEquipmentByCompany(_ context.Context, companyID string) (int, error) {
	n := 0
	for i := range m.equipment {
		if m.equipment[i].CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

// --- Partnerships ---

func (m *mockStore) CreatePartnership(_ context.Context, p *partnership.Partnership) error {
	m.createPartnershipCalls++
	if m.beforeCreatePartnership != nil {
		m.beforeCreatePartnership(m.createPartnershipCalls)
	}
	if m.failCreatePartnershipOn[m.createPartnershipCalls] {
		return errors.New("write failed")
	}
	// Mirrors the partial unique index on (initiator_id, partner_id).
	for i := range m.partnerships {
		if m.partnerships[i].InitiatorID == p.InitiatorID &&
			m.partnerships[i].PartnerID == p.PartnerID &&
			m.partnerships[i].Status != partnership.StatusDeclined {
			return domain.ErrConflict
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.partnerships = append(m.partnerships, *p)
	return nil
}

func (m *mockStore) GetPartnership(_ context.Context, id string) (*partnership.Partnership, error) {
	for i := range m.partnerships {
		if m.partnerships[i].ID == id {
			p := m.partnerships[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) FindDirected(_ context.Context, initiatorID, partnerID string) (*partnership.Partnership, error) {
	for i := range m.partnerships {
		if m.partnerships[i].InitiatorID == initiatorID &&
			m.partnerships[i].PartnerID == partnerID &&
			m.partnerships[i].Status != partnership.StatusDeclined {
			p := m.partnerships[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) FindBetween(_ context.Context, companyA, companyB string) (*partnership.Partnership, error) {
	for i := range m.partnerships {
		p := m.partnerships[i]
		if p.Status == partnership.StatusDeclined {
			continue
		}
		if (p.InitiatorID == companyA && p.PartnerID == companyB) ||
			(p.InitiatorID == companyB && p.PartnerID == companyA) {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListPartnershipsForCompany(_ context.Context, companyID string, status partnership.Status) ([]partnership.Partnership, error) {
	if m.listPartnershipsErr != nil {
		return nil, m.listPartnershipsErr
	}
	out := make([]partnership.Partnership, 0)
	for i := range m.partnerships {
		p := m.partnerships[i]
		if p.InitiatorID != companyID && p.PartnerID != companyID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockStore) UpdatePartnershipStatus(_ context.Context, id string, upd database.StatusUpdate) error {
	if n := m.updateStatusFails[id]; n > 0 {
		m.updateStatusFails[id] = n - 1
		return errors.New("write failed")
	}
	for i := range m.partnerships {
		if m.partnerships[i].ID == id {
			m.partnerships[i].Status = upd.Status
			if upd.AcceptedAt != nil {
				m.partnerships[i].AcceptedAt = upd.AcceptedAt
			}
			if upd.SuspendedAt != nil {
				m.partnerships[i].SuspendedAt = upd.SuspendedAt
			}
			m.partnerships[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) IncrementPartnershipMetrics(_ context.Context, id string, receivedDelta, providedDelta int) error {
	m.incrementCalls++
	if m.incrementErr != nil {
		return m.incrementErr
	}
	for i := range m.partnerships {
		if m.partnerships[i].ID == id {
			m.partnerships[i].Metrics.ReportsReceived += receivedDelta
			m.partnerships[i].Metrics.ReportsProvided += providedDelta
			m.partnerships[i].Metrics.LastActivity = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Anomalies ---

func (m *mockStore) CreateAnomaly(_ context.Context, a *anomaly.Anomaly) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.anomalies = append(m.anomalies, *a)
	return nil
}

func (m *mockStore) ListAnomaliesForCompany(_ context.Context, companyID string) ([]anomaly.Anomaly, error) {
	owned := make(map[string]bool)
	for i := range m.equipment {
		if m.equipment[i].CompanyID == companyID {
			owned[m.equipment[i].ID] = true
		}
	}
	out := make([]anomaly.Anomaly, 0)
	for i := range m.anomalies {
		if owned[m.anomalies[i].EquipmentID] || m.anomalies[i].ReporterCompanyID == companyID {
			out = append(out, m.anomalies[i])
		}
	}
	return out, nil
}

// --- Queue and cache mocks ---

var _ messagequeue.Queue = (*mockQueue)(nil)

// mockQueue records published messages.
type mockQueue struct {
	mu         sync.Mutex
	published  []string // subjects, in publish order
	publishErr error
}

func (q *mockQueue) Publish(_ context.Context, subject string, _ []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, subject)
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Drain() error      { return nil }
func (q *mockQueue) Close() error      { return nil }
func (q *mockQueue) IsConnected() bool { return true }

func (q *mockQueue) subjects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.published...)
}

var _ cache.Cache = (*mockCache)(nil)

// mockCache is a TTL-less map cache.
type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string][]byte)
	}
	c.entries[key] = value
	return nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes = append(c.deletes, key)
	return nil
}

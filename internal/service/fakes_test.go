package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/events"
	"github.com/portkey-logistics/portkey/internal/repository"
)

type memProfiles struct {
	mu   sync.Mutex
	rows map[string]domain.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{rows: map[string]domain.Profile{}}
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (m *memProfiles) Upsert(_ context.Context, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if existing, ok := m.rows[profile.ID]; ok {
		profile.Role = existing.Role
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	m.rows[profile.ID] = *profile
	return nil
}

func (m *memProfiles) List(_ context.Context, limit, offset int) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Profile
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memProfiles) UpdateRole(_ context.Context, id string, role domain.ProfileRole) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p.Role = role
	p.UpdatedAt = time.Now()
	m.rows[id] = p
	return &p, nil
}

func (m *memProfiles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memShipments struct {
	mu         sync.Mutex
	rows       map[string]domain.Shipment
	clock      time.Time
	lastFilter repository.ShipmentFilter
	metrics    int
	// owners, when set, enforces shipments.user_id REFERENCES profiles(id).
	owners *memProfiles
}

func newMemShipments() *memShipments {
	return &memShipments{rows: map[string]domain.Shipment{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memShipments) Create(_ context.Context, s *domain.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.BLNumber == s.BLNumber {
			return &pgconn.PgError{Code: "23505", ConstraintName: "shipments_bl_number_key"}
		}
	}
	if m.owners != nil {
		if _, err := m.owners.GetByID(context.Background(), s.UserID); err != nil {
			return &pgconn.PgError{Code: "23503", ConstraintName: "shipments_user_id_fkey"}
		}
	}
	m.clock = m.clock.Add(time.Minute)
	s.ID = uuid.NewString()
	s.CreatedAt = m.clock
	m.rows[s.ID] = *s
	return nil
}

func (m *memShipments) Update(_ context.Context, s *domain.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.rows[s.ID] = *s
	return nil
}

func (m *memShipments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func (m *memShipments) GetByID(_ context.Context, id string) (*domain.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (m *memShipments) List(_ context.Context, f repository.ShipmentFilter) ([]domain.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	var out []domain.Shipment
	for _, s := range m.visible(f.UserID) {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, s.Status) {
			continue
		}
		if f.Search != nil && !strings.Contains(strings.ToLower(s.BLNumber), strings.ToLower(*f.Search)) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memShipments) Metrics(_ context.Context, userID *string) (*domain.DashboardMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics++
	metrics := domain.NewDashboardMetrics()
	clients := map[string]bool{}
	now := time.Now()
	for _, s := range m.visible(userID) {
		metrics.Add(s.Status, 1, s.ServiceFee)
		metrics.AddDailyRevenue(s.CreatedAt.UTC().Format(time.DateOnly), s.ServiceFee)
		if s.Delayed(now) {
			metrics.Delayed++
		}
		if s.ClientName != nil && strings.TrimSpace(*s.ClientName) != "" {
			clients[strings.TrimSpace(*s.ClientName)] = true
		}
	}
	metrics.UniqueClients = int64(len(clients))
	return metrics, nil
}

func (m *memShipments) visible(userID *string) []domain.Shipment {
	var out []domain.Shipment
	for _, s := range m.rows {
		if userID == nil || s.UserID == *userID {
			out = append(out, s)
		}
	}
	return out
}

func containsStatus(list []domain.ShipmentStatus, s domain.ShipmentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type memDocuments struct {
	mu   sync.Mutex
	rows map[string]domain.ShipmentDocument
}

func newMemDocuments() *memDocuments {
	return &memDocuments{rows: map[string]domain.ShipmentDocument{}}
}

func (m *memDocuments) Create(_ context.Context, d *domain.ShipmentDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now()
	m.rows[d.ID] = *d
	return nil
}

func (m *memDocuments) GetByID(_ context.Context, id string) (*domain.ShipmentDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (m *memDocuments) ListByShipment(_ context.Context, shipmentID string) ([]domain.ShipmentDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ShipmentDocument
	for _, d := range m.rows {
		if d.ShipmentID == shipmentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocuments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type recordingDispatcher struct {
	events.Dispatcher
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
}

func (r *recordingDispatcher) Publish(ctx context.Context, e events.Event) error {
	r.published = append(r.published, e)
	return r.Dispatcher.Publish(ctx, e)
}

func (r *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, len(r.published))
	for i, e := range r.published {
		out[i] = e.Type
	}
	return out
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, fmt.Errorf("cache down")
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.ShipmentStatus) *domain.ShipmentStatus { return &s }

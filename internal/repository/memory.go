package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/pkg/model"
)

// MemoryCatalog keeps properties, location scores and the dashboard snapshot
// in process. It backs the fixture data source and the tests.
type MemoryCatalog struct {
	mu         sync.RWMutex
	properties map[int64]model.Property
	scores     map[int64]model.LocationScore
	snapshot   *model.DashboardSnapshot
	nextID     int64
	now        func() time.Time
}

// NewMemoryCatalog seeds the catalog with copies of the given collections.
func NewMemoryCatalog(props []model.Property, scores []model.LocationScore) *MemoryCatalog {
	m := &MemoryCatalog{
		properties: make(map[int64]model.Property, len(props)),
		scores:     make(map[int64]model.LocationScore, len(scores)),
		nextID:     1,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, p := range props {
		m.properties[p.ID] = p
		m.nextID = max(m.nextID, p.ID+1)
	}
	for _, s := range scores {
		m.scores[s.ID] = s
	}
	return m
}

func (m *MemoryCatalog) ListProperties(ctx context.Context) ([]model.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Property, 0, len(m.properties))
	for _, p := range m.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryCatalog) GetProperty(ctx context.Context, id int64) (model.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.properties[id]
	if !ok {
		return model.Property{}, apperr.NotFound(fmt.Sprintf("property %d not found", id))
	}
	return p, nil
}

func (m *MemoryCatalog) CreateProperty(ctx context.Context, p model.Property) (model.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	p.ID = m.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	m.nextID++
	m.properties[p.ID] = p
	return p, nil
}

func (m *MemoryCatalog) UpdateProperty(ctx context.Context, p model.Property) (model.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.properties[p.ID]
	if !ok {
		return model.Property{}, apperr.NotFound(fmt.Sprintf("property %d not found", p.ID))
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = m.now()
	m.properties[p.ID] = p
	return p, nil
}

func (m *MemoryCatalog) DeleteProperty(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[id]; !ok {
		return apperr.NotFound(fmt.Sprintf("property %d not found", id))
	}
	delete(m.properties, id)
	return nil
}

func (m *MemoryCatalog) ListLocationScores(ctx context.Context) ([]model.LocationScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.LocationScore, 0, len(m.scores))
	for _, s := range m.scores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryCatalog) GetLocationScore(ctx context.Context, id int64) (model.LocationScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[id]
	if !ok {
		return model.LocationScore{}, apperr.NotFound(fmt.Sprintf("location score %d not found", id))
	}
	return s, nil
}

func (m *MemoryCatalog) SaveSnapshot(ctx context.Context, snap model.DashboardSnapshot) (model.DashboardSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap.LastUpdated = m.now()
	m.snapshot = &snap
	return snap, nil
}

func (m *MemoryCatalog) GetSnapshot(ctx context.Context) (model.DashboardSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return model.DashboardSnapshot{}, apperr.NotFound("dashboard snapshot has not been computed")
	}
	return *m.snapshot, nil
}

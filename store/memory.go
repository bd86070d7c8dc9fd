package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is a Store that lives only as long as the process. It backs tests;
// Open has no driver for it.
type Memory struct {
	mu      sync.RWMutex
	records map[cacheKey]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[cacheKey]Record)}
}

func (m *Memory) Get(ctx context.Context, user, community string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[cacheKey{user, community}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Upsert(ctx context.Context, user, community string, points, acumen int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cacheKey{user, community}
	rec := m.records[k]
	rec.Points, rec.Acumen = points, acumen
	m.records[k] = rec
	return nil
}

func (m *Memory) UpdatePoints(ctx context.Context, user, community string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cacheKey{user, community}
	rec, ok := m.records[k]
	if !ok {
		rec.Acumen = InitialAcumen
	}
	rec.Points = points
	m.records[k] = rec
	return nil
}

func (m *Memory) Top(ctx context.Context, community string, n int) ([]LeaderboardRow, error) {
	if n <= 0 {
		n = 10
	}
	m.mu.RLock()
	var rows []LeaderboardRow
	for k, rec := range m.records {
		if k.community == community {
			rows = append(rows, LeaderboardRow{UserID: k.user, Points: rec.Points, Acumen: rec.Acumen})
		}
	}
	m.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].UserID < rows[j].UserID
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

func (m *Memory) LastPowerup(ctx context.Context, user, community string) (*time.Time, error) {
	rec, err := m.Get(ctx, user, community)
	if err != nil {
		return nil, err
	}
	return rec.LastPowerup, nil
}

func (m *Memory) SetLastPowerup(ctx context.Context, user, community string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cacheKey{user, community}
	rec, ok := m.records[k]
	if !ok {
		return ErrNotFound
	}
	t := at
	rec.LastPowerup = &t
	m.records[k] = rec
	return nil
}

package store

import (
	"context"
	"sync"
	"time"
)

type cacheKey struct {
	user      string
	community string
}

// Cache is a read-through cache in front of a Store. Writes from this process
// update the cached record before reaching the backing store, so the cache
// stays authoritative between writes even when a write fails.
//
// There is no invalidation channel: a record changed by anything other than
// this Cache stays stale here until the process restarts.
type Cache struct {
	backing Store

	mu      sync.Mutex
	records map[cacheKey]Record
}

func NewCache(backing Store) *Cache {
	return &Cache{backing: backing, records: make(map[cacheKey]Record)}
}

func (c *Cache) Get(ctx context.Context, user, community string) (Record, error) {
	k := cacheKey{user, community}
	c.mu.Lock()
	rec, ok := c.records[k]
	c.mu.Unlock()
	if ok {
		return rec, nil
	}
	rec, err := c.backing.Get(ctx, user, community)
	if err != nil {
		return Record{}, err
	}
	c.mu.Lock()
	// a write that raced the read wins
	if cached, ok := c.records[k]; ok {
		rec = cached
	} else {
		c.records[k] = rec
	}
	c.mu.Unlock()
	return rec, nil
}

func (c *Cache) Upsert(ctx context.Context, user, community string, points, acumen int) error {
	k := cacheKey{user, community}
	c.mu.Lock()
	rec := c.records[k]
	rec.Points, rec.Acumen = points, acumen
	c.records[k] = rec
	c.mu.Unlock()
	return c.backing.Upsert(ctx, user, community, points, acumen)
}

func (c *Cache) UpdatePoints(ctx context.Context, user, community string, points int) error {
	k := cacheKey{user, community}
	c.mu.Lock()
	if rec, ok := c.records[k]; ok {
		rec.Points = points
		c.records[k] = rec
	}
	c.mu.Unlock()
	return c.backing.UpdatePoints(ctx, user, community, points)
}

// Top always reads the backing store.
func (c *Cache) Top(ctx context.Context, community string, n int) ([]LeaderboardRow, error) {
	return c.backing.Top(ctx, community, n)
}

// LastPowerup always reads the backing store; the persisted date is what
// enforces the once-per-day grant.
func (c *Cache) LastPowerup(ctx context.Context, user, community string) (*time.Time, error) {
	return c.backing.LastPowerup(ctx, user, community)
}

func (c *Cache) SetLastPowerup(ctx context.Context, user, community string, at time.Time) error {
	if err := c.backing.SetLastPowerup(ctx, user, community, at); err != nil {
		return err
	}
	k := cacheKey{user, community}
	c.mu.Lock()
	if rec, ok := c.records[k]; ok {
		t := at
		rec.LastPowerup = &t
		c.records[k] = rec
	}
	c.mu.Unlock()
	return nil
}

// Forget drops a cached record so the next Get reads the backing store.
func (c *Cache) Forget(user, community string) {
	c.mu.Lock()
	delete(c.records, cacheKey{user, community})
	c.mu.Unlock()
}

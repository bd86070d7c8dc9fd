package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "u1", "g1")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.LastPowerup(ctx, "u1", "g1")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.SetLastPowerup(ctx, "u1", "g1", time.Now()), ErrNotFound)

	require.NoError(t, s.UpdatePoints(ctx, "u1", "g1", 20))
	rec, err := s.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, Record{Points: 20, Acumen: InitialAcumen}, rec)

	require.NoError(t, s.Upsert(ctx, "u1", "g1", 150, 61))
	require.NoError(t, s.UpdatePoints(ctx, "u1", "g1", 170))
	rec, err = s.Get(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 170, rec.Points)
	assert.Equal(t, 61, rec.Acumen)
	assert.Nil(t, rec.LastPowerup)

	at := time.Date(2024, 3, 9, 20, 15, 0, 0, time.UTC)
	require.NoError(t, s.SetLastPowerup(ctx, "u1", "g1", at))
	last, err := s.LastPowerup(ctx, "u1", "g1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, at.Equal(*last))

	require.NoError(t, s.Upsert(ctx, "u2", "g1", 300, 40))
	require.NoError(t, s.Upsert(ctx, "u3", "g1", 170, 70))
	require.NoError(t, s.Upsert(ctx, "u4", "g2", 999, 90))

	top, err := s.Top(ctx, "g1", 10)
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardRow{
		{Rank: 1, UserID: "u2", Points: 300, Acumen: 40},
		{Rank: 2, UserID: "u1", Points: 170, Acumen: 61},
		{Rank: 3, UserID: "u3", Points: 170, Acumen: 70},
	}, top)

	top, err = s.Top(ctx, "g1", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "u2", top[0].UserID)
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))
	testStore(t, s)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mongo", "x")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &SQL{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2 LIMIT $3", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ? LIMIT ?"))
	lite := &SQL{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

type countingStore struct {
	*Memory
	gets    int
	failing bool
}

func (c *countingStore) Get(ctx context.Context, user, community string) (Record, error) {
	c.gets++
	return c.Memory.Get(ctx, user, community)
}

func (c *countingStore) Upsert(ctx context.Context, user, community string, points, acumen int) error {
	if c.failing {
		return errors.New("store unreachable")
	}
	return c.Memory.Upsert(ctx, user, community, points, acumen)
}

func TestCacheReadsThroughOnce(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Memory: NewMemory()}
	require.NoError(t, backing.Memory.Upsert(ctx, "u", "g", 10, 30))
	c := NewCache(backing)

	for i := 0; i < 3; i++ {
		rec, err := c.Get(ctx, "u", "g")
		require.NoError(t, err)
		assert.Equal(t, 10, rec.Points)
	}
	assert.Equal(t, 1, backing.gets)

	// writes behind the cache's back are not observed
	require.NoError(t, backing.Memory.Upsert(ctx, "u", "g", 99, 30))
	rec, _ := c.Get(ctx, "u", "g")
	assert.Equal(t, 10, rec.Points)

	c.Forget("u", "g")
	rec, _ = c.Get(ctx, "u", "g")
	assert.Equal(t, 99, rec.Points)
}

func TestCacheStaysAuthoritativeWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Memory: NewMemory(), failing: true}
	c := NewCache(backing)

	assert.Error(t, c.Upsert(ctx, "u", "g", 42, 60))
	rec, err := c.Get(ctx, "u", "g")
	require.NoError(t, err)
	assert.Equal(t, Record{Points: 42, Acumen: 60}, rec)
	assert.Equal(t, 0, backing.gets)
}

func TestCacheNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Memory: NewMemory()}
	c := NewCache(backing)

	_, err := c.Get(ctx, "u", "g")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, c.UpdatePoints(ctx, "u", "g", 20))
	rec, err := c.Get(ctx, "u", "g")
	require.NoError(t, err)
	assert.Equal(t, Record{Points: 20, Acumen: InitialAcumen}, rec)
	assert.Equal(t, 2, backing.gets)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, c.SetLastPowerup(ctx, "u", "g", at))
	rec, _ = c.Get(ctx, "u", "g")
	require.NotNil(t, rec.LastPowerup)
	assert.True(t, at.Equal(*rec.LastPowerup))
}

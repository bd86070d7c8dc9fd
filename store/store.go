// Package store persists per-community player records: points, acumen and
// the date a player last activated a powerup.
package store

import (
	"context"
	"errors"
	"time"
)

// InitialAcumen is the acumen of a record created on first score.
const InitialAcumen = 50

// ErrNotFound is returned when a player has no record in a community.
var ErrNotFound = errors.New("store: record not found")

// Record is one player's standing in one community.
type Record struct {
	Points      int
	Acumen      int
	LastPowerup *time.Time
}

// LeaderboardRow is a ranked entry of Store.Top.
type LeaderboardRow struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Acumen int    `json:"acumen"`
}

// Store is keyed by (user, community). Every call touches a single record and
// implementations are only expected to be eventually consistent.
type Store interface {
	// Get returns ErrNotFound for players who never scored.
	Get(ctx context.Context, user, community string) (Record, error)
	// Upsert writes points and acumen, creating the record if needed.
	Upsert(ctx context.Context, user, community string, points, acumen int) error
	// UpdatePoints writes points only, creating the record with InitialAcumen if needed.
	UpdatePoints(ctx context.Context, user, community string, points int) error
	// Top returns the n highest scorers of a community, ranked from 1.
	Top(ctx context.Context, community string, n int) ([]LeaderboardRow, error)
	// LastPowerup returns ErrNotFound when there is no record; a nil time
	// means the player never activated one.
	LastPowerup(ctx context.Context, user, community string) (*time.Time, error)
	// SetLastPowerup returns ErrNotFound when there is no record.
	SetLastPowerup(ctx context.Context, user, community string, at time.Time) error
}

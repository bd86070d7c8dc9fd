package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heydabop/scramble/store"
)

type PowerupKind int

const (
	PowerupGranted PowerupKind = iota
	MustPlayFirst
	AlreadyUsed
)

// PowerupResult reports a powerup request and how many doubled turns the
// player now holds.
type PowerupResult struct {
	Kind  PowerupKind
	Turns int
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// ActivatePowerup grants a player doubled points for their next few scored
// answers, once per calendar day. The activation is persisted before any turns
// are granted.
func (e *Engine) ActivatePowerup(ctx context.Context, user, id string, now time.Time) (PowerupResult, error) {
	c, err := e.lookup(id)
	if err != nil {
		return PowerupResult{}, err
	}
	release, err := e.acquire(ctx, c)
	if err != nil {
		return PowerupResult{}, err
	}
	defer release()

	last, err := e.store.LastPowerup(ctx, user, id)
	if errors.Is(err, store.ErrNotFound) {
		return PowerupResult{Kind: MustPlayFirst}, nil
	}
	if err != nil {
		return PowerupResult{}, fmt.Errorf("reading last powerup: %w", err)
	}
	if last != nil && sameDay(*last, now, e.cfg.PowerupZone) {
		return PowerupResult{Kind: AlreadyUsed, Turns: c.powerups[user]}, nil
	}
	if err := e.store.SetLastPowerup(ctx, user, id, now); err != nil {
		return PowerupResult{}, fmt.Errorf("saving powerup: %w", err)
	}
	c.powerups[user] = e.cfg.PowerupTurns
	e.log.Info().Str("community", id).Str("user", user).Int("turns", e.cfg.PowerupTurns).Msg("powerup activated")
	return PowerupResult{Kind: PowerupGranted, Turns: e.cfg.PowerupTurns}, nil
}

// Leaderboard returns the community's top n players by points.
func (e *Engine) Leaderboard(ctx context.Context, id string, n int) ([]store.LeaderboardRow, error) {
	if _, err := e.lookup(id); err != nil {
		return nil, err
	}
	rows, err := e.store.Top(ctx, id, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard for %s: %w", id, err)
	}
	return rows, nil
}

// Player is one member's standing in a community.
func (e *Engine) Player(ctx context.Context, user, id string) (store.Record, error) {
	if _, err := e.lookup(id); err != nil {
		return store.Record{}, err
	}
	return e.store.Get(ctx, user, id)
}

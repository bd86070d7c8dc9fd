package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heydabop/scramble/game"
	"github.com/heydabop/scramble/store"
)

type fakeGame struct {
	rows  []store.LeaderboardRow
	snap  game.Snapshot
	err   error
	lastN int
}

func (f *fakeGame) Communities() []string { return []string{"g1", "g2"} }

func (f *fakeGame) Leaderboard(ctx context.Context, community string, n int) ([]store.LeaderboardRow, error) {
	f.lastN = n
	if community != "g1" {
		return nil, game.ErrUnknownCommunity
	}
	return f.rows, f.err
}

func (f *fakeGame) Snapshot(ctx context.Context, community string) (game.Snapshot, error) {
	if community != "g1" {
		return game.Snapshot{}, game.ErrUnknownCommunity
	}
	return f.snap, f.err
}

type fakePinger struct {
	err   error
	calls int
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.calls++
	return p.err
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, New(&fakeGame{}, nil).Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"communities":2}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHealthPingsDatabase(t *testing.T) {
	db := &fakePinger{}
	h := New(&fakeGame{}, db).Handler()
	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"communities":2,"database":"ok"}`, rec.Body.String())
	assert.Equal(t, 1, db.calls)

	db.err = errors.New("connection refused")
	rec = get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"ok":false,"communities":2,"database":"unreachable"}`, rec.Body.String())
	assert.Equal(t, 2, db.calls)
}

func TestLeaderboard(t *testing.T) {
	g := &fakeGame{rows: []store.LeaderboardRow{
		{Rank: 1, UserID: "u2", Points: 300, Acumen: 40},
		{Rank: 2, UserID: "u1", Points: 170, Acumen: 61},
	}}
	h := New(g, nil).Handler()

	rec := get(t, h, "/communities/g1/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []store.LeaderboardRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Equal(t, g.rows, rows)
	assert.Equal(t, 10, g.lastN)

	rec = get(t, h, "/communities/g1/leaderboard?n=3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, g.lastN)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/communities/g1/leaderboard?n=abc").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/communities/zz/leaderboard").Code)
}

func TestEmptyLeaderboardIsArray(t *testing.T) {
	rec := get(t, New(&fakeGame{}, nil).Handler(), "/communities/g1/leaderboard")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRound(t *testing.T) {
	started := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	g := &fakeGame{snap: game.Snapshot{
		Community: "g1",
		Phase:     game.PhaseHint1,
		RoundID:   "r1",
		Anagram:   "notse",
		Hint1Sent: true,
		StartedAt: &started,
		Cooldown:  240 * time.Second,
	}}
	rec := get(t, New(g, nil).Handler(), "/communities/g1/round")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hint1", body["phase"])
	assert.Equal(t, "notse", body["anagram"])
	assert.Equal(t, true, body["hint1Sent"])
	assert.NotContains(t, rec.Body.String(), "stone")
}

func TestErrors(t *testing.T) {
	h := New(&fakeGame{err: game.ErrBusy}, nil).Handler()
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/communities/g1/round").Code)

	h = New(&fakeGame{err: errors.New("db down")}, nil).Handler()
	rec := get(t, h, "/communities/g1/leaderboard")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

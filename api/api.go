// Package api serves a read-only JSON view of the running game: health,
// leaderboards and the state of each community's round. It never exposes an
// unsolved answer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/heydabop/scramble/game"
	"github.com/heydabop/scramble/store"
)

// Game is the part of game.Engine the API reads from.
type Game interface {
	Communities() []string
	Leaderboard(ctx context.Context, community string, n int) ([]store.LeaderboardRow, error)
	Snapshot(ctx context.Context, community string) (game.Snapshot, error)
}

// Pinger checks that the database answers. store.SQL satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	r    *chi.Mux
	game Game
	db   Pinger
}

// New builds the router. db may be nil, in which case /health skips the
// database check.
func New(g Game, db Pinger) *Server {
	s := &Server{r: chi.NewRouter(), game: g, db: db}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/health", s.handleHealth)
	s.r.Route("/communities", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, s.game.Communities())
		})
		r.Get("/{id}/leaderboard", s.handleLeaderboard)
		r.Get("/{id}/round", s.handleRound)
	})
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.r }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("status api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"ok": true, "communities": len(s.game.Communities())}
	if s.db == nil {
		writeJSON(w, http.StatusOK, body)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("database ping failed")
		body["ok"] = false
		body["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["database"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "bad_n")
			return
		}
		n = parsed
	}
	rows, err := s.game.Leaderboard(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []store.LeaderboardRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownCommunity):
		writeError(w, http.StatusNotFound, "unknown_community")
	case errors.Is(err, game.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, "busy")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("api request failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

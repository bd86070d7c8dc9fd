// Package game runs one anagram round at a time per community: picking words,
// timing hints and timeouts, judging guesses and scoring them.
//
// Every community owns a gate. The scheduler's ticks and incoming guesses both
// take it before touching round, streak or cooldown state, so a timeout and a
// correct answer arriving together are applied one after the other. Gates are
// per community; a slow store write in one community never holds up another.
package game

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/heydabop/scramble/acumen"
	"github.com/heydabop/scramble/cooldown"
	"github.com/heydabop/scramble/corpus"
	"github.com/heydabop/scramble/store"
)

var (
	// ErrBusy means the community gate could not be taken in time. Callers
	// skip the tick or guess; the next one retries.
	ErrBusy = errors.New("game: community busy")
	// ErrUnknownCommunity is returned for communities that were never registered.
	ErrUnknownCommunity = errors.New("game: unknown community")
)

const (
	AcumenGaussian = "gaussian"
	AcumenQueue    = "queue"
)

type Config struct {
	Cooldown cooldown.Config

	// AcumenSource picks the difficulty source: AcumenGaussian (default) or
	// the legacy AcumenQueue of recent scorers.
	AcumenSource string
	Gaussian     acumen.Gaussian

	LockTimeout time.Duration
	HistorySize int
	// BonusOdds is N in the 1-in-N chance of a bonus round.
	BonusOdds int

	Hint1After      time.Duration
	BonusHint1After time.Duration
	Hint2After      time.Duration
	Lifetime        time.Duration
	BonusLifetime   time.Duration
	// SlowLifetimeMargin is subtracted from cooldowns longer than Lifetime to
	// give slow communities longer rounds.
	SlowLifetimeMargin time.Duration

	// Decay is the per-second factor applied to a word's base points.
	Decay         float64
	PartialPoints int
	PowerupTurns  int

	RaceBase      time.Duration
	RacePerLetter time.Duration
	RaceCapital   time.Duration

	// PowerupZone decides which calendar day a powerup activation falls on.
	PowerupZone *time.Location
}

var DefaultConfig = Config{
	Cooldown:           cooldown.DefaultConfig,
	AcumenSource:       AcumenGaussian,
	Gaussian:           acumen.DefaultGaussian,
	LockTimeout:        time.Second,
	HistorySize:        200,
	BonusOdds:          100,
	Hint1After:         30 * time.Second,
	BonusHint1After:    15 * time.Second,
	Hint2After:         120 * time.Second,
	Lifetime:           240 * time.Second,
	BonusLifetime:      30 * time.Second,
	SlowLifetimeMargin: 60 * time.Second,
	Decay:              0.99816,
	PartialPoints:      20,
	PowerupTurns:       3,
	RaceBase:           200 * time.Millisecond,
	RacePerLetter:      40 * time.Millisecond,
	RaceCapital:        200 * time.Millisecond,
	PowerupZone:        time.FixedZone("IST", 5*3600+30*60),
}

type streak struct {
	user  string
	count int
}

type community struct {
	id   string
	gate *semaphore.Weighted

	// everything below is guarded by gate
	rand      *rand.Rand
	source    acumen.Source
	queue     *acumen.Queue
	round     *Round
	nextStart time.Time
	streak    streak
	cooldown  *cooldown.State
	history   *history
	powerups  map[string]int
}

// Engine is the registry of communities and the rules they play by.
type Engine struct {
	corpus *corpus.Corpus
	store  store.Store
	cfg    Config
	log    zerolog.Logger
	now    func() time.Time
	seed   func() int64

	mu          sync.RWMutex
	communities map[string]*community
}

type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSeed makes every community's randomness reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		n := seed
		e.seed = func() int64 { n++; return n }
	}
}

// New builds an engine over a corpus and a store. The store is wrapped in a
// store.Cache; player records are read from it at most once per process.
func New(c *corpus.Corpus, st store.Store, opts ...Option) *Engine {
	e := &Engine{
		corpus:      c,
		store:       store.NewCache(st),
		cfg:         DefaultConfig,
		log:         log.Logger,
		now:         time.Now,
		seed:        func() int64 { return time.Now().UnixNano() },
		communities: make(map[string]*community),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Register adds a community whose first round starts on the next tick.
// Registering twice is a no-op.
func (e *Engine) Register(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.communities[id]; ok {
		return
	}
	c := &community{
		id:        id,
		gate:      semaphore.NewWeighted(1),
		rand:      rand.New(rand.NewSource(e.seed())),
		nextStart: e.now(),
		cooldown:  cooldown.New(e.cfg.Cooldown),
		history:   newHistory(e.cfg.HistorySize),
		powerups:  make(map[string]int),
	}
	if e.cfg.AcumenSource == AcumenQueue {
		c.queue = acumen.NewQueue(0)
		c.source = c.queue
	} else {
		c.source = e.cfg.Gaussian
	}
	e.communities[id] = c
	e.log.Info().Str("community", id).Str("acumen", e.cfg.AcumenSource).Msg("community registered")
}

// Communities lists registered community IDs in order.
func (e *Engine) Communities() []string {
	e.mu.RLock()
	ids := make([]string, 0, len(e.communities))
	for id := range e.communities {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (e *Engine) lookup(id string) (*community, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.communities[id]
	if !ok {
		return nil, ErrUnknownCommunity
	}
	return c, nil
}

// acquire takes a community's gate, waiting at most LockTimeout. The returned
// func releases it.
func (e *Engine) acquire(ctx context.Context, c *community) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.LockTimeout)
	defer cancel()
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, ErrBusy
	}
	return func() { c.gate.Release(1) }, nil
}

// start begins a new round at, replacing whatever was there. Callers hold the
// community gate.
func (e *Engine) start(c *community, at time.Time) RoundStart {
	tier := acumen.Tier(c.source.Acumen(c.rand))
	entry := e.corpus.Sample(tier, c.rand)
	for i := 0; i < 20 && c.history.Contains(entry.Word); i++ {
		entry = e.corpus.Sample(tier, c.rand)
	}
	anagram := e.corpus.Shuffle(entry.Word, c.rand)
	bonus := e.cfg.BonusOdds > 0 && c.rand.Intn(e.cfg.BonusOdds) == 0
	hint1, hint2 := corpus.Hints(entry.Word, anagram)
	if tier == corpus.Tiers {
		hint2 = entry.Definition
	}

	r := newRound(entry.Word, anagram, entry.Definition, entry.Points, tier, bonus, hint1, hint2, at)
	c.round = r
	c.nextStart = time.Time{}
	c.history.Push(entry.Word)

	e.log.Info().Str("community", c.id).Str("round", r.ID).Int("tier", tier).Bool("bonus", bonus).Msg("round started")
	return RoundStart{Community: c.id, RoundID: r.ID, Anagram: anagram, Bonus: bonus, Tier: tier}
}

// lifetime is how long a round may run before it times out.
func (e *Engine) lifetime(c *community) time.Duration {
	if c.cooldown.Current > e.cfg.Lifetime {
		return c.cooldown.Current - e.cfg.SlowLifetimeMargin
	}
	if c.round.Bonus {
		return e.cfg.BonusLifetime
	}
	return e.cfg.Lifetime
}

// Tick advances a community's timers to now: it starts a pending round, sends
// due hints or times the round out. The returned events are for the connector
// and are produced after the gate is released.
func (e *Engine) Tick(ctx context.Context, id string, now time.Time) ([]Event, error) {
	c, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	release, err := e.acquire(ctx, c)
	if err != nil {
		return nil, err
	}
	defer release()

	if c.round == nil || !c.round.Live() {
		if !c.nextStart.IsZero() && !now.Before(c.nextStart) {
			return []Event{e.start(c, now)}, nil
		}
		return nil, nil
	}

	r := c.round
	elapsed := now.Sub(r.StartedAt)
	if elapsed >= e.lifetime(c) {
		c.streak = streak{}
		next := c.cooldown.Adjust(false)
		if err := r.fire(ctx, eventTimeout); err != nil {
			return nil, err
		}
		c.nextStart = now.Add(next)
		e.log.Info().Str("community", id).Str("round", r.ID).Dur("cooldown", next).Int("misses", c.cooldown.Misses).Msg("round timed out")
		return []Event{TimeoutEvent{
			Community:  id,
			RoundID:    r.ID,
			Word:       r.Word,
			Definition: r.Definition,
			Next:       next,
			Announced:  c.cooldown.Announced(next),
		}}, nil
	}

	var events []Event
	hint1After := e.cfg.Hint1After
	if r.Bonus {
		hint1After = e.cfg.BonusHint1After
	}
	if !r.Hint1Sent && elapsed >= hint1After {
		if err := r.fire(ctx, eventHint1); err != nil {
			return nil, err
		}
		r.Hint1Sent = true
		events = append(events, HintEvent{Community: id, RoundID: r.ID, Level: 1, Text: r.Hint1})
	}
	if !r.Bonus && r.Hint1Sent && !r.Hint2Sent && elapsed >= e.cfg.Hint2After {
		if err := r.fire(ctx, eventHint2); err != nil {
			return nil, err
		}
		r.Hint2Sent = true
		events = append(events, HintEvent{Community: id, RoundID: r.ID, Level: 2, Text: r.Hint2})
	}
	return events, nil
}

// Snapshot describes a community without revealing its answer.
func (e *Engine) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	c, err := e.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	release, err := e.acquire(ctx, c)
	if err != nil {
		return Snapshot{}, err
	}
	defer release()

	s := Snapshot{
		Community:  id,
		Phase:      PhaseEmpty,
		Cooldown:   c.cooldown.Current,
		Misses:     c.cooldown.Misses,
		StreakUser: c.streak.user,
		Streak:     c.streak.count,
	}
	if !c.nextStart.IsZero() {
		t := c.nextStart
		s.NextRoundAt = &t
	}
	if r := c.round; r != nil {
		started := r.StartedAt
		s.Phase = r.Phase()
		s.RoundID = r.ID
		s.Anagram = r.Anagram
		s.Bonus = r.Bonus
		s.Hint1Sent = r.Hint1Sent
		s.Hint2Sent = r.Hint2Sent
		s.StartedAt = &started
	}
	return s, nil
}

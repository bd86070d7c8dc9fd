package game

import (
	"context"
	"time"

	"github.com/looplab/fsm"
	uuid "github.com/satori/go.uuid"
)

// Phase is where a community's round is in its lifecycle.
type Phase string

const (
	PhaseEmpty   Phase = "empty"
	PhaseActive  Phase = "active"
	PhaseHint1   Phase = "hint1"
	PhaseHint2   Phase = "hint2"
	PhaseSolved  Phase = "solved"
	PhaseTimeout Phase = "timeout"
)

const (
	eventHint1   = "hint1"
	eventHint2   = "hint2"
	eventSolve   = "solve"
	eventTimeout = "timeout"
)

var live = []string{string(PhaseActive), string(PhaseHint1), string(PhaseHint2)}

func newPhases() *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseActive),
		fsm.Events{
			{Name: eventHint1, Src: []string{string(PhaseActive)}, Dst: string(PhaseHint1)},
			{Name: eventHint2, Src: []string{string(PhaseHint1)}, Dst: string(PhaseHint2)},
			{Name: eventSolve, Src: live, Dst: string(PhaseSolved)},
			{Name: eventTimeout, Src: live, Dst: string(PhaseTimeout)},
		},
		fsm.Callbacks{},
	)
}

type answer struct {
	user string
	at   time.Time
}

// Round is one word's worth of play in a community. A new Round replaces the
// old one wholesale when the next word starts.
type Round struct {
	ID         string
	Word       string
	Anagram    string
	Definition string
	Points     int
	Tier       int
	Hint1      string
	Hint2      string
	Bonus      bool
	StartedAt  time.Time

	Hint1Sent       bool
	Hint2Sent       bool
	CooldownApplied bool

	// Alternates already credited this round.
	Alternates map[string]struct{}

	// correct answers in arrival order, for the race window
	answers []answer
	phases  *fsm.FSM
}

func newRound(word, anagram, definition string, points, tier int, bonus bool, hint1, hint2 string, at time.Time) *Round {
	return &Round{
		ID:         uuid.NewV4().String(),
		Word:       word,
		Anagram:    anagram,
		Definition: definition,
		Points:     points,
		Tier:       tier,
		Hint1:      hint1,
		Hint2:      hint2,
		Bonus:      bonus,
		StartedAt:  at,
		Alternates: make(map[string]struct{}),
		phases:     newPhases(),
	}
}

func (r *Round) Phase() Phase {
	return Phase(r.phases.Current())
}

// Live reports whether the round still accepts hints, near misses and timeouts.
func (r *Round) Live() bool {
	switch r.Phase() {
	case PhaseActive, PhaseHint1, PhaseHint2:
		return true
	}
	return false
}

func (r *Round) fire(ctx context.Context, event string) error {
	return r.phases.Event(ctx, event)
}

func (r *Round) answered(user string) bool {
	for _, a := range r.answers {
		if a.user == user {
			return true
		}
	}
	return false
}

// history is a bounded FIFO of recently used words.
type history struct {
	words []string
	set   map[string]int
	next  int
	full  bool
}

func newHistory(size int) *history {
	if size <= 0 {
		size = 1
	}
	return &history{words: make([]string, size), set: make(map[string]int, size)}
}

func (h *history) Contains(word string) bool {
	return h.set[word] > 0
}

func (h *history) Push(word string) {
	if h.full {
		old := h.words[h.next]
		if h.set[old]--; h.set[old] <= 0 {
			delete(h.set, old)
		}
	}
	h.words[h.next] = word
	h.set[word]++
	h.next++
	if h.next == len(h.words) {
		h.next = 0
		h.full = true
	}
}

func (h *history) Len() int {
	if h.full {
		return len(h.words)
	}
	return h.next
}

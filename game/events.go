package game

import "time"

// Event is something the scheduler has to tell a community about.
type Event interface {
	event()
}

// RoundStart announces a new anagram.
type RoundStart struct {
	Community string
	RoundID   string
	Anagram   string
	Bonus     bool
	Tier      int
}

// HintEvent carries hint 1 or 2. For the hardest tier hint 2 is the
// definition.
type HintEvent struct {
	Community string
	RoundID   string
	Level     int
	Text      string
}

// TimeoutEvent ends a round nobody solved. Next is the real wait, Announced
// the one to show.
type TimeoutEvent struct {
	Community  string
	RoundID    string
	Word       string
	Definition string
	Next       time.Duration
	Announced  time.Duration
}

func (RoundStart) event()   {}
func (HintEvent) event()    {}
func (TimeoutEvent) event() {}

// Snapshot is a read-only view of a community for status pages. It never
// includes the answer.
type Snapshot struct {
	Community   string        `json:"community"`
	Phase       Phase         `json:"phase"`
	RoundID     string        `json:"roundId,omitempty"`
	Anagram     string        `json:"anagram,omitempty"`
	Bonus       bool          `json:"bonus"`
	Hint1Sent   bool          `json:"hint1Sent"`
	Hint2Sent   bool          `json:"hint2Sent"`
	StartedAt   *time.Time    `json:"startedAt,omitempty"`
	NextRoundAt *time.Time    `json:"nextRoundAt,omitempty"`
	Cooldown    time.Duration `json:"cooldownNs"`
	Misses      int           `json:"misses"`
	StreakUser  string        `json:"streakUser,omitempty"`
	Streak      int           `json:"streak"`
}

package acumen

import (
	"math/rand"
	"sync"
	"time"
)

const (
	queueWindow   = time.Hour
	queueFloor    = 20
	queueSwing    = 30
	queueCapacity = 20
)

type queueEntry struct {
	user   string
	acumen int
	at     time.Time
}

// Queue is the legacy difficulty source: it remembers the acumen of players
// who answered within the last hour and samples one of them, occasionally
// bouncing the pick up or down.
type Queue struct {
	mu       sync.Mutex
	entries  []queueEntry
	capacity int
	now      func() time.Time
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = queueCapacity
	}
	return &Queue{capacity: capacity, now: time.Now}
}

// Add records a scored answer, pruning entries older than an hour and the
// oldest entry once over capacity.
func (q *Queue) Add(user string, acumen int, at time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	kept := q.entries[:0]
	for _, e := range q.entries {
		if now.Sub(e.at) <= queueWindow {
			kept = append(kept, e)
		}
	}
	q.entries = append(kept, queueEntry{user: user, acumen: acumen, at: at})
	if len(q.entries) > q.capacity {
		q.entries = q.entries[len(q.entries)-q.capacity:]
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) Acumen(r *rand.Rand) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return queueFloor
	}
	v := q.entries[r.Intn(len(q.entries))].acumen
	if r.Float64() < 0.3 {
		v -= queueSwing
	}
	if r.Float64() < 0.4 {
		v += queueSwing
	}
	if v < queueFloor {
		return queueFloor
	}
	if v > Max {
		return Max
	}
	return v
}

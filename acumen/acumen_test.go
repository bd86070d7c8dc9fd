package acumen

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTier(t *testing.T) {
	cases := map[int]int{1: 1, 19: 1, 20: 1, 40: 2, 59: 2, 60: 3, 80: 4, 99: 4, 100: 5}
	for acumen, want := range cases {
		assert.Equal(t, want, Tier(acumen), "acumen %d", acumen)
	}
}

func TestUpdate(t *testing.T) {
	cases := []struct {
		name    string
		prev    int
		elapsed time.Duration
		want    int
	}{
		{"instant answer", 50, 0, 56},
		{"thirty seconds", 50, 30 * time.Second, 40},
		{"very slow saturates", 50, 1000 * time.Second, 26},
		{"novice quick bonus", 20, 10 * time.Second, 28},
		{"clamped high", 100, 0, 100},
		{"clamped low", 1, 10000 * time.Second, 1},
		{"negative elapsed treated as zero", 50, -5 * time.Second, 56},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Update(tc.prev, tc.elapsed))
		})
	}
}

func TestUpdateAlwaysInRange(t *testing.T) {
	for prev := -10; prev <= 120; prev += 7 {
		for secs := 0; secs < 600; secs += 13 {
			v := Update(prev, time.Duration(secs)*time.Second)
			require.GreaterOrEqual(t, v, Min)
			require.LessOrEqual(t, v, Max)
		}
	}
}

func TestGaussianSkewsToMiddleTiers(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	counts := map[int]int{}
	for i := 0; i < 5000; i++ {
		a := DefaultGaussian.Acumen(r)
		require.GreaterOrEqual(t, a, Min)
		require.LessOrEqual(t, a, Max)
		counts[Tier(a)]++
	}
	assert.Greater(t, counts[2]+counts[3], counts[4]+counts[5])
	assert.Greater(t, counts[2], counts[5])
}

func TestQueue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue(3)
	q.now = func() time.Time { return now }
	r := rand.New(rand.NewSource(11))

	assert.Equal(t, 20, q.Acumen(r), "empty queue falls back to the floor")

	q.Add("old", 90, now.Add(-2*time.Hour))
	q.Add("a", 60, now)
	assert.Equal(t, 1, q.Len(), "entries older than an hour are pruned on add")
	q.Add("b", 60, now)
	q.Add("c", 60, now)
	q.Add("d", 60, now)
	assert.Equal(t, 3, q.Len())

	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := q.Acumen(r)
		require.GreaterOrEqual(t, v, 20)
		require.LessOrEqual(t, v, 100)
		seen[v] = true
	}
	// 60, 60-30, 60+30 and 60-30+30 are the only reachable values
	for v := range seen {
		assert.Contains(t, []int{30, 60, 90}, v)
	}
	assert.True(t, seen[30] && seen[60] && seen[90])
}

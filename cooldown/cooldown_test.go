package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutsGrowThenSleep(t *testing.T) {
	s := New(DefaultConfig)
	assert.Equal(t, 312*time.Second, s.Adjust(false))
	assert.Equal(t, 405*time.Second, s.Adjust(false))
	assert.Equal(t, 526*time.Second, s.Adjust(false))
	assert.False(t, s.Sleeping())

	assert.Equal(t, 900*time.Second, s.Adjust(false), "fourth miss enters sleep mode")
	assert.Equal(t, 4, s.Misses)
	assert.True(t, s.Sleeping())
	assert.Equal(t, 60*time.Second, s.Announced(s.Current))

	assert.Equal(t, 900*time.Second, s.Adjust(false), "stays asleep on further misses")

	assert.Equal(t, 240*time.Second, s.Adjust(true), "waking goes back to base")
	assert.Equal(t, 2, s.Misses)
	assert.Equal(t, 120*time.Second, s.Adjust(true))
	assert.Equal(t, 0, s.Misses)
}

func TestCorrectAnswersHalveDownToMin(t *testing.T) {
	s := New(DefaultConfig)
	want := []time.Duration{120, 60, 30, 15, 15}
	for _, w := range want {
		assert.Equal(t, w*time.Second, s.Adjust(true))
	}
	assert.Equal(t, 45*time.Second, s.Announced(45*time.Second))
}

func TestGrowthCappedAtMax(t *testing.T) {
	cfg := DefaultConfig
	cfg.SleepAfter = 100
	s := New(cfg)
	for i := 0; i < 20; i++ {
		s.Adjust(false)
	}
	assert.Equal(t, cfg.Max, s.Current)
}

func TestAlwaysWithinBounds(t *testing.T) {
	s := New(DefaultConfig)
	pattern := []bool{false, true, false, false, false, false, false, true, true, true, true, true, false}
	for i := 0; i < 10; i++ {
		for _, correct := range pattern {
			d := s.Adjust(correct)
			require.GreaterOrEqual(t, d, DefaultConfig.Min)
			require.LessOrEqual(t, d, DefaultConfig.Max)
		}
	}
}

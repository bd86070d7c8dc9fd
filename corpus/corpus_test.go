package corpus

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBoundaries = []int{2, 4, 6, 8}

func testEntries() []Entry {
	words := []string{"cat", "dog", "stone", "plane", "tiger", "house", "garden", "silver", "quartz", "zephyr"}
	out := make([]Entry, len(words))
	for i, w := range words {
		out[i] = Entry{Word: w, Points: 10 * (i + 1), Definition: "def of " + w}
	}
	return out
}

func TestNewPartitionsTiers(t *testing.T) {
	c, err := New(testEntries(), []string{"tones", "notes", "act"}, testBoundaries)
	require.NoError(t, err)

	assert.Equal(t, 10, c.Len())
	assert.Equal(t, []string{"cat", "dog"}, words(c.Tier(1)))
	assert.Equal(t, []string{"stone", "plane"}, words(c.Tier(2)))
	assert.Equal(t, []string{"quartz", "zephyr"}, words(c.Tier(5)))
	assert.Equal(t, c.Tier(1), c.Tier(-3))
	assert.Equal(t, c.Tier(5), c.Tier(9))
	assert.True(t, c.IsAlternate("TONES"))
	assert.False(t, c.IsAlternate("stone"))
}

func TestNewEmptyTierIsConfigurationError(t *testing.T) {
	_, err := New(testEntries()[:7], nil, testBoundaries)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "tier 5 is empty")
}

func TestNewRejectsUnshufflableWords(t *testing.T) {
	entries := testEntries()
	entries[0].Word = "aaa"
	_, err := New(entries, nil, testBoundaries)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	// "ab" has one other arrangement, and it is a listed alternate
	entries[0].Word = "ab"
	_, err = New(entries, []string{"ba"}, testBoundaries)
	require.True(t, errors.As(err, &cfgErr))
}

func TestNewRejectsBadBoundaries(t *testing.T) {
	_, err := New(testEntries(), nil, []int{1, 2})
	assert.Error(t, err)
	_, err = New(testEntries(), nil, []int{4, 2, 6, 8})
	assert.Error(t, err)
}

func TestShuffleNeverRevealsAnswer(t *testing.T) {
	c, err := New(testEntries(), []string{"tones", "notes", "onset", "seton", "steno", "act"}, testBoundaries)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(7))
	for tier := 1; tier <= Tiers; tier++ {
		for _, e := range c.Tier(tier) {
			for i := 0; i < 200; i++ {
				s := c.Shuffle(e.Word, r)
				require.NotEqual(t, e.Word, s)
				require.False(t, c.IsAlternate(s), "%s shuffled into alternate %s", e.Word, s)
				require.Equal(t, sortLetters(e.Word), sortLetters(s))
			}
		}
	}
}

func TestSampleStaysInTier(t *testing.T) {
	c, err := New(testEntries(), nil, testBoundaries)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		e := c.Sample(2, r)
		seen[e.Word] = true
	}
	assert.Equal(t, map[string]bool{"stone": true, "plane": true}, seen)
}

func TestHints(t *testing.T) {
	h1, h2 := Hints("stone", "notes")
	assert.Equal(t, "**s**note", h1)
	assert.Equal(t, "**s**not**e**", h2)

	h1, h2 = Hints("tiger", "regit")
	assert.Equal(t, "**t**regi", h1)
	assert.Equal(t, "**t**egi**r**", h2)

	// same first and last letter
	h1, h2 = Hints("stress", "tsress")
	assert.Equal(t, "**s**tress", h1)
	assert.Equal(t, "**s**tres**s**", h2)
}

func TestReadEntries(t *testing.T) {
	src := "Word,Score,Gloss\nstone,120,\"a small rock, weathered\"\nplane,80,a flat surface\n"
	entries, err := ReadEntries(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Word: "stone", Points: 120, Definition: "a small rock, weathered"}, entries[0])

	_, err = ReadEntries(strings.NewReader("Word,Points\nstone,1\n"))
	assert.Error(t, err)
	_, err = ReadEntries(strings.NewReader("Word,Score,Gloss\nstone,many,rock\n"))
	assert.Error(t, err)
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("# alternates\nTones\n\n  notes  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"tones", "notes"}, lines)
}

func words(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Word
	}
	return out
}

package corpus

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Tiers is the number of difficulty buckets, easiest first.
const Tiers = 5

// DefaultBoundaries are the row indexes where tiers 2 through 5 begin in the
// difficulty-sorted word list.
var DefaultBoundaries = []int{1025, 5924, 14915, 19100}

// Entry is a single scored word.
type Entry struct {
	Word       string
	Points     int
	Definition string
}

// ConfigurationError reports a corpus that cannot run a game. It is fatal at startup.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "corpus: " + e.Reason
}

// Corpus is the immutable word table split into tiers, plus the set of real
// words that are permutations of some answer but are not the answer.
type Corpus struct {
	tiers      [Tiers][]Entry
	alternates map[string]struct{}
}

// New partitions entries, which must already be sorted by difficulty, into
// tiers using the given boundaries.
func New(entries []Entry, alternates []string, boundaries []int) (*Corpus, error) {
	if len(boundaries) != Tiers-1 {
		return nil, &ConfigurationError{fmt.Sprintf("need %d tier boundaries, got %d", Tiers-1, len(boundaries))}
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] < boundaries[i-1] {
			return nil, &ConfigurationError{fmt.Sprintf("tier boundaries not ascending: %v", boundaries)}
		}
	}

	c := &Corpus{alternates: make(map[string]struct{}, len(alternates))}
	altByLetters := make(map[string]int)
	for _, a := range alternates {
		a = normalize(a)
		if a == "" || !isAlpha(a) {
			continue
		}
		if _, dup := c.alternates[a]; dup {
			continue
		}
		c.alternates[a] = struct{}{}
		altByLetters[sortLetters(a)]++
	}

	for i, e := range entries {
		word := normalize(e.Word)
		if !isAlpha(word) {
			return nil, &ConfigurationError{fmt.Sprintf("row %d: %q is not alphabetic", i, e.Word)}
		}
		forbidden := 1 + altByLetters[sortLetters(word)]
		if _, isAlt := c.alternates[word]; isAlt {
			forbidden--
		}
		if permutations(word, forbidden) <= forbidden {
			return nil, &ConfigurationError{fmt.Sprintf("row %d: %q has no shuffle that hides it", i, word)}
		}
		t := tierOf(i, boundaries)
		c.tiers[t-1] = append(c.tiers[t-1], Entry{Word: word, Points: e.Points, Definition: e.Definition})
	}

	for t := range c.tiers {
		if len(c.tiers[t]) == 0 {
			return nil, &ConfigurationError{fmt.Sprintf("tier %d is empty", t+1)}
		}
	}
	return c, nil
}

func tierOf(index int, boundaries []int) int {
	for i, b := range boundaries {
		if index < b {
			return i + 1
		}
	}
	return Tiers
}

// Sample returns a uniformly random entry from tier, clamped to [1, Tiers].
func (c *Corpus) Sample(tier int, r *rand.Rand) Entry {
	words := c.tiers[clampTier(tier)-1]
	return words[r.Intn(len(words))]
}

// Tier returns the entries of a tier. The slice must not be modified.
func (c *Corpus) Tier(tier int) []Entry {
	return c.tiers[clampTier(tier)-1]
}

// Len is the total number of entries.
func (c *Corpus) Len() int {
	n := 0
	for _, t := range c.tiers {
		n += len(t)
	}
	return n
}

// IsAlternate reports whether word is a listed alternate answer.
func (c *Corpus) IsAlternate(word string) bool {
	_, ok := c.alternates[normalize(word)]
	return ok
}

// Shuffle permutes the letters of word until the result is neither the word
// itself nor a listed alternate, so the anagram never gives the answer away.
// New rejects words for which no such permutation exists.
func (c *Corpus) Shuffle(word string, r *rand.Rand) string {
	letters := []byte(word)
	for {
		r.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
		s := string(letters)
		if s != word && !c.IsAlternate(s) {
			return s
		}
	}
}

// Hints builds the two progressive hints for a round. The first moves the
// answer's first letter to the front of the anagram in bold; the second also
// moves its last letter to the end.
func Hints(word, anagram string) (string, string) {
	if len(word) < 2 {
		return anagram, anagram
	}
	first, last := word[0], word[len(word)-1]
	rest := removeOnce([]byte(anagram), first)
	hint1 := "**" + string(first) + "**" + string(rest)
	rest = removeOnce(rest, last)
	hint2 := "**" + string(first) + "**" + string(rest) + "**" + string(last) + "**"
	return hint1, hint2
}

func removeOnce(letters []byte, b byte) []byte {
	out := make([]byte, 0, len(letters))
	removed := false
	for _, l := range letters {
		if l == b && !removed {
			removed = true
			continue
		}
		out = append(out, l)
	}
	return out
}

// permutations counts distinct letter arrangements of word, stopping early
// once the count exceeds limit.
func permutations(word string, limit int) int {
	var counts [26]int
	for i := 0; i < len(word); i++ {
		counts[word[i]-'a']++
	}
	// multinomial n! / prod(k!), built incrementally so it stays integral
	total, placed := 1, 0
	for _, k := range counts {
		for j := 1; j <= k; j++ {
			placed++
			total = total * placed / j
			if total > limit {
				return total
			}
		}
	}
	return total
}

func sortLetters(w string) string {
	b := []byte(w)
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	return string(b)
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func clampTier(t int) int {
	if t < 1 {
		return 1
	}
	if t > Tiers {
		return Tiers
	}
	return t
}

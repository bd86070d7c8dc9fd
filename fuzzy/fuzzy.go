// Package fuzzy tells near misses apart from unrelated guesses.
package fuzzy

// Kind classifies a wrong guess.
type Kind int

const (
	// Unrelated guesses are more than one edit away and get no response.
	Unrelated Kind = iota
	// Letter is a one-edit miss where the offending letter can be named.
	Letter
	// Typo is a one-edit miss with no single letter to point at, such as two
	// swapped neighbours.
	Typo
)

func (k Kind) String() string {
	switch k {
	case Letter:
		return "letter"
	case Typo:
		return "typo"
	default:
		return "unrelated"
	}
}

// Outcome is the result of Check. Letter is only set for Kind Letter.
type Outcome struct {
	Kind   Kind
	Letter byte
}

// Distance is the optimal string alignment distance between a and b:
// insertions, deletions and substitutions cost 1, and so does swapping two
// adjacent letters.
func Distance(a, b string) int {
	la, lb := len(a), len(b)
	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}
	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[la][lb]
}

// Check compares a wrong guess against the target. Exact matches are the
// caller's business and come back Unrelated.
func Check(guess, target string) Outcome {
	if Distance(guess, target) != 1 {
		return Outcome{Kind: Unrelated}
	}

	if len(guess) == len(target) {
		diff := -1
		for i := 0; i < len(guess); i++ {
			if guess[i] != target[i] {
				if diff >= 0 {
					// second mismatch means an adjacent swap
					return Outcome{Kind: Typo}
				}
				diff = i
			}
		}
		return Outcome{Kind: Letter, Letter: target[diff]}
	}

	long, short := guess, target
	if len(short) > len(long) {
		long, short = short, long
	}
	for i := 0; i < len(short); i++ {
		if long[i] != short[i] {
			return Outcome{Kind: Letter, Letter: long[i]}
		}
	}
	return Outcome{Kind: Letter, Letter: long[len(long)-1]}
}

// IsPermutation reports whether a and b use exactly the same letters.
func IsPermutation(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var counts [256]int
	for i := 0; i < len(a); i++ {
		counts[a[i]]++
		counts[b[i]]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

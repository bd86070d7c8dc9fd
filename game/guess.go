package game

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/heydabop/scramble/acumen"
	"github.com/heydabop/scramble/fuzzy"
	"github.com/heydabop/scramble/store"
)

// Guess is one chat message seen in a community with a live game.
type Guess struct {
	User      string
	Community string
	Text      string
	At        time.Time
}

type ResultKind int

const (
	Ignored ResultKind = iota
	LetterHint
	TypoHint
	PartialCredit
	AlreadyGuessed
	Scored
)

func (k ResultKind) String() string {
	switch k {
	case LetterHint:
		return "letter-hint"
	case TypoHint:
		return "typo-hint"
	case PartialCredit:
		return "partial-credit"
	case AlreadyGuessed:
		return "already-guessed"
	case Scored:
		return "scored"
	}
	return "ignored"
}

// Result is what a guess earned. Only the fields for its Kind are set:
// Letter for LetterHint, Points and Total for PartialCredit, everything else
// for Scored.
type Result struct {
	Kind   ResultKind
	Letter byte
	Word   string

	Points      int
	Total       int
	StreakBonus int
	Streak      int
	Acumen      int
	Doubled     bool
	Multiplier  float64
	// First is set on the answer that resolved the round. Next and Announced
	// are the wait before the following round.
	First     bool
	Next      time.Duration
	Announced time.Duration
}

// normalizeGuess keeps only letters, reporting whether the message started
// with a capital letter.
func normalizeGuess(text string) (string, bool) {
	var b strings.Builder
	capital := false
	for i, r := range strings.TrimSpace(text) {
		if i == 0 && unicode.IsUpper(r) {
			capital = true
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String(), capital
}

func streakBonus(streak int) int {
	switch {
	case streak > 0 && streak%5 == 0:
		return 42 * (streak / 5)
	case streak > 5:
		return 5
	}
	return 0
}

// raceWindow is how long after the first correct answer a later one still
// earns half credit. Longer words and capitalized guesses get more time.
func (e *Engine) raceWindow(word string, capital bool) time.Duration {
	w := e.cfg.RaceBase + time.Duration(len(word))*e.cfg.RacePerLetter
	if capital {
		w += e.cfg.RaceCapital
	}
	return w
}

// Guess judges a message against the community's current round. Only
// single-word messages count; anything else is chat.
func (e *Engine) Guess(ctx context.Context, g Guess) (Result, error) {
	if len(strings.Fields(g.Text)) != 1 {
		return Result{}, nil
	}
	text, capital := normalizeGuess(g.Text)
	if text == "" {
		return Result{}, nil
	}
	c, err := e.lookup(g.Community)
	if err != nil {
		return Result{}, err
	}
	release, err := e.acquire(ctx, c)
	if err != nil {
		return Result{}, err
	}
	defer release()

	r := c.round
	if r == nil {
		return Result{}, nil
	}
	if text == r.Word {
		return e.score(ctx, c, g, capital)
	}
	if !r.Live() {
		return Result{}, nil
	}

	if fuzzy.IsPermutation(text, r.Word) && e.corpus.IsAlternate(text) {
		if _, ok := r.Alternates[text]; ok {
			return Result{Kind: AlreadyGuessed}, nil
		}
		r.Alternates[text] = struct{}{}
		return e.partialCredit(ctx, c, g), nil
	}

	switch o := fuzzy.Check(text, r.Word); o.Kind {
	case fuzzy.Letter:
		return Result{Kind: LetterHint, Letter: o.Letter}, nil
	case fuzzy.Typo:
		return Result{Kind: TypoHint}, nil
	}
	return Result{}, nil
}

// record loads a player's record, treating unknown players as new. The bool
// is false when the store could not be read and nothing should be written
// back.
func (e *Engine) record(ctx context.Context, user, community string) (store.Record, bool) {
	rec, err := e.store.Get(ctx, user, community)
	if errors.Is(err, store.ErrNotFound) {
		return store.Record{Acumen: store.InitialAcumen}, true
	}
	if err != nil {
		e.log.Error().Err(err).Str("user", user).Str("community", community).Msg("reading player record")
		return store.Record{Acumen: store.InitialAcumen}, false
	}
	return rec, true
}

func (e *Engine) partialCredit(ctx context.Context, c *community, g Guess) Result {
	rec, ok := e.record(ctx, g.User, c.id)
	total := rec.Points + e.cfg.PartialPoints
	if ok {
		if err := e.store.UpdatePoints(ctx, g.User, c.id, total); err != nil {
			e.log.Error().Err(err).Str("user", g.User).Str("community", c.id).Msg("saving partial credit")
		}
	}
	return Result{Kind: PartialCredit, Points: e.cfg.PartialPoints, Total: total}
}

func (e *Engine) score(ctx context.Context, c *community, g Guess, capital bool) (Result, error) {
	r := c.round
	// the word has been shown to everyone
	if r.Phase() == PhaseTimeout || r.answered(g.User) {
		return Result{}, nil
	}

	first := len(r.answers) == 0
	multiplier := 1.0
	if !first {
		if g.At.Sub(r.answers[0].at) > e.raceWindow(r.Word, capital) {
			return Result{}, nil
		}
		multiplier = 0.5
	}
	r.answers = append(r.answers, answer{user: g.User, at: g.At})

	res := Result{Kind: Scored, Word: r.Word, Multiplier: multiplier, First: first}
	if first {
		if c.streak.user == g.User {
			c.streak.count++
		} else {
			c.streak = streak{user: g.User, count: 1}
		}
		res.Streak = c.streak.count
		res.StreakBonus = streakBonus(c.streak.count)
	}

	powerup := 1.0
	if c.powerups[g.User] > 0 {
		c.powerups[g.User]--
		powerup = 2
		res.Doubled = true
	}

	elapsed := g.At.Sub(r.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	decayed := float64(r.Points) * math.Pow(e.cfg.Decay, elapsed.Seconds())
	res.Points = int(math.Floor((decayed + float64(res.StreakBonus)) * powerup * multiplier))

	rec, ok := e.record(ctx, g.User, c.id)
	res.Total = rec.Points + res.Points
	res.Acumen = acumen.Update(rec.Acumen, elapsed)
	if ok {
		if err := e.store.Upsert(ctx, g.User, c.id, res.Total, res.Acumen); err != nil {
			e.log.Error().Err(err).Str("user", g.User).Str("community", c.id).Int("points", res.Points).Msg("saving score")
		}
	}
	if c.queue != nil {
		c.queue.Add(g.User, res.Acumen, g.At)
	}

	if first {
		if err := r.fire(ctx, eventSolve); err != nil {
			return Result{}, err
		}
		if !r.CooldownApplied {
			r.CooldownApplied = true
			res.Next = c.cooldown.Adjust(true)
			res.Announced = c.cooldown.Announced(res.Next)
			c.nextStart = g.At.Add(res.Next)
		}
	}

	e.log.Info().
		Str("community", c.id).
		Str("round", r.ID).
		Str("user", g.User).
		Int("points", res.Points).
		Int("total", res.Total).
		Int("streak", res.Streak).
		Float64("multiplier", multiplier).
		Msg("answer scored")
	return res, nil
}

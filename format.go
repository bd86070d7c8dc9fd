package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gyuho/goling/similar"

	"github.com/heydabop/scramble/game"
	"github.com/heydabop/scramble/store"
)

// regionalIndicator is the reaction emoji for a lowercase letter.
func regionalIndicator(letter byte) string {
	if letter < 'a' || letter > 'z' {
		return "❓"
	}
	return string(rune(0x1F1E6 + int(letter-'a')))
}

// bouquet grows by one flower per 300 points.
func bouquet(points int) string {
	if points < 0 {
		points = 0
	}
	return strings.Repeat("💐", points/300+1)
}

func formatDuration(d time.Duration) string {
	if d < 120*time.Second {
		return fmt.Sprintf("%.f seconds", d.Seconds())
	} else if d < 120*time.Minute {
		return fmt.Sprintf("%.f minutes", d.Minutes())
	}
	return fmt.Sprintf("%.f hours", d.Hours())
}

func formatRoundStart(ev game.RoundStart) string {
	letters := strings.ToUpper(ev.Anagram)
	if ev.Bonus {
		return fmt.Sprintf(":star2: **BONUS ROUND** :star2: Quick, unscramble **%s**", letters)
	}
	return fmt.Sprintf("Unscramble: **%s**", letters)
}

func formatHint(ev game.HintEvent) string {
	return fmt.Sprintf("Hint %d: %s", ev.Level, ev.Text)
}

func formatTimeout(ev game.TimeoutEvent) string {
	msg := fmt.Sprintf("Time's up! The word was **%s**", ev.Word)
	if ev.Definition != "" {
		msg += ": " + ev.Definition
	}
	return msg + fmt.Sprintf("\nNext word in %s.", formatDuration(ev.Announced))
}

func formatScore(mention string, res game.Result) string {
	var b strings.Builder
	if res.First {
		fmt.Fprintf(&b, "%s got it! The word was **%s**. +%d points", mention, res.Word, res.Points)
	} else {
		fmt.Fprintf(&b, "%s also got it! +%d points", mention, res.Points)
	}
	if res.Doubled {
		b.WriteString(" (doubled)")
	}
	fmt.Fprintf(&b, ", %d total %s", res.Total, bouquet(res.Points))
	if res.Streak > 1 {
		fmt.Fprintf(&b, "\n:fire: %d in a row", res.Streak)
		if res.StreakBonus > 0 {
			fmt.Fprintf(&b, " (+%d streak bonus)", res.StreakBonus)
		}
	}
	if res.First {
		fmt.Fprintf(&b, "\nNext word in %s.", formatDuration(res.Announced))
	}
	return b.String()
}

func formatPowerup(res game.PowerupResult) string {
	switch res.Kind {
	case game.MustPlayFirst:
		return "Answer at least one word before claiming your daily powerup."
	case game.AlreadyUsed:
		return fmt.Sprintf("You've already used today's powerup. %d doubled turns left.", res.Turns)
	}
	return fmt.Sprintf(":zap: Powerup active! Your next %d answers score double.", res.Turns)
}

func leaderboardEmbed(rows []store.LeaderboardRow, name func(string) string) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%d. %s: %d points (acumen %d)", row.Rank, name(row.UserID), row.Points, row.Acumen))
	}
	return &discordgo.MessageEmbed{
		Title:       "Leaderboard",
		Description: strings.Join(lines, "\n"),
		Color:       0xF1C40F,
	}
}

// mostSimilarUser picks the member whose username best matches name. Members
// whose name contains it win over the rest.
func mostSimilarUser(members []*discordgo.Member, name string) (string, error) {
	lowerName := strings.ToLower(name)
	nameBytes := []byte(lowerName)
	var containing []*discordgo.User
	for _, member := range members {
		if user := member.User; user != nil && strings.Contains(strings.ToLower(user.Username), lowerName) {
			containing = append(containing, user)
		}
	}
	if len(containing) == 1 {
		return containing[0].ID, nil
	}

	best := func(users []*discordgo.User) string {
		maxSim := 0.0
		maxUserID := ""
		for _, user := range users {
			if sim := similar.Cosine([]byte(strings.ToLower(user.Username)), nameBytes); sim > maxSim {
				maxSim = sim
				maxUserID = user.ID
			}
		}
		return maxUserID
	}
	if id := best(containing); id != "" {
		return id, nil
	}
	everyone := make([]*discordgo.User, 0, len(members))
	for _, member := range members {
		if member.User != nil {
			everyone = append(everyone, member.User)
		}
	}
	if id := best(everyone); id != "" {
		return id, nil
	}
	return "", errors.New("No similar user found")
}

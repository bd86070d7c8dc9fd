package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/heydabop/scramble/game"
	"github.com/heydabop/scramble/store"
)

type Command func(*discordgo.Session, *discordgo.MessageCreate, []string) (string, error)

// Bot connects the game engine to Discord: messages in a guild's game channel
// become guesses or commands, and scheduler events become channel posts.
type Bot struct {
	session  *discordgo.Session
	engine   *game.Engine
	channels map[string]string
}

func newBot(session *discordgo.Session, engine *game.Engine, channels map[string]string) *Bot {
	return &Bot{session: session, engine: engine, channels: channels}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func (b *Bot) send(community, content string) {
	channel, ok := b.channels[community]
	if !ok {
		return
	}
	if _, err := b.session.ChannelMessageSend(channel, content); err != nil {
		log.Error().Err(err).Str("community", community).Msg("sending message")
	}
}

func (b *Bot) RoundStarted(ctx context.Context, ev game.RoundStart) {
	b.send(ev.Community, formatRoundStart(ev))
}

func (b *Bot) Hint(ctx context.Context, ev game.HintEvent) {
	b.send(ev.Community, formatHint(ev))
}

func (b *Bot) TimedOut(ctx context.Context, ev game.TimeoutEvent) {
	b.send(ev.Community, formatTimeout(ev))
}

func (b *Bot) makeMessageCreate() func(*discordgo.Session, *discordgo.MessageCreate) {
	commandRegex := regexp.MustCompile(`^;(\w+)\s*(.*)$`)
	funcMap := map[string]Command{
		"top":         Command(b.top),
		"leaderboard": Command(b.top),
		"daily":       Command(b.daily),
		"rank":        Command(b.rank),
		"help":        Command(b.help),
	}

	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
			return
		}
		if channel, ok := b.channels[m.GuildID]; !ok || channel != m.ChannelID {
			return
		}

		if match := commandRegex.FindStringSubmatch(m.Content); match != nil {
			cmd, valid := funcMap[strings.ToLower(match[1])]
			if !valid {
				return
			}
			args := strings.Fields(match[2])
			reply, err := cmd(s, m, args)
			if err != nil {
				s.ChannelMessageSend(m.ChannelID, ":warning: `"+err.Error()+"`")
				log.Error().Err(err).Str("command", match[1]).Strs("args", args).Msg("command failed")
				return
			}
			if len(reply) > 0 {
				if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
					log.Error().Err(err).Msg("sending reply")
				}
			}
			return
		}

		b.guess(s, m)
	}
}

func (b *Bot) guess(s *discordgo.Session, m *discordgo.MessageCreate) {
	at := m.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	ctx, cancel := requestContext()
	defer cancel()
	res, err := b.engine.Guess(ctx, game.Guess{User: m.Author.ID, Community: m.GuildID, Text: m.Content, At: at})
	if errors.Is(err, game.ErrBusy) {
		log.Debug().Str("community", m.GuildID).Str("user", m.Author.ID).Msg("community busy, guess dropped")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("community", m.GuildID).Msg("judging guess")
		return
	}

	var reply string
	switch res.Kind {
	case game.LetterHint:
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, regionalIndicator(res.Letter)); err != nil {
			log.Error().Err(err).Msg("adding letter reaction")
		}
		return
	case game.TypoHint:
		reply = "So close! Check your spelling."
	case game.PartialCredit:
		reply = fmt.Sprintf("That's a word, just not the one I'm thinking of. +%d points (%d total)", res.Points, res.Total)
	case game.AlreadyGuessed:
		reply = "Someone already found that one."
	case game.Scored:
		if _, err := s.ChannelMessageSend(m.ChannelID, formatScore("<@"+m.Author.ID+">", res)); err != nil {
			log.Error().Err(err).Msg("sending score")
		}
		return
	default:
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		log.Error().Err(err).Msg("sending reply")
	}
}

func (b *Bot) top(s *discordgo.Session, m *discordgo.MessageCreate, args []string) (string, error) {
	limit := 10
	if len(args) > 0 {
		var err error
		limit, err = strconv.Atoi(args[0])
		if err != nil || limit <= 0 || limit > 25 {
			return "", errors.New("Usage: ;top [1-25]")
		}
	}
	ctx, cancel := requestContext()
	defer cancel()
	rows, err := b.engine.Leaderboard(ctx, m.GuildID, limit)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "Nobody has scored yet.", nil
	}
	embed := leaderboardEmbed(rows, func(id string) string {
		if user, err := s.User(id); err == nil {
			return user.Username
		}
		return id
	})
	_, err = s.ChannelMessageSendEmbed(m.ChannelID, embed)
	return "", err
}

func (b *Bot) daily(s *discordgo.Session, m *discordgo.MessageCreate, args []string) (string, error) {
	ctx, cancel := requestContext()
	defer cancel()
	res, err := b.engine.ActivatePowerup(ctx, m.Author.ID, m.GuildID, time.Now())
	if err != nil {
		return "", err
	}
	return formatPowerup(res), nil
}

func (b *Bot) rank(s *discordgo.Session, m *discordgo.MessageCreate, args []string) (string, error) {
	userID := m.Author.ID
	if len(args) > 0 {
		members, err := s.GuildMembers(m.GuildID, "", 1000)
		if err != nil {
			return "", err
		}
		if userID, err = mostSimilarUser(members, strings.Join(args, " ")); err != nil {
			return "", err
		}
	}
	user, err := s.User(userID)
	if err != nil {
		return "", err
	}

	ctx, cancel := requestContext()
	defer cancel()
	rec, err := b.engine.Player(ctx, userID, m.GuildID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("%s hasn't played yet", user.Username), nil
	}
	if err != nil {
		return "", err
	}
	rows, err := b.engine.Leaderboard(ctx, m.GuildID, 100)
	if err != nil {
		return "", err
	}
	place := ""
	for _, row := range rows {
		if row.UserID == userID {
			place = fmt.Sprintf(", rank #%d", row.Rank)
			break
		}
	}
	return fmt.Sprintf("%s: %d points, acumen %d%s", user.Username, rec.Points, rec.Acumen, place), nil
}

func (b *Bot) help(s *discordgo.Session, m *discordgo.MessageCreate, args []string) (string, error) {
	privateChannel, err := s.UserChannelCreate(m.Author.ID)
	if err != nil {
		return "", err
	}
	_, err = s.ChannelMessageSend(privateChannel.ID, `Unscramble the letters and type the word in the game channel.
;top [number (optional)]
;daily (double points for your next 3 answers, once a day)
;rank [username (optional)]
;help`)
	return "", err
}

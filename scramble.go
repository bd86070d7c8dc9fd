package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/heydabop/scramble/api"
	"github.com/heydabop/scramble/corpus"
	"github.com/heydabop/scramble/game"
	"github.com/heydabop/scramble/store"
)

var (
	version  = "v1.0.0"
	pretty   bool
	dbURL    string
	httpAddr string
)

var rootCmd = &cobra.Command{
	Use:   "scramble",
	Short: "Anagram game bot for Discord",
	Long: `scramble runs a timed unscramble-the-letters game in one channel per
Discord server, keeping points, streaks and a leaderboard per server.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and run the game",
	RunE:  runBot,
}

var topCmd = &cobra.Command{
	Use:     "top <guild> [n]",
	Short:   "Print a server's leaderboard from the database",
	Aliases: []string{"leaderboard", "lb"},
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runTop,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of scramble",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("scramble version", version)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Human readable console logs")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL or SQLite path (overrides DATABASE_URL)")
	runCmd.Flags().StringVar(&httpAddr, "http", "", "Status API address (overrides HTTP_ADDR)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configure(cmd *cobra.Command) (config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}
	setupLogging(cfg.LogLevel, pretty)
	if cmd.Flags().Changed("db") {
		cfg.DatabaseURL = dbURL
	}
	if cmd.Flags().Changed("http") {
		cfg.HTTPAddr = httpAddr
	}
	return cfg, nil
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := configure(cmd)
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	if len(cfg.Channels) == 0 {
		return errors.New("ANAGRAM_CHANNELS is empty, nowhere to play")
	}

	words, err := corpus.Load(cfg.WordsFile, cfg.AlternatesFile, corpus.DefaultBoundaries)
	if err != nil {
		var cfgErr *corpus.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Fatal().Err(err).Str("words", cfg.WordsFile).Msg("unusable word corpus")
		}
		return err
	}
	log.Info().Int("words", words.Len()).Msg("corpus loaded")

	db, err := store.Open(cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	gameCfg := game.DefaultConfig
	gameCfg.AcumenSource = cfg.AcumenSource
	engine := game.New(words, db, game.WithConfig(gameCfg), game.WithLogger(log.Logger))
	for guild := range cfg.Channels {
		engine.Register(guild)
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
	bot := newBot(session, engine, cfg.Channels)
	session.AddHandler(bot.makeMessageCreate())
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("connected to discord")
	})
	if err := session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return game.NewScheduler(engine, bot, cfg.TickInterval).Run(ctx)
	})
	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			return api.New(engine, db).ListenAndServe(ctx, cfg.HTTPAddr)
		})
	}
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("shutting down")
		return nil
	}
	return err
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg, err := configure(cmd)
	if err != nil {
		return err
	}
	n := 10
	if len(args) > 1 {
		if n, err = strconv.Atoi(args[1]); err != nil || n <= 0 {
			return fmt.Errorf("bad count %q", args[1])
		}
	}
	db, err := store.Open(cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Top(cmd.Context(), args[0], n)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Printf("%3d. %-20s %8d pts  acumen %d\n", row.Rank, row.UserID, row.Points, row.Acumen)
	}
	return nil
}

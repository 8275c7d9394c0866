package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/beastarena/internal/config"
	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/db"
	"github.com/udisondev/beastarena/internal/game/battle"
	"github.com/udisondev/beastarena/internal/game/roster"
)

const DefaultConfigPath = "config/arena.yaml"

type options struct {
	configPath string
	rosterPath string
	enemyPath  string
	playerID   string
	round      int
	difficulty string
	batch      int
	parallel   int
	gold       int
	tui        bool
	persist    bool
	logPath    string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	opts := parseFlags()
	if err := run(ctx, opts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", DefaultConfigPath, "arena config file (env ARENA_CONFIG)")
	flag.StringVar(&o.rosterPath, "roster", "", "player roster YAML file")
	flag.StringVar(&o.enemyPath, "enemy", "", "enemy roster YAML file in LEFT coordinates (default: generated)")
	flag.StringVar(&o.playerID, "player", "", "player id: load the roster from the database (with -roster: store it)")
	flag.IntVar(&o.round, "round", 1, "round number for enemy generation")
	flag.StringVar(&o.difficulty, "difficulty", "", "EASY, MEDIUM or HARD (default from config)")
	flag.IntVar(&o.batch, "batch", 0, "number of battles to simulate (default from config)")
	flag.IntVar(&o.parallel, "parallel", 0, "battles simulated concurrently (default from config)")
	flag.IntVar(&o.gold, "gold", 0, "banked gold for the gold reserve multiplier")
	flag.BoolVar(&o.tui, "tui", false, "watch a single battle in the terminal")
	flag.BoolVar(&o.persist, "persist", false, "store outcomes in the database")
	flag.StringVar(&o.logPath, "log", "", "log file (default stdout, discarded with -tui)")
	flag.Parse()
	return o
}

func run(ctx context.Context, opts options) error {
	cfgPath := opts.configPath
	if p := os.Getenv("ARENA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadArena(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logOut, closeLog, err := logWriter(opts)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("arena starting", "config", cfgPath, "log_level", cfg.LogLevel)

	if err := data.Load(); err != nil {
		return fmt.Errorf("loading catalogs: %w", err)
	}

	var database *db.DB
	if opts.playerID != "" || opts.persist {
		database, err = db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database ready")
	}

	player, err := loadPlayerRoster(ctx, opts, database)
	if err != nil {
		return err
	}
	var enemy []roster.Entry
	if opts.enemyPath != "" {
		if enemy, err = roster.LoadFile(opts.enemyPath); err != nil {
			return fmt.Errorf("loading enemy roster: %w", err)
		}
		enemy = roster.Mirror(enemy)
	}

	difficulty := opts.difficulty
	if difficulty == "" {
		difficulty = cfg.DefaultDifficulty
	}
	m := &match{
		cfg:     cfg,
		profile: cfg.Profile(difficulty),
		round:   max(opts.round, 1),
		gold:    opts.gold,
		player:  player,
		enemy:   enemy,
	}

	if opts.tui {
		out, err := watch(ctx, m)
		if err != nil {
			return err
		}
		printOutcome(os.Stdout, out)
		return persist(ctx, database, opts, []battle.Outcome{out})
	}

	count := opts.batch
	if count <= 0 {
		count = max(cfg.Batch.Count, 1)
	}
	parallel := opts.parallel
	if parallel <= 0 {
		parallel = max(cfg.Batch.Parallel, 1)
	}
	results, err := runBatch(ctx, m, count, parallel)
	if err != nil {
		return err
	}
	if count == 1 {
		printOutcome(os.Stdout, results[0])
	}
	printSummary(os.Stdout, summarize(results))
	return persist(ctx, database, opts, results)
}

func loadPlayerRoster(ctx context.Context, opts options, database *db.DB) ([]roster.Entry, error) {
	switch {
	case opts.playerID != "" && opts.rosterPath != "":
		// -roster together with -player replaces the stored roster
		entries, err := roster.LoadFile(opts.rosterPath)
		if err != nil {
			return nil, fmt.Errorf("loading player roster: %w", err)
		}
		if err := database.Rosters().Save(ctx, opts.playerID, entries); err != nil {
			return nil, fmt.Errorf("storing roster of %q: %w", opts.playerID, err)
		}
		slog.Info("roster stored", "player", opts.playerID, "units", len(entries))
		return entries, nil
	case opts.playerID != "":
		entries, err := database.Rosters().Load(ctx, opts.playerID)
		if err != nil {
			return nil, fmt.Errorf("loading roster of %q: %w", opts.playerID, err)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("player %q has no roster", opts.playerID)
		}
		return entries, nil
	case opts.rosterPath != "":
		entries, err := roster.LoadFile(opts.rosterPath)
		if err != nil {
			return nil, fmt.Errorf("loading player roster: %w", err)
		}
		return entries, nil
	default:
		// no roster given: the player fields a generated team of the same round
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		slog.Info("no roster given, generating one", "round", opts.round)
		entries := roster.Mirror(roster.Generate(rng, max(opts.round, 1), config.DefaultDifficulties()[config.DifficultyMedium]))
		for i := range entries {
			entries[i].Generated = false
		}
		return entries, nil
	}
}

func persist(ctx context.Context, database *db.DB, opts options, results []battle.Outcome) error {
	if !opts.persist || database == nil {
		return nil
	}
	playerID := opts.playerID
	if playerID == "" {
		playerID = "local"
	}
	repo := database.Battles()
	for _, out := range results {
		if _, err := repo.SaveOutcome(ctx, playerID, out); err != nil {
			return fmt.Errorf("persisting outcome: %w", err)
		}
	}
	slog.Info("outcomes persisted", "player", playerID, "count", len(results))
	return nil
}

func logWriter(opts options) (io.Writer, func(), error) {
	if opts.logPath != "" {
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	if opts.tui {
		return io.Discard, func() {}, nil
	}
	return os.Stdout, func() {}, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

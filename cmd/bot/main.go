// Package main is the entry point for the Telegram trivia bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-trivia-bot/internal/bot"
	"telegram-trivia-bot/internal/config"
	"telegram-trivia-bot/internal/content"
	"telegram-trivia-bot/internal/pkg/db"
	"telegram-trivia-bot/internal/repository"
	"telegram-trivia-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(dbPool.Pool)
	statsRepo := repository.NewStatsRepository(dbPool.Pool)
	recordRepo := repository.NewRecordRepository(dbPool.Pool)

	// Initialize content bank and services
	bank := content.NewBank()
	leaderboard := service.NewLeaderboardService(
		statsRepo,
		recordRepo,
		cfg.Leaderboard.Location(),
		cfg.Leaderboard.Limit,
	)

	deps := &bot.Dependencies{
		Config:      cfg,
		SessionRepo: sessionRepo,
		StatsRepo:   statsRepo,
		RecordRepo:  recordRepo,
		Bank:        bank,
		Leaderboard: leaderboard,
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Pick up rounds that were in flight when the previous process died.
	if err := telegramBot.ResumeSessions(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to resume stored sessions")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create game_sessions table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_sessions (
			chat_id BIGINT PRIMARY KEY,
			state JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: game_sessions table created")

	// Migration 2: Create player_stats table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS player_stats (
			user_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL DEFAULT '',
			total_games INT NOT NULL DEFAULT 0,
			total_wins INT NOT NULL DEFAULT 0,
			total_score BIGINT NOT NULL DEFAULT 0,
			total_xp BIGINT NOT NULL DEFAULT 0,
			win_streak INT NOT NULL DEFAULT 0,
			best_streak INT NOT NULL DEFAULT 0,
			wins_by_type JSONB NOT NULL DEFAULT '{}',
			wins_by_category JSONB NOT NULL DEFAULT '{}',
			fastest_win_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			average_win_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			achievements JSONB NOT NULL DEFAULT '[]',
			last_play_date VARCHAR(10) NOT NULL DEFAULT '',
			consecutive_days INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_player_stats_score ON player_stats(total_score DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: player_stats table created")

	// Migration 3: Create game_records table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_records (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			chat_id BIGINT NOT NULL,
			game_type VARCHAR(20) NOT NULL,
			category VARCHAR(100) NOT NULL DEFAULT '',
			points INT NOT NULL DEFAULT 0,
			xp INT NOT NULL DEFAULT 0,
			won BOOLEAN NOT NULL DEFAULT FALSE,
			elapsed_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_game_records_time ON game_records(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_game_records_user_time ON game_records(user_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: game_records table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}

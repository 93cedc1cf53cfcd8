package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-trivia-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrStatsNotFound = errors.New("player stats not found")
)

// statsColumns is the scan order shared by every player_stats query.
const statsColumns = `
	user_id, username,
	total_games, total_wins, total_score, total_xp,
	win_streak, best_streak,
	wins_by_type, wins_by_category,
	fastest_win_seconds, average_win_seconds,
	achievements,
	last_play_date, consecutive_days,
	created_at, updated_at
`

// StatsRepository handles cumulative per-player statistics.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository instance.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Update applies mutate to a player's row inside a transaction. The row
// is locked with SELECT FOR UPDATE (and lazily created on first play),
// so concurrent game completions in different chats never lose each
// other's increments. An empty username leaves the stored one unchanged.
func (r *StatsRepository) Update(ctx context.Context, userID int64, username string, mutate func(*model.PlayerStats)) (*model.PlayerStats, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + statsColumns + ` FROM player_stats WHERE user_id = $1 FOR UPDATE`

	stats, err := scanStats(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to lock stats: %w", err)
		}
		stats = &model.PlayerStats{UserID: userID}
	}
	if username != "" {
		stats.Username = username
	}

	mutate(stats)

	const upsert = `
		INSERT INTO player_stats (
			user_id, username,
			total_games, total_wins, total_score, total_xp,
			win_streak, best_streak,
			wins_by_type, wins_by_category,
			fastest_win_seconds, average_win_seconds,
			achievements,
			last_play_date, consecutive_days,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			total_games = EXCLUDED.total_games,
			total_wins = EXCLUDED.total_wins,
			total_score = EXCLUDED.total_score,
			total_xp = EXCLUDED.total_xp,
			win_streak = EXCLUDED.win_streak,
			best_streak = EXCLUDED.best_streak,
			wins_by_type = EXCLUDED.wins_by_type,
			wins_by_category = EXCLUDED.wins_by_category,
			fastest_win_seconds = EXCLUDED.fastest_win_seconds,
			average_win_seconds = EXCLUDED.average_win_seconds,
			achievements = EXCLUDED.achievements,
			last_play_date = EXCLUDED.last_play_date,
			consecutive_days = EXCLUDED.consecutive_days,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, upsert,
		stats.UserID, stats.Username,
		stats.TotalGames, stats.TotalWins, stats.TotalScore, stats.TotalXP,
		stats.WinStreak, stats.BestStreak,
		jsonMap(stats.WinsByType), jsonMap(stats.WinsByCategory),
		stats.FastestWinSeconds, stats.AverageWinSeconds,
		jsonList(stats.Achievements),
		stats.LastPlayDate, stats.ConsecutiveDays,
	).Scan(&stats.CreatedAt, &stats.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stats update: %w", err)
	}
	return stats, nil
}

// Get retrieves a player's statistics.
// Returns ErrStatsNotFound for players who never finished a game.
func (r *StatsRepository) Get(ctx context.Context, userID int64) (*model.PlayerStats, error) {
	query := `SELECT ` + statsColumns + ` FROM player_stats WHERE user_id = $1`

	stats, err := scanStats(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// List returns every player with at least one completed game, highest
// total score first. Metric-specific ordering happens in the service
// layer; the player population of one bot stays small enough to sort
// in memory.
func (r *StatsRepository) List(ctx context.Context) ([]*model.PlayerStats, error) {
	query := `SELECT ` + statsColumns + ` FROM player_stats WHERE total_games > 0 ORDER BY total_score DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	defer rows.Close()

	var all []*model.PlayerStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		all = append(all, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stats: %w", err)
	}
	return all, nil
}

func scanStats(row pgx.Row) (*model.PlayerStats, error) {
	var s model.PlayerStats
	err := row.Scan(
		&s.UserID, &s.Username,
		&s.TotalGames, &s.TotalWins, &s.TotalScore, &s.TotalXP,
		&s.WinStreak, &s.BestStreak,
		&s.WinsByType, &s.WinsByCategory,
		&s.FastestWinSeconds, &s.AverageWinSeconds,
		&s.Achievements,
		&s.LastPlayDate, &s.ConsecutiveDays,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// jsonMap and jsonList keep JSONB columns non-null so scans into maps
// and slices never see SQL NULL.
func jsonMap[K comparable](m map[K]int) map[K]int {
	if m == nil {
		return map[K]int{}
	}
	return m
}

func jsonList(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}

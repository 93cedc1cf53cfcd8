package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-trivia-bot/internal/model"
)

// RecordRepository handles the append-only game history, one row per
// player per completed round. It powers the daily ranking and profile
// history.
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a new RecordRepository instance.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// Append inserts one completion row and fills the record's ID and
// timestamp.
func (r *RecordRepository) Append(ctx context.Context, rec *model.GameRecord) error {
	const query = `
		INSERT INTO game_records (user_id, chat_id, game_type, category, points, xp, won, elapsed_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		rec.UserID, rec.ChatID, rec.Type, rec.Category,
		rec.Points, rec.XP, rec.Won, rec.ElapsedSeconds,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append game record: %w", err)
	}
	return nil
}

// DailyTop aggregates points earned during one calendar day in the
// given location, highest first. Usernames come from player_stats; a
// player who somehow has records but no stats row shows up unnamed.
func (r *RecordRepository) DailyTop(ctx context.Context, day time.Time, loc *time.Location, limit int) ([]*model.DailyRank, error) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.In(loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	const query = `
		SELECT r.user_id, COALESCE(s.username, ''), COALESCE(SUM(r.points), 0)::bigint AS day_points
		FROM game_records r
		LEFT JOIN player_stats s ON s.user_id = r.user_id
		WHERE r.created_at >= $1 AND r.created_at < $2
		GROUP BY r.user_id, s.username
		ORDER BY day_points DESC, r.user_id
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily top: %w", err)
	}
	defer rows.Close()

	var ranks []*model.DailyRank
	for rows.Next() {
		var rank model.DailyRank
		if err := rows.Scan(&rank.UserID, &rank.Username, &rank.Points); err != nil {
			return nil, fmt.Errorf("failed to scan daily rank: %w", err)
		}
		ranks = append(ranks, &rank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily ranks: %w", err)
	}
	return ranks, nil
}

// Recent returns a player's latest completions, newest first.
func (r *RecordRepository) Recent(ctx context.Context, userID int64, limit int) ([]*model.GameRecord, error) {
	const query = `
		SELECT id, user_id, chat_id, game_type, category, points, xp, won, elapsed_seconds, created_at
		FROM game_records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent records: %w", err)
	}
	defer rows.Close()

	var recs []*model.GameRecord
	for rows.Next() {
		var rec model.GameRecord
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ChatID, &rec.Type, &rec.Category,
			&rec.Points, &rec.XP, &rec.Won, &rec.ElapsedSeconds, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game record: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game records: %w", err)
	}
	return recs, nil
}

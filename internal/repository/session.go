// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-trivia-bot/internal/model"
)

// SessionRepository persists the single active game session per chat.
// The session state is stored as one JSONB document keyed by chat, so
// a restarted bot picks up in-flight rounds (their timers are re-armed
// at startup from the stored deadline).
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Get loads the active session for a chat. Returns (nil, nil) when the
// chat has no active game.
func (r *SessionRepository) Get(ctx context.Context, chatID int64) (*model.GameSession, error) {
	const query = `
		SELECT state
		FROM game_sessions
		WHERE chat_id = $1
	`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, chatID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session model.GameSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &session, nil
}

// Put saves or replaces the session for its chat.
func (r *SessionRepository) Put(ctx context.Context, session *model.GameSession) error {
	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	const query = `
		INSERT INTO game_sessions (chat_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, session.ChatID, state); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the chat's session. Deleting an absent session is not
// an error.
func (r *SessionRepository) Delete(ctx context.Context, chatID int64) error {
	const query = `DELETE FROM game_sessions WHERE chat_id = $1`

	if _, err := r.pool.Exec(ctx, query, chatID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListActive returns every stored session, used at startup to re-arm
// round timers after a restart.
func (r *SessionRepository) ListActive(ctx context.Context) ([]*model.GameSession, error) {
	const query = `SELECT state FROM game_sessions`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.GameSession
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		var session model.GameSession
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session state: %w", err)
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

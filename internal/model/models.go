// Package model defines the data models for the Telegram trivia bot.
package model

import (
	"math"
	"time"
)

// GameType identifies one of the supported mini-game variants.
// The set is closed: matching policy, scoring constants and time windows
// are looked up per type in internal/game.
type GameType string

const (
	GameSingleAnswer GameType = "single"     // word-guess, riddle, scramble: exact match
	GameArithmetic   GameType = "arithmetic" // numeric equality
	GameMultiAnswer  GameType = "multi"      // enumerate many answers, fuzzy match
	GameWordChain    GameType = "wordchain"  // chain words on the last character
)

// GameTypes returns all supported game types.
func GameTypes() []GameType {
	return []GameType{GameSingleAnswer, GameArithmetic, GameMultiAnswer, GameWordChain}
}

// Difficulty scales rewards and time windows.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExtreme Difficulty = "extreme"
)

// Difficulties returns all difficulties in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme}
}

// Earned tracks partial-round credit for one submitter, used for the
// per-submitter breakdown when a multi-answer round times out.
type Earned struct {
	Points  int `json:"points"`
	XP      int `json:"xp"`
	Answers int `json:"answers"`
}

// GameSession is the live state of one in-progress game in one chat.
// At most one session exists per chat at any instant; it is mutated only
// by the engine while holding that chat's lock.
type GameSession struct {
	ChatID     int64      `json:"chat_id"`
	Type       GameType   `json:"type"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Prompt     string     `json:"prompt"`

	// Answers holds the canonical answers, lower-cased and trimmed at
	// creation. Arithmetic games additionally carry the parsed value.
	Answers       []string `json:"answers"`
	NumericAnswer float64  `json:"numeric_answer,omitempty"`
	HintText      string   `json:"hint_text,omitempty"`

	// Base reward fixed at creation from type and difficulty. For
	// multi-answer and word-chain rounds this is the per-answer award.
	RewardPoints int `json:"reward_points"`
	RewardXP     int `json:"reward_xp"`

	StarterID     int64     `json:"starter_id"`
	CreatedAt     time.Time `json:"created_at"`
	WindowSeconds int       `json:"window_seconds"`

	HintsGiven int `json:"hints_given"`
	MaxHints   int `json:"max_hints"`

	// Multi-answer state: answer index -> user who found it.
	Found map[int]int64 `json:"found,omitempty"`

	// Word-chain state.
	LastWord   string   `json:"last_word,omitempty"`
	UsedWords  []string `json:"used_words,omitempty"`
	ChainGoal  int      `json:"chain_goal,omitempty"`
	ChainCount int      `json:"chain_count,omitempty"`

	// Partial credit already paid out this round, keyed by submitter.
	EarnedBy map[int64]*Earned `json:"earned_by,omitempty"`
}

// Elapsed returns the time since the session was created.
func (s *GameSession) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Deadline returns the instant the round times out.
func (s *GameSession) Deadline() time.Time {
	return s.CreatedAt.Add(time.Duration(s.WindowSeconds) * time.Second)
}

// FoundIndex reports whether answer index i has already been credited.
func (s *GameSession) FoundIndex(i int) bool {
	_, ok := s.Found[i]
	return ok
}

// MissingAnswers returns the canonical answers not yet found, in order.
func (s *GameSession) MissingAnswers() []string {
	var missing []string
	for i, a := range s.Answers {
		if !s.FoundIndex(i) {
			missing = append(missing, a)
		}
	}
	return missing
}

// Complete reports whether the round's goal has been reached.
func (s *GameSession) Complete() bool {
	switch s.Type {
	case GameMultiAnswer:
		return len(s.Answers) > 0 && len(s.Found) == len(s.Answers)
	case GameWordChain:
		return s.ChainGoal > 0 && s.ChainCount >= s.ChainGoal
	default:
		return false
	}
}

// Credit records a paid-out partial award for a submitter.
func (s *GameSession) Credit(userID int64, points, xp int) {
	if s.EarnedBy == nil {
		s.EarnedBy = make(map[int64]*Earned)
	}
	e, ok := s.EarnedBy[userID]
	if !ok {
		e = &Earned{}
		s.EarnedBy[userID] = e
	}
	e.Points += points
	e.XP += xp
	e.Answers++
}

// UsedWord reports whether a word was already played in this chain round.
func (s *GameSession) UsedWord(word string) bool {
	for _, w := range s.UsedWords {
		if w == word {
			return true
		}
	}
	return false
}

// PlayerStats is the cumulative per-user record across all games.
// Created lazily on first game completion, never deleted.
type PlayerStats struct {
	UserID   int64  `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`

	TotalGames int   `db:"total_games" json:"total_games"`
	TotalWins  int   `db:"total_wins" json:"total_wins"`
	TotalScore int64 `db:"total_score" json:"total_score"`
	TotalXP    int64 `db:"total_xp" json:"total_xp"`

	WinStreak  int `db:"win_streak" json:"win_streak"`
	BestStreak int `db:"best_streak" json:"best_streak"`

	WinsByType     map[GameType]int `json:"wins_by_type"`
	WinsByCategory map[string]int   `json:"wins_by_category"`

	// FastestWinSeconds is 0 until the first win.
	FastestWinSeconds float64 `db:"fastest_win_seconds" json:"fastest_win_seconds"`
	AverageWinSeconds float64 `db:"average_win_seconds" json:"average_win_seconds"`

	Achievements []string `json:"achievements"`

	LastPlayDate    string `db:"last_play_date" json:"last_play_date"` // YYYY-MM-DD
	ConsecutiveDays int    `db:"consecutive_days" json:"consecutive_days"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// HasAchievement reports whether the achievement id is already unlocked.
func (s *PlayerStats) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// WinRate returns wins/games, or 0 before the first completed game.
func (s *PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.TotalWins) / float64(s.TotalGames)
}

// Level derives the player level from accumulated XP.
// Level 1 starts at 0 XP; each level costs quadratically more.
func (s *PlayerStats) Level() int {
	if s.TotalXP <= 0 {
		return 1
	}
	return 1 + int(math.Sqrt(float64(s.TotalXP)/100))
}

// GameRecord is an append-only row written once per completed game,
// powering daily rankings and profile history.
type GameRecord struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	ChatID         int64     `db:"chat_id"`
	Type           GameType  `db:"game_type"`
	Category       string    `db:"category"`
	Points         int       `db:"points"`
	XP             int       `db:"xp"`
	Won            bool      `db:"won"`
	ElapsedSeconds float64   `db:"elapsed_seconds"`
	CreatedAt      time.Time `db:"created_at"`
}

// DailyRank is a user's aggregated points for one calendar day.
type DailyRank struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Points   int64  `db:"points"`
}

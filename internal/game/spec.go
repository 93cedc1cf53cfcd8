// Package game holds the pure domain logic for the mini-games: the
// per-type constant tables, answer matching, score calculation, hint
// rendering and the achievement catalog. Nothing in this package does IO.
package game

import (
	"telegram-trivia-bot/internal/model"
)

// Spec holds the per-type constants. Adding a game type is a new table
// row here, not a new branch scattered across matching and scoring code.
type Spec struct {
	// BaseScore is the pre-multiplier score for a win.
	BaseScore int
	// TimeBonusRate is points awarded per unspent second of the window.
	TimeBonusRate float64
	// MaxHints limits RequestHint calls per round.
	MaxHints int
	// FixedWindowSeconds overrides the per-difficulty window when > 0.
	FixedWindowSeconds int
}

var specs = map[model.GameType]Spec{
	model.GameSingleAnswer: {BaseScore: 60, TimeBonusRate: 1.0, MaxHints: 2},
	model.GameArithmetic:   {BaseScore: 80, TimeBonusRate: 1.5, MaxHints: 2},
	model.GameMultiAnswer:  {BaseScore: 40, TimeBonusRate: 0.5, MaxHints: 1, FixedWindowSeconds: 120},
	model.GameWordChain:    {BaseScore: 50, TimeBonusRate: 0.5, MaxHints: 1},
}

var difficultyMultiplier = map[model.Difficulty]float64{
	model.DifficultyEasy:    1.0,
	model.DifficultyMedium:  1.5,
	model.DifficultyHard:    2.0,
	model.DifficultyExtreme: 3.0,
}

var difficultyWindowSeconds = map[model.Difficulty]int{
	model.DifficultyEasy:    30,
	model.DifficultyMedium:  45,
	model.DifficultyHard:    60,
	model.DifficultyExtreme: 90,
}

// chainGoalByDifficulty is the number of accepted words that wins a
// word-chain round.
var chainGoalByDifficulty = map[model.Difficulty]int{
	model.DifficultyEasy:    3,
	model.DifficultyMedium:  4,
	model.DifficultyHard:    5,
	model.DifficultyExtreme: 6,
}

// SpecFor returns the constant table entry for a game type.
func SpecFor(t model.GameType) (Spec, bool) {
	s, ok := specs[t]
	return s, ok
}

// ValidType reports whether t is a known game type.
func ValidType(t model.GameType) bool {
	_, ok := specs[t]
	return ok
}

// ValidDifficulty reports whether d is a known difficulty.
func ValidDifficulty(d model.Difficulty) bool {
	_, ok := difficultyMultiplier[d]
	return ok
}

// Multiplier returns the difficulty score multiplier, defaulting to easy.
func Multiplier(d model.Difficulty) float64 {
	if m, ok := difficultyMultiplier[d]; ok {
		return m
	}
	return 1.0
}

// WindowSeconds returns the answer window for a type and difficulty.
func WindowSeconds(t model.GameType, d model.Difficulty) int {
	if s, ok := specs[t]; ok && s.FixedWindowSeconds > 0 {
		return s.FixedWindowSeconds
	}
	if w, ok := difficultyWindowSeconds[d]; ok {
		return w
	}
	return difficultyWindowSeconds[model.DifficultyEasy]
}

// MaxHints returns the hint budget for a game type.
func MaxHints(t model.GameType) int {
	if s, ok := specs[t]; ok {
		return s.MaxHints
	}
	return 0
}

// ChainGoal returns the word-chain target length for a difficulty.
func ChainGoal(d model.Difficulty) int {
	if g, ok := chainGoalByDifficulty[d]; ok {
		return g
	}
	return chainGoalByDifficulty[model.DifficultyEasy]
}

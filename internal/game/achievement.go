package game

import (
	"telegram-trivia-bot/internal/model"
)

// Event is the immediate trigger an achievement rule may key off, in
// addition to the updated stats snapshot.
type Event struct {
	Won            bool
	ElapsedSeconds float64
	Category       string
	Type           model.GameType
}

// Achievement is a one-time-unlockable milestone with a fixed point
// reward. The catalog is static and read-only at runtime.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Reward      int

	satisfied func(s *model.PlayerStats, ev Event) bool
}

// CategoryExpertThreshold is the per-category win count for expertise.
const CategoryExpertThreshold = 25

var catalog = []Achievement{
	{
		ID: "first_win", Name: "First Blood", Reward: 50,
		Description: "Win your first game.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return ev.Won && s.TotalWins >= 1 },
	},
	{
		ID: "speedster", Name: "Lightning Round", Reward: 100,
		Description: "Win a game in under 5 seconds.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return ev.Won && ev.ElapsedSeconds < 5 },
	},
	{
		ID: "streak_5", Name: "On Fire", Reward: 150,
		Description: "Win 5 games in a row.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return s.WinStreak >= 5 },
	},
	{
		ID: "streak_10", Name: "Unstoppable", Reward: 400,
		Description: "Win 10 games in a row.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return s.WinStreak >= 10 },
	},
	{
		ID: "wins_10", Name: "Regular", Reward: 100,
		Description: "Win 10 games in total.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return s.TotalWins >= 10 },
	},
	{
		ID: "wins_50", Name: "Veteran", Reward: 300,
		Description: "Win 50 games in total.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return s.TotalWins >= 50 },
	},
	{
		ID: "wins_100", Name: "Legend", Reward: 1000,
		Description: "Win 100 games in total.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return s.TotalWins >= 100 },
	},
	{
		ID: "score_10k", Name: "Point Collector", Reward: 500,
		Description: "Accumulate 10000 points.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return s.TotalScore >= 10000 },
	},
	{
		ID: "category_expert", Name: "Subject Matter Expert", Reward: 250,
		Description: "Win 25 games in one category.",
		satisfied: func(s *model.PlayerStats, ev Event) bool {
			return ev.Category != "" && s.WinsByCategory[ev.Category] >= CategoryExpertThreshold
		},
	},
	{
		ID: "week_streak", Name: "Daily Devotion", Reward: 200,
		Description: "Play on 7 consecutive days.",
		satisfied:   func(s *model.PlayerStats, ev Event) bool { return s.ConsecutiveDays >= 7 },
	},
	{
		ID: "all_rounder", Name: "Jack of All Trades", Reward: 300,
		Description: "Win at least one game of every type.",
		satisfied: func(s *model.PlayerStats, ev Event) bool {
			for _, t := range model.GameTypes() {
				if s.WinsByType[t] == 0 {
					return false
				}
			}
			return true
		},
	},
}

// Catalog returns a copy of the achievement catalog.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogByID looks up one achievement definition.
func CatalogByID(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Evaluator checks the catalog against updated stats. It is stateless;
// idempotence comes from skipping ids already present on the stats.
type Evaluator struct {
	catalog []Achievement
}

// NewEvaluator creates an Evaluator over the static catalog.
func NewEvaluator() *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Evaluate returns the rules newly satisfied by the updated stats and
// the triggering event. Rules already unlocked are skipped, so
// re-running against the same stats never re-awards anything. Evaluate
// does not mutate; callers apply unlocks with Unlock inside the same
// stats update transaction.
func (e *Evaluator) Evaluate(s *model.PlayerStats, ev Event) []Achievement {
	var unlocked []Achievement
	for _, a := range e.catalog {
		if s.HasAchievement(a.ID) {
			continue
		}
		if a.satisfied(s, ev) {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// Unlock records an achievement on the stats and credits its reward.
func Unlock(s *model.PlayerStats, a Achievement) {
	if s.HasAchievement(a.ID) {
		return
	}
	s.Achievements = append(s.Achievements, a.ID)
	s.TotalScore += int64(a.Reward)
}

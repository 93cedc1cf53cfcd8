package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-trivia-bot/internal/game"
	"telegram-trivia-bot/internal/repository"
	"telegram-trivia-bot/internal/service"
)

// ProfileHandler handles player profile and achievement commands.
type ProfileHandler struct {
	leaderboard *service.LeaderboardService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(leaderboard *service.LeaderboardService) *ProfileHandler {
	return &ProfileHandler{leaderboard: leaderboard}
}

// HandleStart handles /start - a short command overview.
func (h *ProfileHandler) HandleStart(c tele.Context) error {
	return c.Reply(strings.Join([]string{
		"🎮 Trivia bot. Games:",
		"/quiz [difficulty] — guess the answer",
		"/math [difficulty] — mental arithmetic",
		"/guesslist [difficulty] — name them all, together",
		"/wordchain [difficulty] — chain words on the last letter",
		"",
		"/hint — spend a hint",
		"/giveup — reveal and end the round",
		"/top [metric] — leaderboard (score, wins, streak, winrate, level)",
		"/dailytop — today's ranking",
		"/profile — your statistics",
		"/achievements — your badges",
		"",
		"Difficulties: easy, medium, hard, extreme",
	}, "\n"))
}

// HandleProfile handles /profile - the caller's statistics card.
func (h *ProfileHandler) HandleProfile(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	stats, recent, err := h.leaderboard.GetProfile(context.Background(), sender.ID)
	if errors.Is(err, repository.ErrStatsNotFound) {
		return c.Reply("📭 No games on record yet. Start one with /quiz!")
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load profile")
		return c.Reply("❌ Could not load your profile, please try again.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s — level %d (%d XP)\n", playerName(stats), stats.Level(), stats.TotalXP)
	b.WriteString("━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Score: %d\n", stats.TotalScore)
	fmt.Fprintf(&b, "Games: %d, wins: %d (%.0f%%)\n", stats.TotalGames, stats.TotalWins, stats.WinRate()*100)
	fmt.Fprintf(&b, "Streak: %d (best %d)\n", stats.WinStreak, stats.BestStreak)
	if stats.FastestWinSeconds > 0 {
		fmt.Fprintf(&b, "Fastest win: %.1fs, average: %.1fs\n", stats.FastestWinSeconds, stats.AverageWinSeconds)
	}
	if stats.ConsecutiveDays > 1 {
		fmt.Fprintf(&b, "Playing %d days in a row\n", stats.ConsecutiveDays)
	}
	fmt.Fprintf(&b, "Achievements: %d/%d\n", len(stats.Achievements), len(game.Catalog()))

	if len(recent) > 0 {
		b.WriteString("\nLatest games:\n")
		for _, r := range recent {
			mark := "✖"
			if r.Won {
				mark = "✔"
			}
			fmt.Fprintf(&b, "%s %s +%d pts\n", mark, r.Type, r.Points)
		}
	}
	return c.Reply(b.String())
}

// HandleAchievements handles /achievements - unlocked and remaining
// badges.
func (h *ProfileHandler) HandleAchievements(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	stats, _, err := h.leaderboard.GetProfile(context.Background(), sender.ID)
	if errors.Is(err, repository.ErrStatsNotFound) {
		return c.Reply("📭 No games on record yet. Achievements wait for your first round!")
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load achievements")
		return c.Reply("❌ Could not load your achievements, please try again.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏅 %s — %d/%d unlocked\n", playerName(stats), len(stats.Achievements), len(game.Catalog()))
	b.WriteString("━━━━━━━━━━━━━━━\n")
	for _, a := range game.Catalog() {
		if stats.HasAchievement(a.ID) {
			fmt.Fprintf(&b, "✅ %s — %s\n", a.Name, a.Description)
		} else {
			fmt.Fprintf(&b, "🔒 %s — %s\n", a.Name, a.Description)
		}
	}
	return c.Reply(b.String())
}

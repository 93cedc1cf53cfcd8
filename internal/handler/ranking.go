package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-trivia-bot/internal/model"
	"telegram-trivia-bot/internal/service"
)

// RankingHandler handles leaderboard commands.
type RankingHandler struct {
	leaderboard *service.LeaderboardService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(leaderboard *service.LeaderboardService) *RankingHandler {
	return &RankingHandler{leaderboard: leaderboard}
}

var medals = []string{"🥇", "🥈", "🥉"}

func rankPrefix(i int) string {
	if i < len(medals) {
		return medals[i]
	}
	return fmt.Sprintf("%d.", i+1)
}

// HandleTop handles /top [metric] - the all-time leaderboard.
// Metrics: score (default), wins, streak, winrate, level.
func (h *RankingHandler) HandleTop(c tele.Context) error {
	metricArg := ""
	if args := c.Args(); len(args) > 0 {
		metricArg = strings.ToLower(args[0])
	}
	metric, err := service.ParseMetric(metricArg)
	if errors.Is(err, service.ErrUnknownMetric) {
		return c.Reply("❌ Unknown metric. Try: score, wins, streak, winrate, level")
	}

	players, err := h.leaderboard.GetLeaderboard(context.Background(), metric, nil, 0)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load leaderboard")
		return c.Reply("❌ Could not load the leaderboard, please try again.")
	}
	if len(players) == 0 {
		return c.Reply("🏆 Nobody on the board yet. Start a game!")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Leaderboard — %s\n", metricLabel(metric))
	b.WriteString("━━━━━━━━━━━━━━━\n")
	for i, p := range players {
		fmt.Fprintf(&b, "%s %s: %s\n", rankPrefix(i), playerName(p), metricDisplay(p, metric))
	}
	return c.Reply(b.String())
}

// HandleDailyTop handles /dailytop - today's points ranking.
func (h *RankingHandler) HandleDailyTop(c tele.Context) error {
	ranks, err := h.leaderboard.GetDailyTop(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load daily ranking")
		return c.Reply("❌ Could not load today's ranking, please try again.")
	}
	if len(ranks) == 0 {
		return c.Reply("📊 No games finished today yet.")
	}

	var b strings.Builder
	b.WriteString("📊 Today's ranking\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	for i, r := range ranks {
		name := r.Username
		if name == "" {
			name = fmt.Sprintf("Player%d", r.UserID)
		}
		fmt.Fprintf(&b, "%s %s: %d pts\n", rankPrefix(i), name, r.Points)
	}
	return c.Reply(b.String())
}

func playerName(p *model.PlayerStats) string {
	if p.Username != "" {
		return p.Username
	}
	return fmt.Sprintf("Player%d", p.UserID)
}

func metricLabel(m service.Metric) string {
	switch m {
	case service.MetricWins:
		return "total wins"
	case service.MetricStreak:
		return "best streak"
	case service.MetricWinRate:
		return "win rate"
	case service.MetricLevel:
		return "level"
	default:
		return "total score"
	}
}

func metricDisplay(p *model.PlayerStats, m service.Metric) string {
	switch m {
	case service.MetricWins:
		return fmt.Sprintf("%d wins", p.TotalWins)
	case service.MetricStreak:
		return fmt.Sprintf("%d in a row", p.BestStreak)
	case service.MetricWinRate:
		return fmt.Sprintf("%.0f%% (%d games)", p.WinRate()*100, p.TotalGames)
	case service.MetricLevel:
		return fmt.Sprintf("level %d", p.Level())
	default:
		return fmt.Sprintf("%d pts", p.TotalScore)
	}
}

// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"telegram-trivia-bot/internal/model"
	"telegram-trivia-bot/internal/repository"
)

// Metric selects how a leaderboard is ordered.
type Metric string

const (
	MetricScore   Metric = "score"
	MetricWins    Metric = "wins"
	MetricStreak  Metric = "streak"
	MetricWinRate Metric = "winrate"
	MetricLevel   Metric = "level"
)

// ErrUnknownMetric is returned for an unrecognized leaderboard metric.
var ErrUnknownMetric = errors.New("unknown leaderboard metric")

// minGamesForWinRate keeps one-game wonders off the win-rate board.
const minGamesForWinRate = 5

// ParseMetric maps a user-supplied metric name to a Metric. The empty
// string defaults to score.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "":
		return MetricScore, nil
	case MetricScore, MetricWins, MetricStreak, MetricWinRate, MetricLevel:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// LeaderboardService builds ranking views over player statistics and
// game history.
type LeaderboardService struct {
	statsRepo  *repository.StatsRepository
	recordRepo *repository.RecordRepository
	timezone   *time.Location
	limit      int
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(
	statsRepo *repository.StatsRepository,
	recordRepo *repository.RecordRepository,
	timezone *time.Location,
	limit int,
) *LeaderboardService {
	if timezone == nil {
		timezone = time.UTC
	}
	if limit <= 0 {
		limit = 10
	}
	return &LeaderboardService{
		statsRepo:  statsRepo,
		recordRepo: recordRepo,
		timezone:   timezone,
		limit:      limit,
	}
}

// GetLeaderboard returns the top players by the given metric. A
// non-empty scope restricts the board to those user IDs, so callers can
// rank just the members of one chat. A limit of zero or less falls back
// to the configured default. The player population of one bot is small,
// so ordering happens in memory over the full stats list.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, metric Metric, scope []int64, limit int) ([]*model.PlayerStats, error) {
	all, err := s.statsRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return rankByMetric(filterScope(all, scope), metric, s.effectiveLimit(limit)), nil
}

// effectiveLimit resolves a per-call row limit, falling back to the
// configured default when the caller passes zero or less.
func (s *LeaderboardService) effectiveLimit(limit int) int {
	if limit <= 0 {
		return s.limit
	}
	return limit
}

// filterScope keeps only the players named by scope; an empty scope
// keeps everyone.
func filterScope(all []*model.PlayerStats, scope []int64) []*model.PlayerStats {
	if len(scope) == 0 {
		return all
	}
	inScope := make(map[int64]bool, len(scope))
	for _, id := range scope {
		inScope[id] = true
	}
	filtered := make([]*model.PlayerStats, 0, len(scope))
	for _, p := range all {
		if inScope[p.UserID] {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// GetDailyTop returns today's ranking by points earned, with the day
// boundary taken in the service's timezone.
func (s *LeaderboardService) GetDailyTop(ctx context.Context) ([]*model.DailyRank, error) {
	today := time.Now().In(s.timezone)
	return s.recordRepo.DailyTop(ctx, today, s.timezone, s.limit)
}

// GetDailyTopForDate returns the ranking for a specific date.
func (s *LeaderboardService) GetDailyTopForDate(ctx context.Context, date time.Time) ([]*model.DailyRank, error) {
	return s.recordRepo.DailyTop(ctx, date, s.timezone, s.limit)
}

// GetProfile returns a player's statistics with their latest results.
// Returns repository.ErrStatsNotFound for players who never finished a
// game.
func (s *LeaderboardService) GetProfile(ctx context.Context, userID int64) (*model.PlayerStats, []*model.GameRecord, error) {
	stats, err := s.statsRepo.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	recent, err := s.recordRepo.Recent(ctx, userID, 5)
	if err != nil {
		return nil, nil, err
	}
	return stats, recent, nil
}

// rankByMetric orders players by the metric descending, ties broken by
// total score then user ID so the ordering is deterministic. The
// win-rate board only admits players with enough completed games.
func rankByMetric(all []*model.PlayerStats, metric Metric, limit int) []*model.PlayerStats {
	ranked := make([]*model.PlayerStats, 0, len(all))
	for _, p := range all {
		if metric == MetricWinRate && p.TotalGames < minGamesForWinRate {
			continue
		}
		ranked = append(ranked, p)
	}

	sort.Slice(ranked, func(i, j int) bool {
		vi, vj := metricValue(ranked[i], metric), metricValue(ranked[j], metric)
		if vi != vj {
			return vi > vj
		}
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func metricValue(p *model.PlayerStats, metric Metric) float64 {
	switch metric {
	case MetricWins:
		return float64(p.TotalWins)
	case MetricStreak:
		return float64(p.BestStreak)
	case MetricWinRate:
		return p.WinRate()
	case MetricLevel:
		return float64(p.Level())
	default:
		return float64(p.TotalScore)
	}
}

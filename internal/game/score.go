package game

import (
	"telegram-trivia-bot/internal/model"
)

const (
	// StreakBonusPerWin is added per consecutive win, capped below.
	StreakBonusPerWin = 10
	// StreakBonusCap bounds the streak bonus.
	StreakBonusCap = 500
	// MinScore is the floor guarantee for any scored outcome.
	MinScore = 10
	// WinXPBonus is the flat XP added on top of score-derived XP for a win.
	WinXPBonus = 25
	// LossXPFactor scales score-derived XP for a non-winning completion.
	LossXPFactor = 0.3
)

// ScoreInput is everything the calculator needs. The calculator is a
// pure function of it: same input, same output, no side effects.
type ScoreInput struct {
	Type           model.GameType
	Difficulty     model.Difficulty
	ElapsedSeconds float64
	WinStreak      int
	Won            bool
}

// ComputeScore turns a resolved round into points and XP.
//
//	score = floor(base * multiplier)
//	      + floor(max(0, window-elapsed) * rate)
//	      + min(streak*10, 500)
//	score = max(score, 10)
//	xp    = won ? floor(score/5)+25 : floor(score/5 * 0.3)
func ComputeScore(in ScoreInput) (points, xp int) {
	spec, ok := specs[in.Type]
	if !ok {
		return MinScore, minScoreXP(in.Won)
	}

	points = int(float64(spec.BaseScore) * Multiplier(in.Difficulty))

	window := float64(WindowSeconds(in.Type, in.Difficulty))
	if bonus := (window - in.ElapsedSeconds) * spec.TimeBonusRate; bonus > 0 {
		points += int(bonus)
	}

	streakBonus := in.WinStreak * StreakBonusPerWin
	if streakBonus > StreakBonusCap {
		streakBonus = StreakBonusCap
	}
	points += streakBonus

	if points < MinScore {
		points = MinScore
	}

	if in.Won {
		xp = points/5 + WinXPBonus
	} else {
		xp = int(float64(points/5) * LossXPFactor)
	}
	return points, xp
}

func minScoreXP(won bool) int {
	if won {
		return MinScore/5 + WinXPBonus
	}
	base := float64(MinScore / 5)
	return int(base * LossXPFactor)
}

// BaseReward is the award fixed at session creation: the base score
// scaled by difficulty, with no time or streak component. Multi-answer
// and word-chain rounds pay this amount per accepted answer.
func BaseReward(t model.GameType, d model.Difficulty) (points, xp int) {
	spec, ok := specs[t]
	if !ok {
		return MinScore, MinScore / 5
	}
	points = int(float64(spec.BaseScore) * Multiplier(d))
	if points < MinScore {
		points = MinScore
	}
	return points, points / 5
}

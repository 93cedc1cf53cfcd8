package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"telegram-trivia-bot/internal/model"
)

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name       string
		in         ScoreInput
		wantPoints int
		wantXP     int
	}{
		{
			// base 80, window 30, rate 1.5: 80 + (30-10)*1.5 = 110
			name: "arithmetic easy win mid window",
			in: ScoreInput{
				Type: model.GameArithmetic, Difficulty: model.DifficultyEasy,
				ElapsedSeconds: 10, WinStreak: 0, Won: true,
			},
			wantPoints: 110,
			wantXP:     110/5 + 25,
		},
		{
			// base 60*2 = 120, window 60, bonus (60-30)*1.0 = 30, streak 3*10
			name: "single answer hard win with streak",
			in: ScoreInput{
				Type: model.GameSingleAnswer, Difficulty: model.DifficultyHard,
				ElapsedSeconds: 30, WinStreak: 3, Won: true,
			},
			wantPoints: 180,
			wantXP:     180/5 + 25,
		},
		{
			// elapsed past the window: no time bonus, no negative bonus
			name: "no bonus after window",
			in: ScoreInput{
				Type: model.GameArithmetic, Difficulty: model.DifficultyEasy,
				ElapsedSeconds: 300, WinStreak: 0, Won: true,
			},
			wantPoints: 80,
			wantXP:     80/5 + 25,
		},
		{
			// streak bonus caps at 500
			name: "streak bonus capped",
			in: ScoreInput{
				Type: model.GameWordChain, Difficulty: model.DifficultyEasy,
				ElapsedSeconds: 999, WinStreak: 100, Won: true,
			},
			wantPoints: 50 + 500,
			wantXP:     550/5 + 25,
		},
		{
			name: "loss xp is scaled down",
			in: ScoreInput{
				Type: model.GameArithmetic, Difficulty: model.DifficultyEasy,
				ElapsedSeconds: 300, WinStreak: 0, Won: false,
			},
			wantPoints: 80,
			wantXP:     4, // floor(floor(80/5) * 0.3)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, xp := ComputeScore(tt.in)
			assert.Equal(t, tt.wantPoints, points)
			assert.Equal(t, tt.wantXP, xp)
		})
	}
}

// TestComputeScoreFloorProperty: for any valid input combination the
// score never drops below the floor guarantee.
func TestComputeScoreFloorProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := ScoreInput{
			Type:           rapid.SampledFrom(model.GameTypes()).Draw(t, "type"),
			Difficulty:     rapid.SampledFrom(model.Difficulties()).Draw(t, "difficulty"),
			ElapsedSeconds: rapid.Float64Range(0, 100000).Draw(t, "elapsed"),
			WinStreak:      rapid.IntRange(0, 10000).Draw(t, "streak"),
			Won:            rapid.Bool().Draw(t, "won"),
		}

		points, xp := ComputeScore(in)
		if points < MinScore {
			t.Fatalf("score %d below floor %d for %+v", points, MinScore, in)
		}
		if xp < 0 {
			t.Fatalf("negative xp %d for %+v", xp, in)
		}
	})
}

// TestComputeScoreDeterminismProperty: the calculator is pure; the same
// input always yields the same output.
func TestComputeScoreDeterminismProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := ScoreInput{
			Type:           rapid.SampledFrom(model.GameTypes()).Draw(t, "type"),
			Difficulty:     rapid.SampledFrom(model.Difficulties()).Draw(t, "difficulty"),
			ElapsedSeconds: rapid.Float64Range(0, 1000).Draw(t, "elapsed"),
			WinStreak:      rapid.IntRange(0, 100).Draw(t, "streak"),
			Won:            rapid.Bool().Draw(t, "won"),
		}

		p1, x1 := ComputeScore(in)
		p2, x2 := ComputeScore(in)
		if p1 != p2 || x1 != x2 {
			t.Fatalf("non-deterministic result for %+v: (%d,%d) vs (%d,%d)", in, p1, x1, p2, x2)
		}
	})
}

// TestComputeScoreStreakMonotonicProperty: a longer streak never lowers
// the score, all else equal.
func TestComputeScoreStreakMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := ScoreInput{
			Type:           rapid.SampledFrom(model.GameTypes()).Draw(t, "type"),
			Difficulty:     rapid.SampledFrom(model.Difficulties()).Draw(t, "difficulty"),
			ElapsedSeconds: rapid.Float64Range(0, 1000).Draw(t, "elapsed"),
			WinStreak:      rapid.IntRange(0, 100).Draw(t, "streak"),
			Won:            true,
		}
		longer := in
		longer.WinStreak += rapid.IntRange(1, 100).Draw(t, "extra")

		p1, _ := ComputeScore(in)
		p2, _ := ComputeScore(longer)
		if p2 < p1 {
			t.Fatalf("score dropped from %d to %d when streak grew (%+v)", p1, p2, in)
		}
	})
}

func TestBaseReward(t *testing.T) {
	tests := []struct {
		name       string
		gameType   model.GameType
		difficulty model.Difficulty
		wantPoints int
	}{
		{"arithmetic easy", model.GameArithmetic, model.DifficultyEasy, 80},
		{"arithmetic medium", model.GameArithmetic, model.DifficultyMedium, 120},
		{"arithmetic extreme", model.GameArithmetic, model.DifficultyExtreme, 240},
		{"multi answer hard", model.GameMultiAnswer, model.DifficultyHard, 80},
		{"single extreme", model.GameSingleAnswer, model.DifficultyExtreme, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, xp := BaseReward(tt.gameType, tt.difficulty)
			assert.Equal(t, tt.wantPoints, points)
			assert.Equal(t, tt.wantPoints/5, xp)
		})
	}
}

func TestWindowSeconds(t *testing.T) {
	assert.Equal(t, 30, WindowSeconds(model.GameSingleAnswer, model.DifficultyEasy))
	assert.Equal(t, 60, WindowSeconds(model.GameArithmetic, model.DifficultyHard))
	assert.Equal(t, 90, WindowSeconds(model.GameWordChain, model.DifficultyExtreme))
	// Multi-answer rounds always get the long fixed window.
	for _, d := range model.Difficulties() {
		assert.Equal(t, 120, WindowSeconds(model.GameMultiAnswer, d))
	}
}

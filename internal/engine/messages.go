package engine

import (
	"fmt"
	"sort"
	"strings"

	"telegram-trivia-bot/internal/game"
	"telegram-trivia-bot/internal/model"
)

var gameTitles = map[model.GameType]string{
	model.GameSingleAnswer: "Trivia",
	model.GameArithmetic:   "Quick Math",
	model.GameMultiAnswer:  "Guess Them All",
	model.GameWordChain:    "Word Chain",
}

func gameTitle(t model.GameType) string {
	if title, ok := gameTitles[t]; ok {
		return title
	}
	return string(t)
}

func formatStart(s *model.GameSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎮 %s (%s)\n\n%s\n", gameTitle(s.Type), s.Difficulty, s.Prompt)
	switch s.Type {
	case model.GameMultiAnswer:
		fmt.Fprintf(&b, "\n%d answers to find, %d pts each.", len(s.Answers), s.RewardPoints)
	case model.GameWordChain:
		fmt.Fprintf(&b, "\nFirst word: %s — chain %d words, %d pts each.", s.LastWord, s.ChainGoal, s.RewardPoints)
	}
	fmt.Fprintf(&b, "\n⏱ You have %d seconds.", s.WindowSeconds)
	if s.MaxHints > 0 {
		fmt.Fprintf(&b, " /hint for a clue (%d max).", s.MaxHints)
	}
	return b.String()
}

func formatWin(s *model.GameSession, username string, points, xp int, elapsed float64, unlocked []game.Achievement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 %s got it in %.1fs! The answer was %q.\n+%d pts, +%d XP",
		displayName(username), elapsed, s.Answers[0], points, xp)
	appendUnlocked(&b, unlocked)
	return b.String()
}

func formatTeamWin(s *model.GameSession, closerName string, elapsed float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Round complete in %.0fs — %s found the last one!\n", elapsed, displayName(closerName))
	b.WriteString(formatBreakdown(s))
	return b.String()
}

func formatPartial(s *model.GameSession, username, answer string) string {
	return fmt.Sprintf("✅ %s found %q (+%d pts) — %d/%d",
		displayName(username), answer, s.RewardPoints, len(s.Found), len(s.Answers))
}

func formatChainAccepted(s *model.GameSession, username, word string) string {
	return fmt.Sprintf("🔗 %s: %q accepted (+%d pts) — %d/%d",
		displayName(username), word, s.RewardPoints, s.ChainCount, s.ChainGoal)
}

func formatHint(s *model.GameSession, hint string) string {
	return fmt.Sprintf("💡 Hint %d/%d: %s", s.HintsGiven, s.MaxHints, hint)
}

func formatSurrender(s *model.GameSession) string {
	switch s.Type {
	case model.GameWordChain:
		return fmt.Sprintf("🏳️ Round over. The chain ended at %d/%d words.", s.ChainCount, s.ChainGoal)
	case model.GameMultiAnswer:
		return fmt.Sprintf("🏳️ Round over. Remaining answers: %s", strings.Join(s.MissingAnswers(), ", "))
	default:
		return fmt.Sprintf("🏳️ Round over. The answer was %q.", s.Answers[0])
	}
}

func formatTimeout(s *model.GameSession) string {
	var b strings.Builder
	b.WriteString("⏰ Time's up!")
	switch s.Type {
	case model.GameMultiAnswer:
		if missing := s.MissingAnswers(); len(missing) > 0 {
			fmt.Fprintf(&b, " Missed: %s.", strings.Join(missing, ", "))
		}
		b.WriteString("\n")
		b.WriteString(formatBreakdown(s))
	case model.GameWordChain:
		fmt.Fprintf(&b, " The chain stopped at %d/%d words.", s.ChainCount, s.ChainGoal)
	default:
		fmt.Fprintf(&b, " The answer was %q.", s.Answers[0])
	}
	return b.String()
}

// formatBreakdown lists what each submitter earned during the round.
func formatBreakdown(s *model.GameSession) string {
	if len(s.EarnedBy) == 0 {
		return "Nobody scored this round."
	}

	ids := make([]int64, 0, len(s.EarnedBy))
	for id := range s.EarnedBy {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.EarnedBy[ids[i]].Points > s.EarnedBy[ids[j]].Points
	})

	var b strings.Builder
	for _, id := range ids {
		e := s.EarnedBy[id]
		fmt.Fprintf(&b, "• user %d: %d answers, +%d pts, +%d XP\n", id, e.Answers, e.Points, e.XP)
	}
	return strings.TrimRight(b.String(), "\n")
}

func appendUnlocked(b *strings.Builder, unlocked []game.Achievement) {
	for _, a := range unlocked {
		fmt.Fprintf(b, "\n🏅 Achievement unlocked: %s (+%d pts)", a.Name, a.Reward)
	}
}

func displayName(username string) string {
	if username == "" {
		return "someone"
	}
	return username
}

package handler

import (
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-trivia-bot/internal/content"
	"telegram-trivia-bot/internal/model"
)

// AdminHandler handles admin-only content management commands.
type AdminHandler struct {
	bank *content.Bank
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bank *content.Bank) *AdminHandler {
	return &AdminHandler{bank: bank}
}

// HandleAddQuiz handles /addquiz <difficulty> <prompt> = <answer>[, answer...]
// It adds a single-answer question to the in-memory catalog. With more
// than one answer the item becomes a multi-answer set.
func (h *AdminHandler) HandleAddQuiz(c tele.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	parts := strings.SplitN(payload, " ", 2)
	if len(parts) < 2 {
		return c.Reply("Usage: /addquiz <difficulty> <prompt> = <answer>[, answer...]")
	}

	difficulty := model.Difficulty(strings.ToLower(parts[0]))
	promptAndAnswers := strings.SplitN(parts[1], "=", 2)
	if len(promptAndAnswers) != 2 {
		return c.Reply("Usage: /addquiz <difficulty> <prompt> = <answer>[, answer...]")
	}

	prompt := strings.TrimSpace(promptAndAnswers[0])
	var answers []string
	for _, a := range strings.Split(promptAndAnswers[1], ",") {
		if a = strings.TrimSpace(a); a != "" {
			answers = append(answers, a)
		}
	}

	gameType := model.GameSingleAnswer
	if len(answers) > 1 {
		gameType = model.GameMultiAnswer
	}

	err := h.bank.Add(content.Item{
		Type:       gameType,
		Category:   "custom",
		Difficulty: difficulty,
		Prompt:     prompt,
		Answers:    answers,
	})
	if err != nil {
		return c.Reply("❌ " + err.Error())
	}

	log.Info().
		Str("game", string(gameType)).
		Str("difficulty", string(difficulty)).
		Int("answers", len(answers)).
		Msg("Custom question added")
	return c.Reply("✅ Question added.")
}

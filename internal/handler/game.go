// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-trivia-bot/internal/config"
	"telegram-trivia-bot/internal/content"
	"telegram-trivia-bot/internal/engine"
	"telegram-trivia-bot/internal/model"
)

// GameHandler handles game lifecycle commands and answer submissions.
type GameHandler struct {
	cfg    *config.Config
	engine *engine.Engine
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(cfg *config.Config, eng *engine.Engine) *GameHandler {
	return &GameHandler{cfg: cfg, engine: eng}
}

// HandleQuiz handles /quiz [difficulty] - start a single-answer round.
func (h *GameHandler) HandleQuiz(c tele.Context) error {
	return h.startGame(c, model.GameSingleAnswer)
}

// HandleMath handles /math [difficulty] - start an arithmetic round.
func (h *GameHandler) HandleMath(c tele.Context) error {
	return h.startGame(c, model.GameArithmetic)
}

// HandleGuessList handles /guesslist [difficulty] - start a multi-answer round.
func (h *GameHandler) HandleGuessList(c tele.Context) error {
	return h.startGame(c, model.GameMultiAnswer)
}

// HandleWordChain handles /wordchain [difficulty] - start a word-chain round.
func (h *GameHandler) HandleWordChain(c tele.Context) error {
	return h.startGame(c, model.GameWordChain)
}

func (h *GameHandler) startGame(c tele.Context, gameType model.GameType) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	difficulty := h.parseDifficulty(c.Args())

	_, err := h.engine.StartGame(context.Background(), chat.ID, gameType, difficulty, sender.ID)
	switch {
	case err == nil:
		// The engine already announced the challenge.
		return nil
	case errors.Is(err, engine.ErrGameActive):
		return c.Reply("⚠️ A game is already running here. Answer it, /hint, or /giveup first.")
	case errors.Is(err, engine.ErrInvalidGame):
		return c.Reply(fmt.Sprintf("❌ Unknown difficulty. Try: %s", difficultyList()))
	case errors.Is(err, content.ErrNoContent):
		return c.Reply("❌ No challenges available for that game and difficulty.")
	default:
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to start game")
		return c.Reply("❌ Something went wrong, please try again.")
	}
}

// parseDifficulty reads an optional difficulty argument, falling back
// to the configured default.
func (h *GameHandler) parseDifficulty(args []string) model.Difficulty {
	if len(args) > 0 {
		return model.Difficulty(strings.ToLower(strings.TrimSpace(args[0])))
	}
	if h.cfg != nil && h.cfg.Games.DefaultDifficulty != "" {
		return model.Difficulty(h.cfg.Games.DefaultDifficulty)
	}
	return model.DifficultyEasy
}

func difficultyList() string {
	names := make([]string, 0, 4)
	for _, d := range model.Difficulties() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

// HandleHint handles /hint - reveal a clue for the active round.
func (h *GameHandler) HandleHint(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	_, err := h.engine.RequestHint(context.Background(), chat.ID)
	switch {
	case err == nil:
		// The engine already posted the hint.
		return nil
	case errors.Is(err, engine.ErrNoActiveGame):
		return c.Reply("⚠️ No game running. Start one with /quiz, /math, /guesslist or /wordchain.")
	case errors.Is(err, engine.ErrHintsExhausted):
		return c.Reply("💡 No hints left for this round.")
	default:
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to give hint")
		return c.Reply("❌ Something went wrong, please try again.")
	}
}

// HandleGiveUp handles /giveup - end the round and reveal the answers.
func (h *GameHandler) HandleGiveUp(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	_, err := h.engine.Surrender(context.Background(), chat.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrNoActiveGame):
		return c.Reply("⚠️ Nothing to give up on.")
	default:
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to surrender game")
		return c.Reply("❌ Something went wrong, please try again.")
	}
}

// HandleText feeds every plain text message to the engine as a possible
// answer. Messages arriving while no game runs, and messages matching
// nothing, are ignored without a reply.
func (h *GameHandler) HandleText(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	_, err := h.engine.SubmitAnswer(context.Background(), chat.ID, sender.ID, sender.Username, c.Text())
	if err != nil {
		// Never reply on the hot path: a store hiccup on a random chat
		// message should not spam the group.
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to process submission")
	}
	return nil
}

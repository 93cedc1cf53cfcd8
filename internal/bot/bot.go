// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-trivia-bot/internal/config"
	"telegram-trivia-bot/internal/content"
	"telegram-trivia-bot/internal/engine"
	"telegram-trivia-bot/internal/handler"
	"telegram-trivia-bot/internal/repository"
	"telegram-trivia-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot    *tele.Bot
	cfg    *config.Config
	engine *engine.Engine

	sessionRepo *repository.SessionRepository

	gameHandler    *handler.GameHandler
	rankingHandler *handler.RankingHandler
	profileHandler *handler.ProfileHandler
	adminHandler   *handler.AdminHandler
}

// Dependencies holds everything the bot needs to build its engine and
// handlers.
type Dependencies struct {
	Config      *config.Config
	SessionRepo *repository.SessionRepository
	StatsRepo   *repository.StatsRepository
	RecordRepo  *repository.RecordRepository
	Bank        *content.Bank
	Leaderboard *service.LeaderboardService
}

// New creates a new Bot instance with the given dependencies. The bot
// itself serves as the engine's outbound notifier, so game
// announcements go through the same telebot connection as replies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:         teleBot,
		cfg:         deps.Config,
		sessionRepo: deps.SessionRepo,
	}

	b.engine = engine.New(engine.Options{
		Sessions: deps.SessionRepo,
		Stats:    deps.StatsRepo,
		Records:  deps.RecordRepo,
		Bank:     deps.Bank,
		Notifier: b,
	})

	// Initialize handlers
	b.gameHandler = handler.NewGameHandler(deps.Config, b.engine)
	b.rankingHandler = handler.NewRankingHandler(deps.Leaderboard)
	b.profileHandler = handler.NewProfileHandler(deps.Leaderboard)
	b.adminHandler = handler.NewAdminHandler(deps.Bank)

	// Register middleware
	b.registerMiddleware()

	// Register handlers
	b.registerHandlers()

	return b, nil
}

// Notify implements engine.Notifier over the telebot connection.
func (b *Bot) Notify(chatID int64, text string) error {
	_, err := b.bot.Send(&tele.Chat{ID: chatID}, text)
	return err
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())

	// Whitelist middleware - check if chat is allowed
	b.bot.Use(WhitelistMiddleware(b.cfg))

	// Logging middleware
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and text handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.profileHandler.HandleStart)
	b.bot.Handle("/help", b.profileHandler.HandleStart)

	// Game lifecycle
	b.bot.Handle("/quiz", b.gameHandler.HandleQuiz)
	b.bot.Handle("/math", b.gameHandler.HandleMath)
	b.bot.Handle("/guesslist", b.gameHandler.HandleGuessList)
	b.bot.Handle("/wordchain", b.gameHandler.HandleWordChain)
	b.bot.Handle("/hint", b.gameHandler.HandleHint)
	b.bot.Handle("/giveup", b.gameHandler.HandleGiveUp)

	// Rankings and profiles
	b.bot.Handle("/top", b.rankingHandler.HandleTop)
	b.bot.Handle("/dailytop", b.rankingHandler.HandleDailyTop)
	b.bot.Handle("/profile", b.profileHandler.HandleProfile)
	b.bot.Handle("/achievements", b.profileHandler.HandleAchievements)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/addquiz", b.adminHandler.HandleAddQuiz)

	// Every other text message might be an answer to the active round.
	b.bot.Handle(tele.OnText, b.gameHandler.HandleText)
}

// ResumeSessions re-arms round timers for sessions that survived a
// restart, timing out the ones whose window already passed.
func (b *Bot) ResumeSessions(ctx context.Context) error {
	sessions, err := b.sessionRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active sessions: %w", err)
	}
	for _, s := range sessions {
		b.engine.Resume(s)
	}
	if len(sessions) > 0 {
		log.Info().Int("count", len(sessions)).Msg("Resumed stored sessions")
	}
	return nil
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}

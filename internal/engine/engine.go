// Package engine implements the game session state machine: starting
// rounds, racing answers against the round timer, paying out scores,
// updating player statistics and unlocking achievements.
//
// Per chat the lifecycle is Idle -> Active -> {Won, TimedOut,
// Surrendered}, and every terminal state immediately collapses back to
// Idle by deleting the session. All session access for one chat runs
// under that chat's lock; chats are fully independent.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-trivia-bot/internal/content"
	"telegram-trivia-bot/internal/game"
	"telegram-trivia-bot/internal/model"
	"telegram-trivia-bot/internal/pkg/lock"
)

// Engine errors reported back to the command layer. All are recoverable.
var (
	ErrGameActive     = errors.New("a game is already active in this chat")
	ErrNoActiveGame   = errors.New("no active game in this chat")
	ErrHintsExhausted = errors.New("no hints left for this round")
	ErrInvalidGame    = errors.New("unknown game type or difficulty")
)

// timeoutOpDeadline bounds the store work done from a fired timer.
const timeoutOpDeadline = 10 * time.Second

// SessionStore persists at most one active session per chat.
// Get returns (nil, nil) when the chat is idle.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (*model.GameSession, error)
	Put(ctx context.Context, session *model.GameSession) error
	Delete(ctx context.Context, chatID int64) error
}

// StatsStore persists cumulative per-user statistics. Update is a
// read-modify-write transaction: the store loads (or lazily creates)
// the row, applies mutate, and writes it back atomically per key, so
// games finishing in different chats never lose each other's
// increments. An empty username leaves the stored one unchanged.
type StatsStore interface {
	Update(ctx context.Context, userID int64, username string, mutate func(*model.PlayerStats)) (*model.PlayerStats, error)
	Get(ctx context.Context, userID int64) (*model.PlayerStats, error)
}

// RecordStore appends per-completion history rows. Failures are logged,
// never fatal to the round.
type RecordStore interface {
	Append(ctx context.Context, rec *model.GameRecord) error
}

// ContentBank supplies one random challenge per request.
type ContentBank interface {
	Next(gameType model.GameType, difficulty model.Difficulty) (*content.Item, error)
}

// Notifier is the outbound chat transport. Delivery is fire-and-forget:
// a failed send never rolls back engine state.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Options wires an Engine's collaborators.
type Options struct {
	Sessions SessionStore
	Stats    StatsStore
	Records  RecordStore
	Bank     ContentBank
	Notifier Notifier
}

// Engine orchestrates sessions, timers, scoring and achievements.
type Engine struct {
	sessions SessionStore
	stats    StatsStore
	records  RecordStore
	bank     ContentBank
	notifier Notifier

	locks  *lock.ChatLock
	timers *TimerRegistry
	eval   *game.Evaluator

	now func() time.Time
}

// New creates an Engine. Each instance owns its own lock and timer
// registries, so isolated engines can run side by side in tests.
func New(opts Options) *Engine {
	return &Engine{
		sessions: opts.Sessions,
		stats:    opts.Stats,
		records:  opts.Records,
		bank:     opts.Bank,
		notifier: opts.Notifier,
		locks:    lock.NewChatLock(),
		timers:   NewTimerRegistry(),
		eval:     game.NewEvaluator(),
		now:      time.Now,
	}
}

// StartGame begins a round in a chat. Fails with ErrGameActive while a
// session exists; the chat must resolve or surrender it first.
func (e *Engine) StartGame(ctx context.Context, chatID int64, gameType model.GameType, difficulty model.Difficulty, requesterID int64) (*model.GameSession, error) {
	if difficulty == "" {
		difficulty = model.DifficultyEasy
	}
	if !game.ValidType(gameType) || !game.ValidDifficulty(difficulty) {
		return nil, ErrInvalidGame
	}

	var session *model.GameSession
	err := e.locks.WithLock(chatID, func() error {
		existing, err := e.sessions.Get(ctx, chatID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if existing != nil {
			return ErrGameActive
		}

		item, err := e.bank.Next(gameType, difficulty)
		if err != nil {
			return err
		}

		session = e.newSession(chatID, requesterID, item)
		if err := e.sessions.Put(ctx, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		window := time.Duration(session.WindowSeconds) * time.Second
		startedAt := session.CreatedAt
		e.timers.Schedule(chatID, window, func() { e.handleTimeout(chatID, startedAt) })

		e.notify(chatID, formatStart(session))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("chat_id", chatID).
		Str("game", string(session.Type)).
		Str("difficulty", string(session.Difficulty)).
		Int("window_s", session.WindowSeconds).
		Msg("Game started")
	return session, nil
}

func (e *Engine) newSession(chatID, requesterID int64, item *content.Item) *model.GameSession {
	points, xp := game.BaseReward(item.Type, item.Difficulty)

	s := &model.GameSession{
		ChatID:        chatID,
		Type:          item.Type,
		Category:      item.Category,
		Difficulty:    item.Difficulty,
		Prompt:        item.Prompt,
		Answers:       game.NormalizeAll(item.Answers),
		NumericAnswer: item.Numeric,
		HintText:      item.Hint,
		RewardPoints:  points,
		RewardXP:      xp,
		StarterID:     requesterID,
		CreatedAt:     e.now(),
		WindowSeconds: game.WindowSeconds(item.Type, item.Difficulty),
		MaxHints:      game.MaxHints(item.Type),
	}

	switch item.Type {
	case model.GameMultiAnswer:
		s.Found = make(map[int]int64)
	case model.GameWordChain:
		seed := s.Answers[0]
		s.LastWord = seed
		s.UsedWords = []string{seed}
		s.ChainGoal = game.ChainGoal(item.Difficulty)
	}
	return s
}

// Resume re-arms the round timer for a session loaded from the store at
// startup. A session whose window already passed times out immediately.
func (e *Engine) Resume(session *model.GameSession) {
	remaining := session.Deadline().Sub(e.now())
	if remaining < 0 {
		remaining = 0
	}
	chatID := session.ChatID
	startedAt := session.CreatedAt
	e.timers.Schedule(chatID, remaining, func() { e.handleTimeout(chatID, startedAt) })

	log.Info().
		Int64("chat_id", chatID).
		Str("game", string(session.Type)).
		Dur("remaining", remaining).
		Msg("Resumed session")
}

// Outcome classifies a SubmitAnswer result.
type Outcome int

const (
	// OutcomeNoGame means no session exists; callers treat the message
	// as ordinary chat, not an error.
	OutcomeNoGame Outcome = iota
	// OutcomeNoMatch means the submission matched nothing and was
	// silently ignored.
	OutcomeNoMatch
	// OutcomePartial means a multi-answer or chain submission was
	// credited but the round continues.
	OutcomePartial
	// OutcomeWin means the round resolved in the submitter's favor.
	OutcomeWin
)

// SubmitResult reports what a submission did.
type SubmitResult struct {
	Outcome        Outcome
	Points         int
	XP             int
	ElapsedSeconds float64
	Unlocked       []game.Achievement
}

// SubmitAnswer offers a plain-text message to the active session, if
// any. Returns OutcomeNoGame when the chat is idle so callers can fall
// through to normal command handling.
func (e *Engine) SubmitAnswer(ctx context.Context, chatID, userID int64, username, rawText string) (*SubmitResult, error) {
	text := game.Normalize(rawText)

	var result *SubmitResult
	err := e.locks.WithLock(chatID, func() error {
		session, err := e.sessions.Get(ctx, chatID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if session == nil {
			result = &SubmitResult{Outcome: OutcomeNoGame}
			return nil
		}
		if text == "" {
			result = &SubmitResult{Outcome: OutcomeNoMatch}
			return nil
		}

		switch session.Type {
		case model.GameSingleAnswer:
			if game.MatchSingle(text, session.Answers) {
				result, err = e.resolveWin(ctx, session, userID, username)
				return err
			}
		case model.GameArithmetic:
			if game.MatchNumeric(text, session.NumericAnswer) {
				result, err = e.resolveWin(ctx, session, userID, username)
				return err
			}
		case model.GameMultiAnswer:
			if idx, ok := game.MatchMulti(text, session.Answers, session.FoundIndex); ok {
				result, err = e.creditMultiAnswer(ctx, session, idx, userID, username)
				return err
			}
		case model.GameWordChain:
			if game.ValidChainWord(text, session.LastWord, session.UsedWord) {
				result, err = e.creditChainWord(ctx, session, text, userID, username)
				return err
			}
		}

		// A submission that matches nothing is silently ignored: no
		// hint reset, no streak change, no timer change.
		result = &SubmitResult{Outcome: OutcomeNoMatch}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveWin finishes a single-answer round for the submitter: score,
// stats, achievements, cleanup, notification. The timer is canceled
// only after the session is gone, so a failed store call leaves the
// round able to resolve by timeout instead of wedging the chat.
func (e *Engine) resolveWin(ctx context.Context, session *model.GameSession, userID int64, username string) (*SubmitResult, error) {
	elapsed := session.Elapsed(e.now()).Seconds()

	var points, xp int
	var unlocked []game.Achievement
	ev := game.Event{Won: true, ElapsedSeconds: elapsed, Category: session.Category, Type: session.Type}

	_, err := e.stats.Update(ctx, userID, username, func(s *model.PlayerStats) {
		applyWin(s, session, elapsed, e.now())
		points, xp = game.ComputeScore(game.ScoreInput{
			Type:           session.Type,
			Difficulty:     session.Difficulty,
			ElapsedSeconds: elapsed,
			WinStreak:      s.WinStreak,
			Won:            true,
		})
		s.TotalScore += int64(points)
		s.TotalXP += int64(xp)
		unlocked = e.eval.Evaluate(s, ev)
		for _, a := range unlocked {
			game.Unlock(s, a)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("update stats: %w", err)
	}

	if err := e.sessions.Delete(ctx, session.ChatID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	e.timers.Cancel(session.ChatID)

	e.appendRecord(ctx, &model.GameRecord{
		UserID: userID, ChatID: session.ChatID,
		Type: session.Type, Category: session.Category,
		Points: points, XP: xp, Won: true, ElapsedSeconds: elapsed,
	})

	e.notify(session.ChatID, formatWin(session, username, points, xp, elapsed, unlocked))

	log.Info().
		Int64("chat_id", session.ChatID).
		Int64("user_id", userID).
		Int("points", points).
		Float64("elapsed_s", elapsed).
		Msg("Game won")

	return &SubmitResult{
		Outcome:        OutcomeWin,
		Points:         points,
		XP:             xp,
		ElapsedSeconds: elapsed,
		Unlocked:       unlocked,
	}, nil
}

// creditMultiAnswer records one found answer. The submitter alone gets
// the fixed per-answer award; the timer keeps running until every
// answer is found.
func (e *Engine) creditMultiAnswer(ctx context.Context, session *model.GameSession, idx int, userID int64, username string) (*SubmitResult, error) {
	session.Found[idx] = userID
	session.Credit(userID, session.RewardPoints, session.RewardXP)

	if session.Complete() {
		return e.resolveTeamWin(ctx, session, userID, username)
	}

	if err := e.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if _, err := e.creditPartial(ctx, session, userID, username); err != nil {
		return nil, err
	}

	e.notify(session.ChatID, formatPartial(session, username, session.Answers[idx]))
	return &SubmitResult{
		Outcome: OutcomePartial,
		Points:  session.RewardPoints,
		XP:      session.RewardXP,
	}, nil
}

// creditChainWord accepts a valid chain word, paying the per-answer
// award, until the chain goal is reached.
func (e *Engine) creditChainWord(ctx context.Context, session *model.GameSession, word string, userID int64, username string) (*SubmitResult, error) {
	session.LastWord = word
	session.UsedWords = append(session.UsedWords, word)
	session.ChainCount++
	session.Credit(userID, session.RewardPoints, session.RewardXP)

	if session.Complete() {
		return e.resolveTeamWin(ctx, session, userID, username)
	}

	if err := e.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if _, err := e.creditPartial(ctx, session, userID, username); err != nil {
		return nil, err
	}

	e.notify(session.ChatID, formatChainAccepted(session, username, word))
	return &SubmitResult{
		Outcome: OutcomePartial,
		Points:  session.RewardPoints,
		XP:      session.RewardXP,
	}, nil
}

// creditPartial adds the per-answer award to the submitter's totals.
// Achievements wait for round completion; the evaluator runs once per
// completed game, not per partial credit.
func (e *Engine) creditPartial(ctx context.Context, session *model.GameSession, userID int64, username string) (*model.PlayerStats, error) {
	stats, err := e.stats.Update(ctx, userID, username, func(s *model.PlayerStats) {
		s.TotalScore += int64(session.RewardPoints)
		s.TotalXP += int64(session.RewardXP)
		touchDaily(s, e.now())
	})
	if err != nil {
		return nil, fmt.Errorf("update stats: %w", err)
	}
	return stats, nil
}

// resolveTeamWin finishes a multi-answer or chain round once its goal
// is met. Every contributor is credited with a win; the per-answer
// points were already paid as they landed, so only the final answer's
// award remains for the closer.
func (e *Engine) resolveTeamWin(ctx context.Context, session *model.GameSession, closerID int64, closerName string) (*SubmitResult, error) {
	elapsed := session.Elapsed(e.now()).Seconds()
	ev := game.Event{Won: true, ElapsedSeconds: elapsed, Category: session.Category, Type: session.Type}

	var closerUnlocked []game.Achievement
	for contributor := range session.EarnedBy {
		contributor := contributor
		username := ""
		if contributor == closerID {
			username = closerName
		}
		var unlocked []game.Achievement
		_, err := e.stats.Update(ctx, contributor, username, func(s *model.PlayerStats) {
			applyWin(s, session, elapsed, e.now())
			if contributor == closerID {
				// The closing answer's award lands here, inside the
				// same transaction as the win bookkeeping.
				s.TotalScore += int64(session.RewardPoints)
				s.TotalXP += int64(session.RewardXP)
			}
			unlocked = e.eval.Evaluate(s, ev)
			for _, a := range unlocked {
				game.Unlock(s, a)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("update stats for %d: %w", contributor, err)
		}
		if contributor == closerID {
			closerUnlocked = unlocked
		}

		earned := session.EarnedBy[contributor]
		e.appendRecord(ctx, &model.GameRecord{
			UserID: contributor, ChatID: session.ChatID,
			Type: session.Type, Category: session.Category,
			Points: earned.Points, XP: earned.XP, Won: true, ElapsedSeconds: elapsed,
		})
	}

	if err := e.sessions.Delete(ctx, session.ChatID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	e.timers.Cancel(session.ChatID)

	e.notify(session.ChatID, formatTeamWin(session, closerName, elapsed))

	log.Info().
		Int64("chat_id", session.ChatID).
		Int("contributors", len(session.EarnedBy)).
		Float64("elapsed_s", elapsed).
		Msg("Round completed")

	return &SubmitResult{
		Outcome:        OutcomeWin,
		Points:         session.RewardPoints,
		XP:             session.RewardXP,
		ElapsedSeconds: elapsed,
		Unlocked:       closerUnlocked,
	}, nil
}

// RequestHint reveals a progressively larger clue, spending one of the
// round's hints.
func (e *Engine) RequestHint(ctx context.Context, chatID int64) (string, error) {
	var hint string
	err := e.locks.WithLock(chatID, func() error {
		session, err := e.sessions.Get(ctx, chatID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if session == nil {
			return ErrNoActiveGame
		}
		if session.HintsGiven >= session.MaxHints {
			return ErrHintsExhausted
		}

		session.HintsGiven++
		hint = buildHint(session)
		if err := e.sessions.Put(ctx, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		e.notify(chatID, formatHint(session, hint))
		return nil
	})
	if err != nil {
		return "", err
	}
	return hint, nil
}

func buildHint(s *model.GameSession) string {
	switch s.Type {
	case model.GameArithmetic:
		return game.NumericHint(s.NumericAnswer, s.HintsGiven)
	case model.GameMultiAnswer:
		missing := s.MissingAnswers()
		if len(missing) == 0 {
			return ""
		}
		return game.WordHint(missing[0], s.HintsGiven)
	case model.GameWordChain:
		last, _ := lastRuneOf(s.LastWord)
		return fmt.Sprintf("the next word starts with %q", last)
	default:
		return game.WordHint(s.Answers[0], s.HintsGiven)
	}
}

func lastRuneOf(s string) (rune, bool) {
	var r rune
	ok := false
	for _, r = range s {
		ok = true
	}
	return r, ok
}

// Surrender ends the round without a winner, reveals the answers and
// touches no player statistics: a surrender is neither a win nor a
// counted loss.
func (e *Engine) Surrender(ctx context.Context, chatID int64) (*model.GameSession, error) {
	var session *model.GameSession
	err := e.locks.WithLock(chatID, func() error {
		s, err := e.sessions.Get(ctx, chatID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if s == nil {
			return ErrNoActiveGame
		}
		if err := e.sessions.Delete(ctx, chatID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		e.timers.Cancel(chatID)
		session = s

		e.notify(chatID, formatSurrender(s))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("chat_id", chatID).Str("game", string(session.Type)).Msg("Game surrendered")
	return session, nil
}

// handleTimeout runs when a round timer fires for the round started at
// startedAt. The session may already be gone, since a winning answer
// can resolve the round in the same instant, or it may belong to a
// newer round that replaced this timer. The first step under the lock
// is therefore a liveness and identity re-check, which makes cleanup
// idempotent and keeps a stale callback from expiring a successor.
func (e *Engine) handleTimeout(chatID int64, startedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutOpDeadline)
	defer cancel()

	_ = e.locks.WithLock(chatID, func() error {
		session, err := e.sessions.Get(ctx, chatID)
		if err != nil {
			// Timer state is already cleared; the next StartGame will
			// see whatever the store holds.
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Timeout: failed to load session")
			return nil
		}
		if session == nil || !session.CreatedAt.Equal(startedAt) {
			return nil // round already resolved or replaced, lost the race
		}

		if err := e.sessions.Delete(ctx, chatID); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Timeout: failed to delete session")
			return nil
		}

		e.recordTimeout(ctx, session)
		e.notify(chatID, formatTimeout(session))

		log.Info().
			Int64("chat_id", chatID).
			Str("game", string(session.Type)).
			Msg("Game timed out")
		return nil
	})
}

// recordTimeout applies the expiry to player statistics. The policy is
// uniform: everyone who earned partial credit this round, plus the user
// who started it, has a game counted without a win and their streak
// reset. Loss XP (the calculator's reduced rate) still accrues.
func (e *Engine) recordTimeout(ctx context.Context, session *model.GameSession) {
	elapsed := float64(session.WindowSeconds)
	_, lossXP := game.ComputeScore(game.ScoreInput{
		Type:           session.Type,
		Difficulty:     session.Difficulty,
		ElapsedSeconds: elapsed,
		Won:            false,
	})
	ev := game.Event{Won: false, ElapsedSeconds: elapsed, Category: session.Category, Type: session.Type}

	participants := make(map[int64]bool)
	for userID := range session.EarnedBy {
		participants[userID] = true
	}
	if session.StarterID != 0 {
		participants[session.StarterID] = true
	}

	for userID := range participants {
		_, err := e.stats.Update(ctx, userID, "", func(s *model.PlayerStats) {
			s.TotalGames++
			s.WinStreak = 0
			s.TotalXP += int64(lossXP)
			touchDaily(s, e.now())
			for _, a := range e.eval.Evaluate(s, ev) {
				game.Unlock(s, a)
			}
		})
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("Timeout: failed to update stats")
			continue
		}
		e.appendRecord(ctx, &model.GameRecord{
			UserID: userID, ChatID: session.ChatID,
			Type: session.Type, Category: session.Category,
			XP: lossXP, Won: false, ElapsedSeconds: elapsed,
		})
	}
}

// applyWin mutates a stats row for one more win: counts, streaks, speed
// aggregates and the daily-play counter. Score and XP are added by the
// caller, which also runs the achievement evaluator in the same
// transaction.
func applyWin(s *model.PlayerStats, session *model.GameSession, elapsed float64, now time.Time) {
	s.TotalGames++
	s.TotalWins++
	s.WinStreak++
	if s.WinStreak > s.BestStreak {
		s.BestStreak = s.WinStreak
	}

	if s.WinsByType == nil {
		s.WinsByType = make(map[model.GameType]int)
	}
	s.WinsByType[session.Type]++
	if s.WinsByCategory == nil {
		s.WinsByCategory = make(map[string]int)
	}
	s.WinsByCategory[session.Category]++

	if s.FastestWinSeconds == 0 || elapsed < s.FastestWinSeconds {
		s.FastestWinSeconds = elapsed
	}
	wins := float64(s.TotalWins)
	s.AverageWinSeconds = (s.AverageWinSeconds*(wins-1) + elapsed) / wins

	touchDaily(s, now)
}

// touchDaily maintains the consecutive-day play counter.
func touchDaily(s *model.PlayerStats, now time.Time) {
	today := now.Format("2006-01-02")
	if s.LastPlayDate == today {
		return
	}
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if s.LastPlayDate == yesterday {
		s.ConsecutiveDays++
	} else {
		s.ConsecutiveDays = 1
	}
	s.LastPlayDate = today
}

func (e *Engine) appendRecord(ctx context.Context, rec *model.GameRecord) {
	if e.records == nil {
		return
	}
	if err := e.records.Append(ctx, rec); err != nil {
		log.Error().Err(err).Int64("user_id", rec.UserID).Msg("Failed to append game record")
	}
}

// notify sends fire-and-forget. Game state never depends on delivery.
func (e *Engine) notify(chatID int64, text string) {
	if e.notifier == nil || text == "" {
		return
	}
	if err := e.notifier.Notify(chatID, text); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to deliver notification")
	}
}

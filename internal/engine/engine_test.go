package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-trivia-bot/internal/content"
	"telegram-trivia-bot/internal/game"
	"telegram-trivia-bot/internal/model"
)

// ----------------------------------------------------------------------------
// In-memory fakes
// ----------------------------------------------------------------------------

type memSessions struct {
	mu sync.Mutex
	m  map[int64]*model.GameSession
}

func newMemSessions() *memSessions {
	return &memSessions{m: make(map[int64]*model.GameSession)}
}

func (s *memSessions) Get(_ context.Context, chatID int64) (*model.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID], nil
}

func (s *memSessions) Put(_ context.Context, session *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[session.ChatID] = session
	return nil
}

func (s *memSessions) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
	return nil
}

type memStats struct {
	mu sync.Mutex
	m  map[int64]*model.PlayerStats
}

func newMemStats() *memStats {
	return &memStats{m: make(map[int64]*model.PlayerStats)}
}

func (s *memStats) Update(_ context.Context, userID int64, username string, mutate func(*model.PlayerStats)) (*model.PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok := s.m[userID]
	if !ok {
		ps = &model.PlayerStats{UserID: userID}
		s.m[userID] = ps
	}
	if username != "" {
		ps.Username = username
	}
	mutate(ps)
	return ps, nil
}

func (s *memStats) Get(_ context.Context, userID int64) (*model.PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID], nil
}

func (s *memStats) stats(userID int64) *model.PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

type memRecords struct {
	mu   sync.Mutex
	recs []*model.GameRecord
}

func (r *memRecords) Append(_ context.Context, rec *model.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

type memNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *memNotifier) Notify(_ int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, text)
	return nil
}

func (n *memNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func (n *memNotifier) containing(sub string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.msgs {
		if strings.Contains(m, sub) {
			c++
		}
	}
	return c
}

type fakeBank struct {
	item *content.Item
	err  error
}

func (b *fakeBank) Next(model.GameType, model.Difficulty) (*content.Item, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.item, nil
}

// ----------------------------------------------------------------------------
// Harness
// ----------------------------------------------------------------------------

type harness struct {
	engine   *Engine
	sessions *memSessions
	stats    *memStats
	records  *memRecords
	notifier *memNotifier
	clock    time.Time
}

func newHarness(t *testing.T, item *content.Item) *harness {
	t.Helper()
	h := &harness{
		sessions: newMemSessions(),
		stats:    newMemStats(),
		records:  &memRecords{},
		notifier: &memNotifier{},
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.engine = New(Options{
		Sessions: h.sessions,
		Stats:    h.stats,
		Records:  h.records,
		Bank:     &fakeBank{item: item},
		Notifier: h.notifier,
	})
	h.engine.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func arithmeticItem() *content.Item {
	return &content.Item{
		Type: model.GameArithmetic, Category: "arithmetic", Difficulty: model.DifficultyEasy,
		Prompt: "7 + 8 = ?", Answers: []string{"15"}, Numeric: 15,
	}
}

func triviaItem() *content.Item {
	return &content.Item{
		Type: model.GameSingleAnswer, Category: "geography", Difficulty: model.DifficultyEasy,
		Prompt: "Capital of France?", Answers: []string{"Paris"},
	}
}

func multiItem() *content.Item {
	return &content.Item{
		Type: model.GameMultiAnswer, Category: "household", Difficulty: model.DifficultyEasy,
		Prompt: "Name 3 things in a bedroom", Answers: []string{"kasur", "bantal", "lemari"},
	}
}

func chainItem() *content.Item {
	return &content.Item{
		Type: model.GameWordChain, Category: "wordchain", Difficulty: model.DifficultyEasy,
		Prompt: "Word chain!", Answers: []string{"orange"},
	}
}

const (
	chatID = int64(-100123)
	alice  = int64(11)
	bob    = int64(22)
)

// ----------------------------------------------------------------------------
// StartGame
// ----------------------------------------------------------------------------

func TestStartGame(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	session, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	assert.Equal(t, chatID, session.ChatID)
	assert.Equal(t, 80, session.RewardPoints, "base 80 at multiplier 1.0")
	assert.Equal(t, 30, session.WindowSeconds)
	assert.Equal(t, alice, session.StarterID)
	assert.True(t, h.engine.timers.Active(chatID))
	assert.Equal(t, 1, h.notifier.count(), "challenge announced")
}

func TestStartGameAlreadyActive(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	_, err = h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, bob)
	assert.ErrorIs(t, err, ErrGameActive)

	// Other chats are unaffected.
	_, err = h.engine.StartGame(ctx, chatID+1, model.GameArithmetic, model.DifficultyEasy, bob)
	assert.NoError(t, err)
}

func TestStartGameInvalidType(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	_, err := h.engine.StartGame(context.Background(), chatID, "roulette", model.DifficultyEasy, alice)
	assert.ErrorIs(t, err, ErrInvalidGame)
}

func TestStartGameNoContent(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.bank = &fakeBank{err: content.ErrNoContent}

	_, err := h.engine.StartGame(context.Background(), chatID, model.GameSingleAnswer, model.DifficultyEasy, alice)
	assert.ErrorIs(t, err, content.ErrNoContent)
}

// ----------------------------------------------------------------------------
// SubmitAnswer: single-answer and arithmetic
// ----------------------------------------------------------------------------

func TestSubmitAnswerNoActiveGame(t *testing.T) {
	h := newHarness(t, arithmeticItem())

	res, err := h.engine.SubmitAnswer(context.Background(), chatID, alice, "alice", "hello")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoGame, res.Outcome, "pass-through, not an error")
}

func TestWinArithmetic(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	h.advance(6 * time.Second)
	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "15")
	require.NoError(t, err)
	require.Equal(t, OutcomeWin, res.Outcome)

	// base 80 + floor((30-6)*1.5)=36 time bonus + 10 streak bonus
	assert.Equal(t, 126, res.Points)
	assert.GreaterOrEqual(t, res.Points, 90)
	assert.Equal(t, 126/5+25, res.XP)
	assert.InDelta(t, 6.0, res.ElapsedSeconds, 0.01)

	stats := h.stats.stats(alice)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.TotalGames)
	assert.Equal(t, 1, stats.TotalWins)
	assert.Equal(t, 1, stats.WinStreak)
	assert.Equal(t, "alice", stats.Username)
	// Score includes the first-win achievement reward.
	firstWin, _ := game.CatalogByID("first_win")
	assert.Equal(t, int64(126+firstWin.Reward), stats.TotalScore)

	// Session gone, timer gone, outcome announced once.
	s, _ := h.sessions.Get(ctx, chatID)
	assert.Nil(t, s)
	assert.False(t, h.engine.timers.Active(chatID))
	assert.Equal(t, 1, h.notifier.containing("🎉"))
}

func TestArithmeticNumericEquivalence(t *testing.T) {
	for _, submission := range []string{"12", "12.0", " 12 "} {
		t.Run(submission, func(t *testing.T) {
			item := &content.Item{
				Type: model.GameArithmetic, Category: "arithmetic", Difficulty: model.DifficultyEasy,
				Prompt: "5 + 7 = ?", Answers: []string{"12"}, Numeric: 12,
			}
			h := newHarness(t, item)
			ctx := context.Background()

			_, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
			require.NoError(t, err)

			res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", submission)
			require.NoError(t, err)
			assert.Equal(t, OutcomeWin, res.Outcome)
		})
	}
}

func TestNonNumericArithmeticSubmissionIgnored(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "maybe fifteen?")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)

	// The round is untouched: session alive, timer alive, no stats.
	s, _ := h.sessions.Get(ctx, chatID)
	require.NotNil(t, s)
	assert.True(t, h.engine.timers.Active(chatID))
	assert.Nil(t, h.stats.stats(alice))
}

func TestWinSingleAnswerExactOnly(t *testing.T) {
	h := newHarness(t, triviaItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameSingleAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)

	res, err := h.engine.SubmitAnswer(ctx, chatID, bob, "bob", "paris city")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome, "substring match is not enough")

	res, err = h.engine.SubmitAnswer(ctx, chatID, bob, "bob", "  PARIS ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWin, res.Outcome, "normalization applies before comparison")
}

// TestNoDoubleWin: two correct answers racing each other produce exactly
// one award and one terminal notification.
func TestNoDoubleWin(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	outcomes := make(chan Outcome, 2)
	var wg sync.WaitGroup
	for _, user := range []int64{alice, bob} {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			res, err := h.engine.SubmitAnswer(ctx, chatID, uid, "", "15")
			require.NoError(t, err)
			outcomes <- res.Outcome
		}(user)
	}
	wg.Wait()
	close(outcomes)

	wins, noGames := 0, 0
	for o := range outcomes {
		switch o {
		case OutcomeWin:
			wins++
		case OutcomeNoGame:
			noGames++
		}
	}
	assert.Equal(t, 1, wins, "exactly one submission wins")
	assert.Equal(t, 1, noGames, "the loser sees the session already gone")

	totalWins := 0
	for _, uid := range []int64{alice, bob} {
		if s := h.stats.stats(uid); s != nil {
			totalWins += s.TotalWins
		}
	}
	assert.Equal(t, 1, totalWins)
	assert.Equal(t, 1, h.notifier.containing("🎉"))
}

// ----------------------------------------------------------------------------
// Multi-answer rounds
// ----------------------------------------------------------------------------

func TestMultiAnswerPartialCreditAndTimeout(t *testing.T) {
	h := newHarness(t, multiItem())
	ctx := context.Background()

	session, err := h.engine.StartGame(ctx, chatID, model.GameMultiAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)

	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "bantal")
	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, res.Outcome)
	assert.Equal(t, 40, res.Points, "fixed per-answer award")
	assert.True(t, h.engine.timers.Active(chatID), "timer keeps running on partial credit")

	res, err = h.engine.SubmitAnswer(ctx, chatID, bob, "bob", "lemari")
	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, res.Outcome)

	// Partial credit lands immediately on the submitter's totals.
	assert.Equal(t, int64(40), h.stats.stats(alice).TotalScore)
	assert.Equal(t, int64(40), h.stats.stats(bob).TotalScore)
	assert.Equal(t, 0, h.stats.stats(alice).TotalGames, "a game is counted only at round end")

	h.engine.handleTimeout(chatID, session.CreatedAt)

	// Two credited answers, one missing; the missing one is listed.
	assert.Equal(t, 1, h.notifier.containing("kasur"))
	assert.Equal(t, 1, h.notifier.containing("Time's up"))

	// Both contributors get a counted game without a win.
	for _, uid := range []int64{alice, bob} {
		s := h.stats.stats(uid)
		assert.Equal(t, 1, s.TotalGames)
		assert.Equal(t, 0, s.TotalWins)
		assert.Equal(t, 0, s.WinStreak)
	}
}

func TestMultiAnswerNoDoubleCredit(t *testing.T) {
	h := newHarness(t, multiItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameMultiAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)

	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "bantal")
	require.NoError(t, err)
	require.Equal(t, OutcomePartial, res.Outcome)

	// Same answer again, by the same and by a different user.
	res, err = h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "bantal")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)

	res, err = h.engine.SubmitAnswer(ctx, chatID, bob, "bob", "bantal")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)

	assert.Equal(t, int64(40), h.stats.stats(alice).TotalScore, "credited once")
	assert.Nil(t, h.stats.stats(bob))
}

func TestMultiAnswerCompletion(t *testing.T) {
	h := newHarness(t, multiItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameMultiAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)
	h.advance(10 * time.Second)

	for _, sub := range []struct {
		uid  int64
		text string
	}{{alice, "kasur"}, {bob, "bantal"}, {alice, "lemari"}} {
		_, err := h.engine.SubmitAnswer(ctx, chatID, sub.uid, "", sub.text)
		require.NoError(t, err)
	}

	// Round resolved: session gone, timer canceled, both win.
	s, _ := h.sessions.Get(ctx, chatID)
	assert.Nil(t, s)
	assert.False(t, h.engine.timers.Active(chatID))

	for _, uid := range []int64{alice, bob} {
		st := h.stats.stats(uid)
		assert.Equal(t, 1, st.TotalWins)
		assert.Equal(t, 1, st.WinStreak)
	}

	// Two answers at the fixed award each, plus the first-win reward.
	firstWin, _ := game.CatalogByID("first_win")
	assert.Equal(t, int64(2*40+firstWin.Reward), h.stats.stats(alice).TotalScore)
}

// ----------------------------------------------------------------------------
// Word chain
// ----------------------------------------------------------------------------

func TestWordChainRound(t *testing.T) {
	h := newHarness(t, chainItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameWordChain, model.DifficultyEasy, alice)
	require.NoError(t, err)

	// Wrong starting letter: silently ignored.
	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "melon")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)

	// orange -> elephant -> tomato -> orbit: goal of 3 reached.
	for i, word := range []string{"elephant", "tomato", "orbit"} {
		res, err = h.engine.SubmitAnswer(ctx, chatID, alice, "alice", word)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, OutcomePartial, res.Outcome)
		} else {
			assert.Equal(t, OutcomeWin, res.Outcome)
		}
	}

	st := h.stats.stats(alice)
	assert.Equal(t, 1, st.TotalWins)
	s, _ := h.sessions.Get(ctx, chatID)
	assert.Nil(t, s)
}

func TestWordChainRejectsRepeats(t *testing.T) {
	h := newHarness(t, chainItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameWordChain, model.DifficultyEasy, alice)
	require.NoError(t, err)

	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "elephant")
	require.NoError(t, err)
	require.Equal(t, OutcomePartial, res.Outcome)

	// "tomato" then back to "orange": the seed word is already used.
	res, err = h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "tomato")
	require.NoError(t, err)
	require.Equal(t, OutcomePartial, res.Outcome)

	res, err = h.engine.SubmitAnswer(ctx, chatID, bob, "bob", "orange")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
}

// ----------------------------------------------------------------------------
// Hints
// ----------------------------------------------------------------------------

func TestRequestHintBudget(t *testing.T) {
	h := newHarness(t, triviaItem())
	ctx := context.Background()

	session, err := h.engine.StartGame(ctx, chatID, model.GameSingleAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)
	require.Equal(t, 2, session.MaxHints)

	hint, err := h.engine.RequestHint(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "p____", hint)

	hint, err = h.engine.RequestHint(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "pa___", hint)

	_, err = h.engine.RequestHint(ctx, chatID)
	assert.ErrorIs(t, err, ErrHintsExhausted)
}

func TestRequestHintNumericRange(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	hint, err := h.engine.RequestHint(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "between 12 and 18", hint)
}

func TestRequestHintNoActiveGame(t *testing.T) {
	h := newHarness(t, triviaItem())
	_, err := h.engine.RequestHint(context.Background(), chatID)
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

// ----------------------------------------------------------------------------
// Surrender and timeout
// ----------------------------------------------------------------------------

func TestSurrender(t *testing.T) {
	h := newHarness(t, triviaItem())
	ctx := context.Background()

	_, err := h.engine.StartGame(ctx, chatID, model.GameSingleAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)

	session, err := h.engine.Surrender(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, []string{"paris"}, session.Answers)
	assert.Equal(t, 1, h.notifier.containing("paris"), "answer revealed")

	// A surrender is neither a win nor a counted loss.
	assert.Nil(t, h.stats.stats(alice))
	assert.False(t, h.engine.timers.Active(chatID))

	_, err = h.engine.Surrender(ctx, chatID)
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

func TestTimeoutRecordsLossForStarter(t *testing.T) {
	h := newHarness(t, triviaItem())
	ctx := context.Background()

	session, err := h.engine.StartGame(ctx, chatID, model.GameSingleAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)

	h.engine.handleTimeout(chatID, session.CreatedAt)

	st := h.stats.stats(alice)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.TotalGames)
	assert.Equal(t, 0, st.TotalWins)
	assert.Equal(t, 0, st.WinStreak)
	assert.Equal(t, 1, h.notifier.containing("paris"), "canonical answer revealed")
}

// TestTimeoutIdempotence: a timer callback invoked after the round has
// already resolved does nothing: no state change, no second terminal
// notification.
func TestTimeoutIdempotence(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	session, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "15")
	require.NoError(t, err)
	require.Equal(t, OutcomeWin, res.Outcome)

	before := h.notifier.count()
	statsBefore := *h.stats.stats(alice)

	h.engine.handleTimeout(chatID, session.CreatedAt)
	h.engine.handleTimeout(chatID, session.CreatedAt)

	assert.Equal(t, before, h.notifier.count(), "no duplicate time's-up message")
	assert.Equal(t, statsBefore.TotalGames, h.stats.stats(alice).TotalGames)
	assert.Equal(t, statsBefore.WinStreak, h.stats.stats(alice).WinStreak)
}

// TestTimeoutStaleRoundCallback: a callback armed for an earlier round
// must not expire the round that replaced it. The round identity check
// keeps a late fire from a resolved round scoped to that round only.
func TestTimeoutStaleRoundCallback(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	first, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)

	h.advance(6 * time.Second)
	res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "15")
	require.NoError(t, err)
	require.Equal(t, OutcomeWin, res.Outcome)

	h.advance(time.Second)
	second, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, bob)
	require.NoError(t, err)
	require.False(t, second.CreatedAt.Equal(first.CreatedAt))

	// The first round's callback fires late, after its round resolved
	// and a new one took its place.
	h.engine.handleTimeout(chatID, first.CreatedAt)

	live, err := h.sessions.Get(ctx, chatID)
	require.NoError(t, err)
	require.NotNil(t, live, "current round survives a stale callback")
	assert.True(t, live.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, 0, h.notifier.containing("Time's up"))
	assert.Nil(t, h.stats.stats(bob), "no loss charged to the new round's starter")

	// The new round still resolves normally.
	res, err = h.engine.SubmitAnswer(ctx, chatID, bob, "bob", "15")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWin, res.Outcome)
}

func TestTimeoutStoreFailureClearsTimerState(t *testing.T) {
	h := newHarness(t, triviaItem())
	ctx := context.Background()

	session, err := h.engine.StartGame(ctx, chatID, model.GameSingleAnswer, model.DifficultyEasy, alice)
	require.NoError(t, err)

	h.engine.sessions = failingSessions{err: errors.New("store unavailable")}
	h.engine.handleTimeout(chatID, session.CreatedAt) // must not panic, must not notify

	assert.Equal(t, 1, h.notifier.count(), "only the start announcement went out")
}

type failingSessions struct{ err error }

func (f failingSessions) Get(context.Context, int64) (*model.GameSession, error) { return nil, f.err }
func (f failingSessions) Put(context.Context, *model.GameSession) error          { return f.err }
func (f failingSessions) Delete(context.Context, int64) error                    { return f.err }

// ----------------------------------------------------------------------------
// Streaks
// ----------------------------------------------------------------------------

func TestWinStreakGrowsAndResets(t *testing.T) {
	h := newHarness(t, arithmeticItem())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
		require.NoError(t, err)
		res, err := h.engine.SubmitAnswer(ctx, chatID, alice, "alice", "15")
		require.NoError(t, err)
		require.Equal(t, OutcomeWin, res.Outcome)
	}
	assert.Equal(t, 3, h.stats.stats(alice).WinStreak)
	assert.Equal(t, 3, h.stats.stats(alice).BestStreak)

	// A timed-out round resets the starter's streak but keeps the best.
	session, err := h.engine.StartGame(ctx, chatID, model.GameArithmetic, model.DifficultyEasy, alice)
	require.NoError(t, err)
	h.engine.handleTimeout(chatID, session.CreatedAt)

	assert.Equal(t, 0, h.stats.stats(alice).WinStreak)
	assert.Equal(t, 3, h.stats.stats(alice).BestStreak)
}

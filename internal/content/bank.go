// Package content supplies the challenges the engine plays: trivia
// questions, riddles, scrambles, enumeration sets, word-chain seeds and
// generated arithmetic problems, keyed by game type and difficulty.
package content

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"telegram-trivia-bot/internal/model"
)

// ErrNoContent is returned when no item exists for the requested game
// type and difficulty.
var ErrNoContent = errors.New("no content available for this game and difficulty")

// Item is one playable challenge.
type Item struct {
	Type       model.GameType
	Category   string
	Difficulty model.Difficulty
	Prompt     string
	// Answers are the acceptable answers as authored; the engine
	// normalizes them at session creation.
	Answers []string
	// Numeric carries the parsed value for arithmetic items.
	Numeric float64
	Hint    string
}

// Bank hands out uniformly-random items. Safe for concurrent use.
type Bank struct {
	mu    sync.Mutex
	rng   *rand.Rand
	items map[model.GameType][]Item
}

// Option configures a Bank.
type Option func(*Bank)

// WithItems adds extra items on top of the built-in catalog. Tests use
// this to play deterministic content.
func WithItems(items ...Item) Option {
	return func(b *Bank) {
		for _, it := range items {
			b.items[it.Type] = append(b.items[it.Type], it)
		}
	}
}

// WithoutBuiltins drops the built-in catalog so only WithItems content
// is served.
func WithoutBuiltins() Option {
	return func(b *Bank) {
		b.items = make(map[model.GameType][]Item)
	}
}

// WithSeed fixes the random source, for reproducible tests.
func WithSeed(seed int64) Option {
	return func(b *Bank) {
		b.rng = rand.New(rand.NewSource(seed))
	}
}

// NewBank creates a Bank over the built-in catalog.
func NewBank(opts ...Option) *Bank {
	b := &Bank{
		rng:   rand.New(rand.NewSource(rand.Int63())),
		items: make(map[model.GameType][]Item),
	}
	for _, it := range builtinItems {
		b.items[it.Type] = append(b.items[it.Type], it)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Next returns one random item for the game type and difficulty.
// Arithmetic items are generated, everything else is drawn from the
// catalog. Fails with ErrNoContent when the combination is exhausted.
func (b *Bank) Next(gameType model.GameType, difficulty model.Difficulty) (*Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gameType == model.GameArithmetic {
		item := b.generateArithmetic(difficulty)
		return &item, nil
	}

	var eligible []Item
	for _, it := range b.items[gameType] {
		if it.Difficulty == difficulty {
			eligible = append(eligible, it)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoContent
	}

	item := eligible[b.rng.Intn(len(eligible))]
	return &item, nil
}

// generateArithmetic builds an expression whose operand sizes and
// operator mix scale with difficulty.
func (b *Bank) generateArithmetic(difficulty model.Difficulty) Item {
	var prompt string
	var answer float64

	switch difficulty {
	case model.DifficultyMedium:
		a, c := b.rng.Intn(50)+10, b.rng.Intn(50)+10
		if b.rng.Intn(2) == 0 {
			prompt, answer = fmt.Sprintf("%d + %d = ?", a, c), float64(a+c)
		} else {
			prompt, answer = fmt.Sprintf("%d - %d = ?", a, c), float64(a-c)
		}
	case model.DifficultyHard:
		a, c := b.rng.Intn(11)+2, b.rng.Intn(11)+2
		prompt, answer = fmt.Sprintf("%d × %d = ?", a, c), float64(a*c)
	case model.DifficultyExtreme:
		a, c := b.rng.Intn(19)+2, b.rng.Intn(19)+2
		d := b.rng.Intn(90) + 10
		if b.rng.Intn(2) == 0 {
			prompt, answer = fmt.Sprintf("%d × %d + %d = ?", a, c, d), float64(a*c+d)
		} else {
			prompt, answer = fmt.Sprintf("%d × %d - %d = ?", a, c, d), float64(a*c-d)
		}
	default: // easy
		a, c := b.rng.Intn(19)+1, b.rng.Intn(19)+1
		prompt, answer = fmt.Sprintf("%d + %d = ?", a, c), float64(a+c)
	}

	return Item{
		Type:       model.GameArithmetic,
		Category:   "arithmetic",
		Difficulty: difficulty,
		Prompt:     prompt,
		Answers:    []string{fmt.Sprintf("%v", answer)},
		Numeric:    answer,
	}
}

// Add appends an item to the catalog at runtime, serving it from the
// next draw on. Admins use this to feed in chat-specific questions.
func (b *Bank) Add(item Item) error {
	if item.Prompt == "" || len(item.Answers) == 0 {
		return errors.New("content item needs a prompt and at least one answer")
	}
	if item.Difficulty == "" {
		item.Difficulty = model.DifficultyEasy
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[item.Type] = append(b.items[item.Type], item)
	return nil
}

// Count returns how many catalog items exist for a type and difficulty.
func (b *Bank) Count(gameType model.GameType, difficulty model.Difficulty) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, it := range b.items[gameType] {
		if it.Difficulty == difficulty {
			n++
		}
	}
	return n
}

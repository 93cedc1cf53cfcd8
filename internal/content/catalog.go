package content

import "telegram-trivia-bot/internal/model"

// builtinItems is the static content catalog. Arithmetic is generated,
// so it has no entries here.
var builtinItems = []Item{
	// Trivia, easy
	{
		Type: model.GameSingleAnswer, Category: "geography", Difficulty: model.DifficultyEasy,
		Prompt:  "What is the capital city of France?",
		Answers: []string{"paris"},
		Hint:    "paris",
	},
	{
		Type: model.GameSingleAnswer, Category: "geography", Difficulty: model.DifficultyEasy,
		Prompt:  "Which continent is the Sahara desert in?",
		Answers: []string{"africa"},
		Hint:    "africa",
	},
	{
		Type: model.GameSingleAnswer, Category: "science", Difficulty: model.DifficultyEasy,
		Prompt:  "What planet is known as the Red Planet?",
		Answers: []string{"mars"},
		Hint:    "mars",
	},
	{
		Type: model.GameSingleAnswer, Category: "animals", Difficulty: model.DifficultyEasy,
		Prompt:  "What is the tallest land animal?",
		Answers: []string{"giraffe"},
		Hint:    "giraffe",
	},

	// Trivia, medium
	{
		Type: model.GameSingleAnswer, Category: "geography", Difficulty: model.DifficultyMedium,
		Prompt:  "Which river is the longest in the world?",
		Answers: []string{"nile", "the nile"},
		Hint:    "nile",
	},
	{
		Type: model.GameSingleAnswer, Category: "science", Difficulty: model.DifficultyMedium,
		Prompt:  "What gas do plants absorb from the atmosphere?",
		Answers: []string{"carbon dioxide", "co2"},
		Hint:    "carbon dioxide",
	},
	{
		Type: model.GameSingleAnswer, Category: "history", Difficulty: model.DifficultyMedium,
		Prompt:  "In which year did the Second World War end?",
		Answers: []string{"1945"},
		Hint:    "1945",
	},

	// Riddles, hard
	{
		Type: model.GameSingleAnswer, Category: "riddle", Difficulty: model.DifficultyHard,
		Prompt:  "I speak without a mouth and hear without ears. What am I?",
		Answers: []string{"echo", "an echo"},
		Hint:    "echo",
	},
	{
		Type: model.GameSingleAnswer, Category: "riddle", Difficulty: model.DifficultyHard,
		Prompt:  "The more of me you take, the more you leave behind. What am I?",
		Answers: []string{"footsteps", "steps"},
		Hint:    "footsteps",
	},
	{
		Type: model.GameSingleAnswer, Category: "riddle", Difficulty: model.DifficultyHard,
		Prompt:  "What has keys but can't open locks?",
		Answers: []string{"piano", "a piano", "keyboard"},
		Hint:    "piano",
	},

	// Scrambles, extreme
	{
		Type: model.GameSingleAnswer, Category: "scramble", Difficulty: model.DifficultyExtreme,
		Prompt:  "Unscramble: RAPCTEHLIOE",
		Answers: []string{"helicopter"},
		Hint:    "helicopter",
	},
	{
		Type: model.GameSingleAnswer, Category: "scramble", Difficulty: model.DifficultyExtreme,
		Prompt:  "Unscramble: NTAIVIGAON",
		Answers: []string{"navigation"},
		Hint:    "navigation",
	},

	// Enumeration sets
	{
		Type: model.GameMultiAnswer, Category: "household", Difficulty: model.DifficultyEasy,
		Prompt:  "Name 3 things you find in a bedroom",
		Answers: []string{"bed", "pillow", "wardrobe"},
	},
	{
		Type: model.GameMultiAnswer, Category: "food", Difficulty: model.DifficultyEasy,
		Prompt:  "Name 3 yellow fruits",
		Answers: []string{"banana", "lemon", "mango"},
	},
	{
		Type: model.GameMultiAnswer, Category: "geography", Difficulty: model.DifficultyMedium,
		Prompt:  "Name 4 countries in Southeast Asia",
		Answers: []string{"indonesia", "malaysia", "thailand", "vietnam"},
	},
	{
		Type: model.GameMultiAnswer, Category: "science", Difficulty: model.DifficultyHard,
		Prompt:  "Name 5 planets of the solar system",
		Answers: []string{"mercury", "venus", "earth", "mars", "jupiter"},
	},
	{
		Type: model.GameMultiAnswer, Category: "sports", Difficulty: model.DifficultyExtreme,
		Prompt:  "Name 6 Olympic sports",
		Answers: []string{"swimming", "athletics", "gymnastics", "rowing", "boxing", "judo"},
	},

	// Word-chain seed words: the answer slot carries the opening word.
	{
		Type: model.GameWordChain, Category: "wordchain", Difficulty: model.DifficultyEasy,
		Prompt: "Word chain! Continue from the last letter.", Answers: []string{"orange"},
	},
	{
		Type: model.GameWordChain, Category: "wordchain", Difficulty: model.DifficultyMedium,
		Prompt: "Word chain! Continue from the last letter.", Answers: []string{"garden"},
	},
	{
		Type: model.GameWordChain, Category: "wordchain", Difficulty: model.DifficultyHard,
		Prompt: "Word chain! Continue from the last letter.", Answers: []string{"rhythm"},
	},
	{
		Type: model.GameWordChain, Category: "wordchain", Difficulty: model.DifficultyExtreme,
		Prompt: "Word chain! Continue from the last letter.", Answers: []string{"oxygen"},
	},
}

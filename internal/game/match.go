package game

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Normalize lower-cases and trims a submission or canonical answer.
// All matching in this package operates on normalized strings.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeAll normalizes a slice of canonical answers at session creation.
func NormalizeAll(answers []string) []string {
	out := make([]string, len(answers))
	for i, a := range answers {
		out[i] = Normalize(a)
	}
	return out
}

// MatchSingle reports whether a normalized submission exactly equals any
// canonical answer. Single-answer games accept nothing less.
func MatchSingle(submission string, answers []string) bool {
	for _, a := range answers {
		if submission == a {
			return true
		}
	}
	return false
}

// ParseNumber parses a submission as a number. Returns false for
// anything that is not numeric; the engine treats that as "no match",
// not as an error, so ordinary chat text passes through.
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MatchNumeric reports whether the submission is numerically equal to
// the canonical answer: "7.0" equals 7, string equality plays no part.
func MatchNumeric(submission string, answer float64) bool {
	v, ok := ParseNumber(submission)
	return ok && v == answer
}

// MatchMulti finds the first unmatched answer index the submission
// satisfies. Already-found indices (per isFound) are skipped so an
// answer is never credited twice.
//
// The rule is intentionally lenient: the submission matches answer i if
// it equals, contains or is contained by the canonical answer, or if any
// whitespace token of the submission equals/contains/is-contained-by any
// token of that answer. Natural-language enumeration answers vary in
// phrasing.
func MatchMulti(submission string, answers []string, isFound func(int) bool) (int, bool) {
	if submission == "" {
		return 0, false
	}
	for i, a := range answers {
		if isFound != nil && isFound(i) {
			continue
		}
		if fuzzyMatch(submission, a) {
			return i, true
		}
	}
	return 0, false
}

func fuzzyMatch(submission, answer string) bool {
	if submission == answer {
		return true
	}
	if strings.Contains(submission, answer) || strings.Contains(answer, submission) {
		return true
	}
	for _, st := range strings.Fields(submission) {
		for _, at := range strings.Fields(answer) {
			if st == at || strings.Contains(st, at) || strings.Contains(at, st) {
				return true
			}
		}
	}
	return false
}

// ValidChainWord reports whether a normalized submission is a legal next
// word in a chain round: longer than 2 characters, starts with the final
// character of the previous accepted word, and not already used.
func ValidChainWord(word, lastWord string, alreadyUsed func(string) bool) bool {
	if utf8.RuneCountInString(word) <= 2 {
		return false
	}
	if strings.ContainsAny(word, " \t\n") {
		return false
	}
	last, size := lastRune(lastWord)
	if size == 0 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	if first != last {
		return false
	}
	if alreadyUsed != nil && alreadyUsed(word) {
		return false
	}
	return true
}

func lastRune(s string) (r rune, size int) {
	if s == "" {
		return 0, 0
	}
	return utf8.DecodeLastRuneInString(s)
}

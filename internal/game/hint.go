package game

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// WordHint reveals the leading characters of a word answer, one more per
// hint given, capped at half the word length. Unrevealed letters are
// masked; spaces stay visible so the word shape reads through.
func WordHint(answer string, hintsGiven int) string {
	runes := []rune(answer)
	reveal := hintsGiven
	if max := len(runes) / 2; reveal > max {
		reveal = max
	}

	out := make([]rune, len(runes))
	shown := 0
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r):
			out[i] = r
		case shown < reveal:
			out[i] = r
			shown++
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// NumericHint returns a bounding range around the true answer. The first
// hint spans ±20%; each further hint halves the spread.
func NumericHint(answer float64, hintsGiven int) string {
	if hintsGiven < 1 {
		hintsGiven = 1
	}
	pct := 0.2
	for i := 1; i < hintsGiven; i++ {
		pct /= 2
	}

	spread := answer * pct
	if spread < 0 {
		spread = -spread
	}
	if spread == 0 {
		spread = 1 // a zero answer still deserves a range
	}
	lo, hi := answer-spread, answer+spread
	return fmt.Sprintf("between %s and %s", formatNumber(lo), formatNumber(hi))
}

func formatNumber(v float64) string {
	// Round to two decimals so float noise never leaks into chat.
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

package translate

import "strings"

// commonWords are checked in order; on a tie the earlier language wins
var commonWords = []struct {
	lang  string
	words []string
}{
	{"en", []string{"the", "and", "is", "in", "to", "of"}},
	{"es", []string{"el", "la", "de", "que", "y", "en"}},
	{"fr", []string{"le", "la", "de", "et", "à", "dans"}},
}

// DetectLanguage guesses whether text is English, Spanish or French by
// counting which common words it contains. Matching is by substring, so
// the guess is coarse. Anything undecided is reported as English.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)

	detected, best := SourceLanguage, 0
	for _, c := range commonWords {
		matches := 0
		for _, w := range c.words {
			if strings.Contains(lower, w) {
				matches++
			}
		}
		if matches > best {
			detected, best = c.lang, matches
		}
	}
	return detected
}

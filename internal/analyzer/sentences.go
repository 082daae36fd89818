package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isTerminal reports whether r ends a sentence
func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitSentences segments text into sentences.
//
// A boundary is a run of whitespace that directly follows '.', '!' or '?'.
// The punctuation stays with the preceding sentence and the whitespace is
// dropped. Runs such as "..." or "?!" form a single boundary because only
// the character right before the whitespace is inspected. Segments are
// trimmed and empty ones are discarded, so text without terminal
// punctuation yields a single sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	prev := rune(-1)

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) && isTerminal(prev) {
			sentences = appendTrimmed(sentences, text[start:i])
			// swallow the whole whitespace run
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !unicode.IsSpace(r) {
					break
				}
				i += size
			}
			start = i
			prev = -1
			continue
		}
		prev = r
		i += size
	}

	return appendTrimmed(sentences, text[start:])
}

func appendTrimmed(sentences []string, segment string) []string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return sentences
	}
	return append(sentences, segment)
}

// EndsWithTerminal reports whether s ends in '.', '!' or '?'
func EndsWithTerminal(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && isTerminal(r)
}

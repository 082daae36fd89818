package analyzer

import (
	"strings"

	"github.com/zombar/easyread/internal/models"
)

const (
	longSentenceWords  = 30 // more words than this costs points
	shortSentenceWords = 8  // fewer words than this earns a point
)

// ScoreSentence assigns an importance score to a sentence.
// The score is additive and may be negative.
func ScoreSentence(sentence string) int {
	score := 1

	words := len(strings.Fields(sentence))
	if words > longSentenceWords {
		score -= 2
	}
	if words < shortSentenceWords {
		score++
	}

	if strings.Contains(sentence, "?") {
		score++
	}

	lower := strings.ToLower(sentence)
	for _, term := range getKeyTerms() {
		if strings.Contains(lower, term) {
			score++
		}
	}

	return score
}

// ScoreSentences splits text and scores every sentence in document order
func ScoreSentences(text string) []models.ScoredSentence {
	sentences := SplitSentences(text)
	scored := make([]models.ScoredSentence, 0, len(sentences))
	for _, s := range sentences {
		scored = append(scored, models.ScoredSentence{
			Text:      s,
			Score:     ScoreSentence(s),
			WordCount: len(strings.Fields(s)),
		})
	}
	return scored
}

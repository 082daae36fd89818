// Package analyzer splits, scores and measures English text.
package analyzer

import (
	"math"
	"strings"
	"unicode"

	"github.com/zombar/easyread/internal/models"
)

// Weights of the composite readability score. Word length dominates.
const (
	sentenceLengthWeight = 0.4
	wordLengthWeight     = 0.6
)

// Analyze computes the readability statistics of text.
// It never fails: empty text yields zero counts.
func Analyze(text string) models.ReadabilityStats {
	words := strings.Fields(text)
	sentences := SplitSentences(text)
	characters := countNonSpace(text)

	avgSentenceLength := float64(len(words)) / float64(max(len(sentences), 1))
	avgWordLength := float64(characters) / float64(max(len(words), 1))
	score := sentenceLengthWeight*avgSentenceLength + wordLengthWeight*avgWordLength

	return models.ReadabilityStats{
		WordCount:         len(words),
		SentenceCount:     len(sentences),
		AvgSentenceLength: roundTenth(avgSentenceLength),
		AvgWordLength:     roundTenth(avgWordLength),
		ReadabilityScore:  roundTenth(score),
	}
}

// Improvement returns by how many percent the readability score dropped
// from before to after. A negative value means the text got harder.
func Improvement(before, after models.ReadabilityStats) int {
	if before.ReadabilityScore == 0 {
		return 0
	}
	return RoundHalfUp((before.ReadabilityScore - after.ReadabilityScore) / before.ReadabilityScore * 100)
}

// RoundHalfUp rounds to the nearest integer, halves towards +Inf
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

func countNonSpace(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

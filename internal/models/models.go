package models

// Kind tells the display layer where a result came from
type Kind string

const (
	KindRemote   Kind = "remote"   // produced by a remote provider
	KindFallback Kind = "fallback" // produced locally after the providers failed
)

// ReadabilityStats contains the readability figures of a text.
// All floats are rounded to one decimal place.
type ReadabilityStats struct {
	WordCount         int     `json:"word_count"`
	SentenceCount     int     `json:"sentence_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
	ReadabilityScore  float64 `json:"readability_score"` // lower is easier
}

// ScoredSentence is a sentence with its importance score
type ScoredSentence struct {
	Text      string `json:"text"`
	Score     int    `json:"score"`
	WordCount int    `json:"word_count"`
}

// Result is the output of a translation or simplification
type Result struct {
	Content     string `json:"content"`
	SourceLabel string `json:"source_label"`
	Kind        Kind   `json:"kind"`
}

// LengthRange bounds the length of a remote summary
type LengthRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SummaryRequest is sent to remote simplification providers
type SummaryRequest struct {
	Text              string      `json:"text"`
	TargetLengthRange LengthRange `json:"target_length_range"`
}

// TranslationRequest is sent to remote translation providers
type TranslationRequest struct {
	Text           string `json:"text"`
	SourceLang     string `json:"source_lang"`
	TargetLangCode string `json:"target_lang_code"`
}

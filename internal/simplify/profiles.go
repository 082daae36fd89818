package simplify

import (
	"fmt"

	"github.com/zombar/easyread/internal/models"
)

// Profile is a named set of simplification limits
type Profile struct {
	Name                string             `json:"name"`
	Label               string             `json:"label"`
	Description         string             `json:"description"`
	MaxSentences        int                `json:"max_sentences"`
	MaxWordsPerSentence int                `json:"max_words_per_sentence"`
	ComplexityThreshold float64            `json:"complexity_threshold"`
	SummaryLength       models.LengthRange `json:"summary_length"` // target for remote summaries
}

// profiles is ordered from the lightest to the heaviest simplification;
// every limit shrinks along the way.
var profiles = []Profile{
	{
		Name:                "light",
		Label:               "Light Simplification",
		Description:         "Keeps most details while improving readability",
		MaxSentences:        8,
		MaxWordsPerSentence: 20,
		ComplexityThreshold: 0.7,
		SummaryLength:       models.LengthRange{Min: 50, Max: 150},
	},
	{
		Name:                "medium",
		Label:               "Medium Simplification",
		Description:         "Balanced approach for general understanding",
		MaxSentences:        6,
		MaxWordsPerSentence: 15,
		ComplexityThreshold: 0.5,
		SummaryLength:       models.LengthRange{Min: 30, Max: 120},
	},
	{
		Name:                "heavy",
		Label:               "Heavy Simplification",
		Description:         "Maximum simplicity for easy reading",
		MaxSentences:        4,
		MaxWordsPerSentence: 12,
		ComplexityThreshold: 0.3,
		SummaryLength:       models.LengthRange{Min: 20, Max: 80},
	},
}

// DefaultProfile is used when a caller does not pick one
const DefaultProfile = "medium"

// Profiles returns all profiles, lightest first
func Profiles() []Profile {
	return append([]Profile(nil), profiles...)
}

// LookupProfile finds a profile by name
func LookupProfile(name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

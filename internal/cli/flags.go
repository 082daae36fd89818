package cli

import "github.com/zombar/easyread/internal/simplify"

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile    string
	Offline    bool
	Summarizer string
	Verbose    bool
	JSON       bool

	// simplify
	Level        string
	AddExamples  bool
	ShowOriginal bool

	// translate
	TargetLang string

	// speak
	Rate         float64
	Voice        string
	ESpeakBinary string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Summarizer:   "huggingface",
		Level:        simplify.DefaultProfile,
		TargetLang:   "es",
		Rate:         1,
		ESpeakBinary: "espeak-ng",
	}
}

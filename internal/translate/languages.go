package translate

import (
	"fmt"
	"strings"
)

// SourceLanguage is the language every translation starts from
const SourceLanguage = "en"

// Language is a supported translation target
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Display renders the language the way selection lists show it
func (l Language) Display() string {
	return l.Flag + " " + l.Name
}

var languages = []Language{
	{Code: "es", Name: "Spanish", Flag: "🇪🇸"},
	{Code: "fr", Name: "French", Flag: "🇫🇷"},
	{Code: "de", Name: "German", Flag: "🇩🇪"},
	{Code: "it", Name: "Italian", Flag: "🇮🇹"},
	{Code: "pt", Name: "Portuguese", Flag: "🇵🇹"},
	{Code: "ru", Name: "Russian", Flag: "🇷🇺"},
	{Code: "ja", Name: "Japanese", Flag: "🇯🇵"},
	{Code: "ko", Name: "Korean", Flag: "🇰🇷"},
	{Code: "zh", Name: "Chinese", Flag: "🇨🇳"},
	{Code: "ar", Name: "Arabic", Flag: "🇸🇦"},
	{Code: "hi", Name: "Hindi", Flag: "🇮🇳"},
	{Code: "sw", Name: "Swahili", Flag: "🇹🇿"},
}

// Languages returns the supported targets in display order
func Languages() []Language {
	return append([]Language(nil), languages...)
}

// LookupLanguage finds a target by its ISO 639-1 code
func LookupLanguage(code string) (Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range languages {
		if l.Code == code {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
}

// LanguageName returns the English name for code, or code itself when unknown
func LanguageName(code string) string {
	if l, err := LookupLanguage(code); err == nil {
		return l.Name
	}
	return code
}

// LanguageFlag returns the flag for code, or a globe when unknown
func LanguageFlag(code string) string {
	if l, err := LookupLanguage(code); err == nil {
		return l.Flag
	}
	return "🌐"
}

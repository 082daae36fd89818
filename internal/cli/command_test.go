package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/easyread/internal/models"
)

const sample = "The quick fact. Is this clear? A very very very very very very very very very very very very very very very very very very very very very very very very very very very very very very long sentence about nothing important at all exceeding thirty words easily now."

// run executes the root command with args and stdin, returning stdout and stderr
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := CreateRootCommand(NewFlags())
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCreateRootCommand(t *testing.T) {
	cmd := CreateRootCommand(NewFlags())

	if cmd.Use != "easyread" {
		t.Errorf("Expected Use to be 'easyread', got %s", cmd.Use)
	}

	for _, name := range []string{"config", "offline", "summarizer", "verbose", "json"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %s", name)
		}
	}

	subcommands := map[string][]string{
		"simplify":  {"level", "examples", "show-original"},
		"translate": {"to"},
		"analyze":   nil,
		"profiles":  nil,
		"languages": nil,
		"speak":     {"rate", "voice", "espeak"},
	}
	for name, flags := range subcommands {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("Expected subcommand %s", name)
			continue
		}
		for _, f := range flags {
			if sub.Flags().Lookup(f) == nil {
				t.Errorf("Expected flag --%s on %s", f, name)
			}
		}
	}
}

func TestNewFlags(t *testing.T) {
	flags := NewFlags()
	assert.Equal(t, "medium", flags.Level)
	assert.Equal(t, "es", flags.TargetLang)
	assert.Equal(t, 1.0, flags.Rate)
	assert.Equal(t, "huggingface", flags.Summarizer)
	assert.False(t, flags.Offline)
}

func TestSimplifyOffline(t *testing.T) {
	stdout, stderr, err := run(t, sample, "--offline", "simplify", "--level", "heavy")

	require.NoError(t, err)
	assert.Equal(t, "Is this clear? The quick fact.\n", stdout)
	assert.Contains(t, stderr, "Text simplified successfully!")
	assert.Contains(t, stderr, "source: rule-based")
}

func TestSimplifyFromArgsAsJSON(t *testing.T) {
	stdout, _, err := run(t, "", "--offline", "--json", "simplify", "-l", "light", "Students", "learn", "at", "school.", "Teachers", "help.")

	require.NoError(t, err)
	var result struct {
		Simplified string      `json:"simplified"`
		Kind       models.Kind `json:"kind"`
		Profile    string      `json:"profile"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "light", result.Profile)
	assert.Equal(t, models.KindFallback, result.Kind)
	assert.Equal(t, "Students learn at school. Teachers help.", result.Simplified)
}

func TestSimplifyTrivialInputPassesThrough(t *testing.T) {
	stdout, stderr, err := run(t, "  Hi.  ", "--offline", "simplify")

	require.NoError(t, err)
	assert.Equal(t, "Hi.\n", stdout)
	assert.Contains(t, stderr, "Text is already very short")
}

func TestSimplifyErrors(t *testing.T) {
	_, _, err := run(t, "   ", "--offline", "simplify")
	assert.ErrorContains(t, err, "please enter some text")

	_, _, err = run(t, sample, "--offline", "simplify", "--level", "extreme")
	assert.ErrorContains(t, err, "unknown simplification profile")
}

func TestTranslateOfflineShowsDemo(t *testing.T) {
	stdout, stderr, err := run(t, "", "--offline", "translate", "--to", "fr", "Hello", "world")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "[FRANÇAIS] Hello world"))
	assert.Contains(t, stderr, "Demo translation shown")
	assert.Contains(t, stderr, "Translation to French (Demo)")
}

func TestTranslateUsesConfiguredProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseStatus":200,"responseData":{"translatedText":"Hola mundo"}}`))
	}))
	defer srv.Close()

	cfgFile := filepath.Join(t.TempDir(), "easyread.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("summarizer: none\nmymemory:\n  url: "+srv.URL+"\n"), 0o644))

	stdout, stderr, err := run(t, "", "--config", cfgFile, "translate", "Hello", "world")

	require.NoError(t, err)
	assert.Equal(t, "Hola mundo\n", stdout)
	assert.Contains(t, stderr, "Using config file:")
	assert.Contains(t, stderr, "Successfully translated to Spanish")
}

func TestTranslateTargetFromEnv(t *testing.T) {
	t.Setenv("EASYREAD_TRANSLATE_TARGET", "de")

	stdout, _, err := run(t, "", "--offline", "translate", "Hello")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "[DEUTSCH] Hello"), stdout)
}

func TestTranslateUnsupportedLanguage(t *testing.T) {
	_, _, err := run(t, "", "--offline", "translate", "--to", "xx", "Hello")
	assert.ErrorContains(t, err, "invalid language")
}

func TestMissingExplicitConfigFails(t *testing.T) {
	_, _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "profiles")
	assert.ErrorContains(t, err, "read config")
}

func TestAnalyze(t *testing.T) {
	stdout, _, err := run(t, "", "analyze", "Hello world. How are you?")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Words")
	assert.Contains(t, stdout, "5")
	assert.Contains(t, stdout, "How are you?")

	stdout, _, err = run(t, "", "--json", "analyze", "Hello world.")
	require.NoError(t, err)
	var out struct {
		Stats models.ReadabilityStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 2, out.Stats.WordCount)
}

func TestProfilesAndLanguages(t *testing.T) {
	stdout, _, err := run(t, "", "profiles")
	require.NoError(t, err)
	assert.Contains(t, stdout, "medium (default)")
	assert.Contains(t, stdout, "heavy")

	stdout, _, err = run(t, "", "languages")
	require.NoError(t, err)
	assert.Equal(t, 12, strings.Count(stdout, "\n"))
	assert.Contains(t, stdout, "sw  🇹🇿 Swahili")
}

func TestSpeakMissingBackend(t *testing.T) {
	_, _, err := run(t, "", "speak", "--espeak", "no-such-espeak-binary", "Hello")
	assert.ErrorContains(t, err, "speech backend not available")
}

func TestGetOpenAIKey(t *testing.T) {
	v := viper.New()
	v.Set("openai.api_key", "from-config")

	t.Setenv("OPENAI_API_KEY", "")
	assert.Equal(t, "from-config", GetOpenAIKey(v))

	t.Setenv("OPENAI_API_KEY", "from-env")
	assert.Equal(t, "from-env", GetOpenAIKey(v))
}

func TestAppConfig(t *testing.T) {
	v := viper.New()
	v.Set("summarizer", "ollama")
	v.Set("ollama.model", "mistral")
	v.Set("provider_timeout", "5s")

	cfg := appConfig(v)

	assert.Equal(t, "ollama", cfg.Summarizer)
	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.Equal(t, "5s", cfg.ProviderTimeout.String())
	assert.True(t, cfg.DisableBreakers)
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zombar/easyread/internal/app"
	"github.com/zombar/easyread/internal/narration"
	"github.com/zombar/easyread/internal/simplify"
	"github.com/zombar/easyread/internal/translate"
)

// Version is reported by --version
const Version = "1.0.0"

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "easyread",
		Short: "Text simplification, translation and narration",
		Long: `easyread makes text easier to read.

It shortens text by keeping its most important sentences, scores its
readability, translates it and reads it aloud. Text is taken from the
arguments or, when there are none, from standard input.

Examples:
  easyread simplify --level heavy < article.txt
  easyread translate --to fr "Where is the school?"
  easyread analyze "Short sentences help. Long ones do not."
  easyread speak --rate 0.8 < notes.txt`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return InitConfig(v, flags.CfgFile, cmd.ErrOrStderr())
		},
	}

	setupPersistentFlags(rootCmd, flags, v)

	rootCmd.AddCommand(
		newSimplifyCommand(flags, v),
		newTranslateCommand(flags, v),
		newAnalyzeCommand(flags),
		newProfilesCommand(flags),
		newLanguagesCommand(flags),
		newSpeakCommand(flags, v),
	)

	return rootCmd
}

func setupPersistentFlags(cmd *cobra.Command, flags *Flags, v *viper.Viper) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.easyread.yaml or ./.easyread.yaml)")
	pf.BoolVar(&flags.Offline, "offline", false, "Do not call any remote service")
	pf.StringVar(&flags.Summarizer, "summarizer", flags.Summarizer, "Remote summarizer: huggingface, ollama or none")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Log provider attempts to stderr")
	pf.BoolVar(&flags.JSON, "json", false, "Print results as JSON")

	v.BindPFlag("offline", pf.Lookup("offline"))
	v.BindPFlag("summarizer", pf.Lookup("summarizer"))
}

func newSimplifyCommand(flags *Flags, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplify [text]",
		Short: "Shorten text to its most important sentences",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			services, logger, err := buildApp(cmd, flags, v)
			if err != nil {
				return err
			}

			result, err := services.Engine.Simplify(cmd.Context(), text, v.GetString("simplify.level"), simplify.Options{
				AddExamples:  flags.AddExamples,
				ShowOriginal: flags.ShowOriginal,
				Notify:       newPrintSink(cmd.ErrOrStderr()),
			})
			if errors.Is(err, simplify.ErrTrivialInput) {
				// Nothing worth shortening; pass the text through
				logger.Debug("input too short, printing unchanged")
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(text))
				return nil
			}
			if err != nil {
				return err
			}

			if flags.JSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Output)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s | readability %.1f -> %.1f (%d%% easier) | source: %s\n",
				result.Label, result.Before.ReadabilityScore, result.After.ReadabilityScore, result.Improvement, result.Source)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Level, "level", "l", flags.Level, "Simplification level: light, medium or heavy")
	cmd.Flags().BoolVar(&flags.AddExamples, "examples", false, "Append an illustrative example")
	cmd.Flags().BoolVar(&flags.ShowOriginal, "show-original", false, "Show the original next to the simplified text")
	v.BindPFlag("simplify.level", cmd.Flags().Lookup("level"))

	return cmd
}

func newTranslateCommand(flags *Flags, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate English text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			services, _, err := buildApp(cmd, flags, v)
			if err != nil {
				return err
			}

			result, err := services.Translator.Translate(cmd.Context(), text, v.GetString("translate.target"), translate.Options{
				Notify: newPrintSink(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}

			if flags.JSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", result.Language.Flag, result.SourceLabel)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.TargetLang, "to", "t", flags.TargetLang, "Target language code (see 'easyread languages')")
	v.BindPFlag("translate.target", cmd.Flags().Lookup("to"))

	return cmd
}

func newSpeakCommand(flags *Flags, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Read text aloud with espeak-ng",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}

			speaker, err := narration.NewESpeak(v.GetString("speak.espeak"))
			if err != nil {
				return err
			}
			controller := narration.NewController(speaker, newPrintSink(cmd.ErrOrStderr()), newLogger(cmd, flags))

			if err := controller.Play(cmd.Context(), text, v.GetFloat64("speak.rate"), v.GetString("speak.voice")); err != nil {
				return err
			}
			err = speaker.Wait()
			controller.Finished(err)
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().Float64Var(&flags.Rate, "rate", flags.Rate, "Speed multiplier, 1 is normal")
	cmd.Flags().StringVar(&flags.Voice, "voice", "", "espeak-ng voice, e.g. en-gb")
	cmd.Flags().StringVar(&flags.ESpeakBinary, "espeak", flags.ESpeakBinary, "espeak-ng binary")
	v.BindPFlag("speak.rate", cmd.Flags().Lookup("rate"))
	v.BindPFlag("speak.voice", cmd.Flags().Lookup("voice"))
	v.BindPFlag("speak.espeak", cmd.Flags().Lookup("espeak"))

	return cmd
}

// InitConfig initializes viper configuration. A missing default config
// file is not an error; a missing explicit one is.
func InitConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".easyread")
	}

	// EASYREAD_OPENAI_API_KEY and friends
	v.SetEnvPrefix("EASYREAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}

// appConfig maps viper keys onto the service configuration
func appConfig(v *viper.Viper) app.Config {
	cfg := app.DefaultConfig()
	cfg.Offline = v.GetBool("offline")
	cfg.Summarizer = v.GetString("summarizer")
	cfg.HuggingFaceURL = v.GetString("huggingface.url")
	cfg.HuggingFaceToken = v.GetString("huggingface.token")
	cfg.OllamaURL = v.GetString("ollama.url")
	if model := v.GetString("ollama.model"); model != "" {
		cfg.OllamaModel = model
	}
	cfg.MyMemoryURL = v.GetString("mymemory.url")
	cfg.LibreTranslateURL = v.GetString("libretranslate.url")
	cfg.LibreTranslateAPIKey = v.GetString("libretranslate.api_key")
	cfg.OpenAIAPIKey = GetOpenAIKey(v)
	cfg.OpenAIBaseURL = v.GetString("openai.base_url")
	cfg.OpenAIModel = v.GetString("openai.model")
	if timeout := v.GetDuration("provider_timeout"); timeout > 0 {
		cfg.ProviderTimeout = timeout
	}
	// One-shot process: a breaker would never get to open
	cfg.DisableBreakers = true
	return cfg
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey(v *viper.Viper) string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return v.GetString("openai.api_key")
}

func buildApp(cmd *cobra.Command, flags *Flags, v *viper.Viper) (*app.App, *slog.Logger, error) {
	logger := newLogger(cmd, flags)
	services, err := app.New(appConfig(v), logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return services, logger, nil
}

func newLogger(cmd *cobra.Command, flags *Flags) *slog.Logger {
	level := slog.LevelWarn
	if flags.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// readText joins the arguments, or reads standard input when there are none
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

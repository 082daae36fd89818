package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zombar/easyread/internal/analyzer"
	"github.com/zombar/easyread/internal/notify"
	"github.com/zombar/easyread/internal/simplify"
	"github.com/zombar/easyread/internal/translate"
)

var severityIcons = map[notify.Severity]string{
	notify.SeverityInfo:    "ℹ️",
	notify.SeveritySuccess: "✅",
	notify.SeverityWarning: "⚠️",
	notify.SeverityError:   "❌",
}

// printSink writes notices to a terminal
type printSink struct {
	w io.Writer
}

func newPrintSink(w io.Writer) *printSink {
	return &printSink{w: w}
}

func (s *printSink) Report(message string, severity notify.Severity) {
	fmt.Fprintf(s.w, "%s %s\n", severityIcons[severity], message)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAnalyzeCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text]",
		Short: "Show readability figures and sentence scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			stats := analyzer.Analyze(text)
			sentences := analyzer.ScoreSentences(text)

			if flags.JSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"stats":     stats,
					"sentences": sentences,
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Words\t%d\n", stats.WordCount)
			fmt.Fprintf(tw, "Sentences\t%d\n", stats.SentenceCount)
			fmt.Fprintf(tw, "Avg sentence length\t%.1f\n", stats.AvgSentenceLength)
			fmt.Fprintf(tw, "Avg word length\t%.1f\n", stats.AvgWordLength)
			fmt.Fprintf(tw, "Readability score\t%.1f\t(lower is easier)\n", stats.ReadabilityScore)
			if len(sentences) > 0 {
				fmt.Fprintln(tw, "\nSCORE\tWORDS\tSENTENCE")
				for _, s := range sentences {
					fmt.Fprintf(tw, "%d\t%d\t%s\n", s.Score, s.WordCount, s.Text)
				}
			}
			return tw.Flush()
		},
	}
}

func newProfilesCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List simplification levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := simplify.Profiles()
			if flags.JSON {
				return printJSON(cmd.OutOrStdout(), profiles)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSENTENCES\tWORDS/SENTENCE\tDESCRIPTION")
			for _, p := range profiles {
				name := p.Name
				if name == simplify.DefaultProfile {
					name += " (default)"
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, p.MaxSentences, p.MaxWordsPerSentence, p.Description)
			}
			return tw.Flush()
		},
	}
}

func newLanguagesCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List translation target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			languages := translate.Languages()
			if flags.JSON {
				return printJSON(cmd.OutOrStdout(), languages)
			}
			for _, l := range languages {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", l.Code, l.Display())
			}
			return nil
		},
	}
}

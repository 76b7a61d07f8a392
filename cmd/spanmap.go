package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/mentions/internal/spanmap"
)

var (
	spanmapValue string
	spanmapText  string
)

var spanmapCmd = &cobra.Command{
	Use:   "spanmap",
	Short: "Decode @[name](id:x) markup into display text and a span map",
	Long: `Decode --value written as "@[name](id:xxx)" markup into display text and
the map of mention spans over it. With --text, treat it as an edit of the
display text: entries damaged by the edit are dropped, the rest are shifted,
and the re-encoded markup is printed.

Example:
  mentions spanmap --value 'hi @[Ada](id:1) and @[Alan](id:2)' --text 'oh hi @Ada and @Alan'`,
	Args: cobra.NoArgs,
	RunE: runSpanmap,
}

func init() {
	spanmapCmd.Flags().StringVar(&spanmapValue, "value", "", "raw markup")
	spanmapCmd.Flags().StringVar(&spanmapText, "text", "", "edited display text")
	rootCmd.AddCommand(spanmapCmd)
}

type entryView struct {
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
}

type editView struct {
	Kind    string      `yaml:"kind"`
	Delta   int         `yaml:"delta"`
	Removed []entryView `yaml:"removed,omitempty"`
}

type spanmapView struct {
	Text    string      `yaml:"text"`
	Entries []entryView `yaml:"entries"`
	Edit    *editView   `yaml:"edit,omitempty"`
	Raw     string      `yaml:"raw,omitempty"`
}

func viewEntries(text string, entries []spanmap.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{
			Start: outOffset(text, e.Span.Start),
			End:   outOffset(text, e.Span.End),
			ID:    e.Record.ID,
			Name:  e.Record.Name,
		})
	}
	return out
}

func runSpanmap(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	text, m := spanmap.Parse(spanmapValue, e.differ)
	view := spanmapView{Text: text, Entries: viewEntries(text, m.Entries())}

	if cmd.Flags().Changed("text") {
		summary := m.Apply(text, spanmapText)
		view = spanmapView{
			Text:    spanmapText,
			Entries: viewEntries(spanmapText, m.Entries()),
			Edit: &editView{
				Kind:    summary.Kind.String(),
				Delta:   summary.Delta,
				Removed: viewEntries(text, summary.Removed),
			},
			Raw: m.Raw(spanmapText),
		}
	}
	return writeYAML(cmd.OutOrStdout(), view)
}

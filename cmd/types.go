package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zjrosen/mentions/internal/config"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the configured part types",
	Long: `List the configured part types in priority order. Use "types add" and
"types rm" to change them; edits are written to the config file in place.`,
	Args: cobra.NoArgs,
	RunE: runTypesList,
}

var (
	addIndex int
	addType  config.PartTypeConfig
)

var typesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a part type",
	Long: `Add a part type to the config file.

Examples:
  mentions types add ticket --trigger '!' --pattern '<(?P<trigger>!)(?P<id>[0-9]+)>'
  mentions types add email --kind pattern --pattern '[\w.]+@[\w.]+' --style underline --index 0`,
	Args: cobra.ExactArgs(1),
	RunE: runTypesAdd,
}

var typesRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove a part type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RemovePartType(configPath(), args[0], cfg.PartTypes); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed part type %q from %s\n", args[0], configPath())
		return nil
	},
}

func init() {
	f := typesAddCmd.Flags()
	f.StringVar(&addType.Kind, "kind", config.KindMention, "mention or pattern")
	f.StringVar(&addType.Trigger, "trigger", "", "mention trigger, e.g. @")
	f.StringVar(&addType.Pattern, "pattern", "", "regular expression matching the markup")
	f.StringVar(&addType.Style, "style", "", "hashtag, italic, mention, strong or underline")
	f.StringVar(&addType.Color, "color", "", "hex color used by the editor")
	f.StringVar(&addType.Label, "label", "", "label template")
	f.StringVar(&addType.Markup, "markup", "", "markup template")
	f.IntVar(&addType.AllowedSpaces, "allowed-spaces", 0, "spaces a keyword may contain")
	f.BoolVar(&addType.InsertSpaceAfter, "insert-space-after", false, "add a space after an inserted mention")
	f.StringVar(&addType.RenderPosition, "render-position", "", "top or bottom")
	f.IntVar(&addIndex, "index", -1, "position in priority order (negative: last)")
	_ = typesAddCmd.MarkFlagRequired("pattern")

	typesCmd.AddCommand(typesAddCmd, typesRmCmd)
	rootCmd.AddCommand(typesCmd)
}

func runTypesList(cmd *cobra.Command, _ []string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "KIND", "TRIGGER", "STYLE", "PATTERN")
	for _, pt := range cfg.PartTypes {
		kind := pt.Kind
		if kind == "" {
			kind = config.KindMention
		}
		t.Row(pt.Name, kind, pt.Trigger, pt.Style, pt.Pattern)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func runTypesAdd(cmd *cobra.Command, args []string) error {
	pt := addType
	pt.Name = args[0]
	if pt.Kind == config.KindMention {
		pt.Kind = ""
	}

	index := addIndex
	if index < 0 {
		index = len(cfg.PartTypes)
	}
	if err := config.AddPartType(configPath(), index, pt, cfg.PartTypes); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added part type %q to %s\n", pt.Name, configPath())
	return nil
}

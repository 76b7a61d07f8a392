package cmd

import (
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [raw]",
	Short: "Tokenize a raw value into parts",
	Long: `Tokenize a raw value into plain text and mention parts using the
configured part types. The value is read from stdin when no argument is given.

Examples:
  mentions parse 'hi <@42>, see <#go>'
  echo 'hi <@42>' | mentions parse
  mentions parse --utf16 'hi 👋 <@42>'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	change, err := e.newSession().SetValue(cmd.Context(), raw)
	if err != nil {
		return err
	}
	return writeYAML(cmd.OutOrStdout(), viewChange(change, false))
}

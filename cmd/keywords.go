package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	keywordsValue string
	keywordsCaret int
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Show the keyword being typed after each trigger",
	Long: `Tokenize --value, place the caret at --caret in its plain text and print
the active keyword for every mention trigger. A trigger is listed only when a
keyword is active; an empty keyword means the caret sits right after the
trigger. A negative caret means the end of the text.

Example:
  mentions keywords --value 'ping @ad' --caret 8`,
	Args: cobra.NoArgs,
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().StringVar(&keywordsValue, "value", "", "raw value")
	keywordsCmd.Flags().IntVar(&keywordsCaret, "caret", -1, "caret offset in the plain text")
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess := e.newSession()
	change, err := sess.SetValue(cmd.Context(), keywordsValue)
	if err != nil {
		return err
	}
	sel, err := inCaret(change.PlainText, keywordsCaret)
	if err != nil {
		return err
	}
	sess.SetSelection(sel)

	out := cmd.OutOrStdout()
	printCaret(out, change.PlainText, sel.End)
	keywords := sess.Keywords()
	if len(keywords) == 0 {
		_, _ = fmt.Fprintln(out, "no active keywords")
		return nil
	}
	return writeYAML(out, keywords)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mentions/internal/mention"
)

var (
	insertValue string
	insertCaret int
	insertType  string
	insertID    string
	insertName  string
)

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert a suggestion at the caret",
	Long: `Tokenize --value, place the caret at --caret and replace the keyword being
typed after the trigger of --type with a mention of --id. The name is taken
from --name, else from the suggestion directory.

Example:
  mentions insert --value 'hi @ad' --caret 6 --type user --id ada`,
	Args: cobra.NoArgs,
	RunE: runInsert,
}

func init() {
	insertCmd.Flags().StringVar(&insertValue, "value", "", "raw value")
	insertCmd.Flags().IntVar(&insertCaret, "caret", -1, "caret offset in the plain text (negative: end)")
	insertCmd.Flags().StringVar(&insertType, "type", "", "mention type name")
	insertCmd.Flags().StringVar(&insertID, "id", "", "suggestion id")
	insertCmd.Flags().StringVar(&insertName, "name", "", "suggestion name")
	_ = insertCmd.MarkFlagRequired("type")
	_ = insertCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(insertCmd)
}

func runInsert(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	mt, err := e.mentionType(insertType)
	if err != nil {
		return err
	}

	sess := e.newSession()
	change, err := sess.SetValue(cmd.Context(), insertValue)
	if err != nil {
		return err
	}
	sel, err := inCaret(change.PlainText, insertCaret)
	if err != nil {
		return err
	}
	sess.SetSelection(sel)

	if _, ok := sess.Keywords()[mt.Trigger]; !ok {
		return fmt.Errorf("no %s keyword at caret %d", mt.Trigger, sel.End)
	}

	sug := mention.Suggestion{ID: insertID, Name: insertName}
	if e.dir != nil && sug.Name == "" {
		if found, ok := e.dir.Lookup(insertID); ok {
			sug = found
		}
	}

	change, err = sess.PickSuggestion(cmd.Context(), mt, sug)
	if err != nil {
		return err
	}
	return writeYAML(cmd.OutOrStdout(), viewChange(change, true))
}

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	reconcileValue string
	reconcileText  string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Fold an edited plain text back into a raw value",
	Long: `Tokenize --value, then treat --text as the user's edit of its plain text
and print the reconciled raw value. Mentions left untouched keep their markup;
mentions the edit cut into become plain text and are counted as decayed.

Example:
  mentions reconcile --value 'Hello <@12> world' --text 'Hello @12 big world'`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileValue, "value", "", "raw value before the edit")
	reconcileCmd.Flags().StringVar(&reconcileText, "text", "", "plain text after the edit")
	_ = reconcileCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess := e.newSession()
	if _, err := sess.SetValue(cmd.Context(), reconcileValue); err != nil {
		return err
	}
	change, err := sess.ChangeText(cmd.Context(), reconcileText)
	if err != nil {
		return err
	}
	return writeYAML(cmd.OutOrStdout(), viewChange(change, false))
}

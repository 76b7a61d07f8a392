package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/mentions/internal/ui/editor"
	"github.com/zjrosen/mentions/internal/ui/styles"
)

var editCmd = &cobra.Command{
	Use:   "edit [FILE]",
	Short: "Edit text with mentions interactively",
	Long: `Open an interactive editor. Typing a trigger such as "@" lists matching
suggestions from the directory; tab or enter inserts the selected one. With
FILE, the raw value is loaded from it and ctrl+s saves back to it. Without
FILE, the raw value is printed on exit.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{logToFile: "true"},
	RunE:        runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	if err := styles.ApplyTheme(styles.ThemeConfig{
		Mode:   cfg.Theme.Mode,
		Colors: cfg.Theme.FlattenedColors(),
	}); err != nil {
		return fmt.Errorf("invalid theme: %w", err)
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess := e.newSession()
	defer sess.Close()

	var save func(string) error
	title := "Message"
	if len(args) == 1 {
		path := args[0]
		title = path
		data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied path
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if _, err := sess.SetValue(cmd.Context(), string(data)); err != nil {
			return err
		}
		save = func(value string) error {
			return os.WriteFile(path, []byte(value), 0o600)
		}
	}

	model := editor.New(editor.Config{
		Session:    sess,
		Directory:  e.dir,
		Limit:      cfg.Suggestions.Limit,
		TypeColors: typeColors(),
		Save:       save,
		Title:      title,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	if save == nil {
		if m, ok := final.(editor.Model); ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), m.Value())
		}
	}
	return nil
}

// typeColors maps part type names to their configured colors.
func typeColors() map[string]string {
	colors := make(map[string]string)
	for _, pt := range cfg.PartTypes {
		if pt.Color != "" {
			colors[pt.Name] = pt.Color
		}
	}
	return colors
}

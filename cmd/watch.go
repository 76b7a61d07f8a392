package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/session"
	"github.com/zjrosen/mentions/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-tokenize a file every time it changes",
	Long: `Tokenize FILE and print a summary, then watch it and print a new summary
each time it settles after a change. Stop with ctrl+c.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before re-reading")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	path := args[0]
	sess := e.newSession()
	defer sess.Close()

	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: watchDebounce})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}
	return watchLoop(ctx, cmd.OutOrStdout(), sess, path, changes)
}

// watchLoop prints the file once, then again after each change signal.
func watchLoop(ctx context.Context, out io.Writer, sess *session.Session, path string, changes <-chan struct{}) error {
	if err := reload(ctx, out, sess, path); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := reload(ctx, out, sess, path); err != nil {
				// the file may be mid-replace; keep watching
				log.ErrorErr(log.CatWatcher, "reload failed", err, "path", path)
				_, _ = fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

func reload(ctx context.Context, out io.Writer, sess *session.Session, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied path
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	change, err := sess.SetValue(ctx, string(data))
	if err != nil {
		return err
	}

	mentions := 0
	for _, p := range change.Parts {
		if p.IsMention() {
			mentions++
		}
	}
	_, _ = fmt.Fprintf(out, "--- %s (v%d, %d parts, %d mentions)\n%s\n",
		path, change.Version, len(change.Parts), mentions, change.PlainText)
	return nil
}

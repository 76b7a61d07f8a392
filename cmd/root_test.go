package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mentions/internal/config"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// writeConfig writes the default config, plus extra YAML, to a temp file.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	if extra != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
		require.NoError(t, err)
		_, err = f.WriteString("\n" + extra + "\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	return path
}

func runWith(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MENTIONS_DEBUG", "")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runWith(t, writeConfig(t, ""), "", args...)
	require.NoError(t, err)
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, yaml.Unmarshal([]byte(out), &v))
	return v
}

func TestParse(t *testing.T) {
	v := decode[changeView](t, run(t, "parse", "hi <@ada> see <#go> at https://x.io"))

	require.Equal(t, "hi @ada see #go at https://x.io", v.PlainText)
	require.Equal(t, "hi <@ada> see <#go> at https://x.io", v.Value)

	var mentions []partView
	for _, p := range v.Parts {
		if p.ID != "" {
			mentions = append(mentions, p)
		}
	}
	require.Len(t, mentions, 2)
	require.Equal(t, partView{Text: "@ada", Start: 3, End: 7, Type: "user", Style: "mention", ID: "ada", Trigger: "@", Original: "<@ada>"}, mentions[0])
	require.Equal(t, "topic", mentions[1].Type)
	require.Equal(t, "url", v.Parts[len(v.Parts)-1].Type)
}

func TestParse_Stdin(t *testing.T) {
	out, err := runWith(t, writeConfig(t, ""), "<@x>\n", "parse")
	require.NoError(t, err)

	v := decode[changeView](t, out)
	require.Equal(t, "@x", v.PlainText)
}

func TestParse_DirectoryNames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(dir, []byte("suggestions:\n  - id: ada\n    name: Ada Lovelace\n"), 0o600))

	out, err := runWith(t, writeConfig(t, ""), "", "--directory", dir, "parse", "<@ada> <@bob>")
	require.NoError(t, err)

	v := decode[changeView](t, out)
	require.Equal(t, "@Ada Lovelace @bob", v.PlainText)
}

func TestParse_UTF16Offsets(t *testing.T) {
	v := decode[changeView](t, run(t, "--utf16", "parse", "👋 <@a>"))

	require.Equal(t, "@a", v.Parts[1].Text)
	require.Equal(t, 3, v.Parts[1].Start)
	require.Equal(t, 5, v.Parts[1].End)
}

func TestReconcile(t *testing.T) {
	v := decode[changeView](t, run(t, "reconcile", "--value", "Hello <@12> world", "--text", "Hello @12 big world"))
	require.Equal(t, "Hello <@12> big world", v.Value)
	require.Zero(t, v.Decayed)

	v = decode[changeView](t, run(t, "reconcile", "--value", "Hello <@12> world", "--text", "Hello @1 world"))
	require.Equal(t, "Hello @1 world", v.Value)
	require.Equal(t, 1, v.Decayed)
}

func TestReconcile_RequiresText(t *testing.T) {
	_, err := runWith(t, writeConfig(t, ""), "", "reconcile", "--value", "x")
	require.Error(t, err)
}

func TestKeywords(t *testing.T) {
	out := run(t, "keywords", "--value", "ping @ad")
	lines := strings.SplitN(out, "\n", 3)

	require.Equal(t, "ping @ad", lines[0])
	require.Equal(t, strings.Repeat(" ", 8)+"^", lines[1])
	require.Equal(t, map[string]string{"@": "ad"}, decode[map[string]string](t, lines[2]))
}

func TestKeywords_UTF16Caret(t *testing.T) {
	out := run(t, "--utf16", "keywords", "--value", "👋 @a", "--caret", "5")
	lines := strings.SplitN(out, "\n", 3)

	require.Equal(t, "     ^", lines[1], "wide emoji takes two columns")
	require.Equal(t, map[string]string{"@": "a"}, decode[map[string]string](t, lines[2]))
}

func TestKeywords_None(t *testing.T) {
	out := run(t, "keywords", "--value", "hello", "--caret", "2")
	require.Contains(t, out, "no active keywords")
}

func TestKeywords_CaretPastEnd(t *testing.T) {
	_, err := runWith(t, writeConfig(t, ""), "", "keywords", "--value", "hi", "--caret", "9")
	require.ErrorContains(t, err, "past the end")
}

func TestInsert(t *testing.T) {
	v := decode[changeView](t, run(t, "insert", "--value", "hi @ad", "--type", "user", "--id", "ada"))

	require.Equal(t, "hi <@ada> ", v.Value)
	require.Equal(t, "hi @ada ", v.PlainText)
	require.NotNil(t, v.Caret)
	require.Equal(t, 8, *v.Caret)
}

func TestInsert_Errors(t *testing.T) {
	cfgPath := writeConfig(t, "")

	_, err := runWith(t, cfgPath, "", "insert", "--value", "hi @ad", "--type", "nobody", "--id", "x")
	require.ErrorContains(t, err, "unknown mention type")

	_, err = runWith(t, cfgPath, "", "insert", "--value", "hello", "--type", "user", "--id", "x")
	require.ErrorContains(t, err, "no @ keyword")
}

func TestSpanmap(t *testing.T) {
	v := decode[spanmapView](t, run(t, "spanmap", "--value", "hi @[Ada](id:1) and @[Alan](id:2)"))

	require.Equal(t, "hi @Ada and @Alan", v.Text)
	require.Equal(t, []entryView{
		{Start: 3, End: 7, ID: "1", Name: "Ada"},
		{Start: 12, End: 17, ID: "2", Name: "Alan"},
	}, v.Entries)
	require.Nil(t, v.Edit)
}

func TestSpanmap_Edit(t *testing.T) {
	v := decode[spanmapView](t, run(t, "spanmap",
		"--value", "hi @[Ada](id:1) and @[Alan](id:2)",
		"--text", "oh hi @Ada and @Alan"))

	require.NotNil(t, v.Edit)
	require.Equal(t, "growth", v.Edit.Kind)
	require.Equal(t, 3, v.Edit.Delta)
	require.Empty(t, v.Edit.Removed)
	require.Equal(t, "oh hi @[Ada](id:1) and @[Alan](id:2)", v.Raw)
}

func TestTypes_ListAddRemove(t *testing.T) {
	cfgPath := writeConfig(t, "")

	out, err := runWith(t, cfgPath, "", "types")
	require.NoError(t, err)
	for _, name := range []string{"user", "topic", "url"} {
		require.Contains(t, out, name)
	}

	_, err = runWith(t, cfgPath, "", "types", "add", "ticket",
		"--trigger", "!", "--pattern", `<(?P<trigger>!)(?P<id>[0-9]+)>`, "--index", "0")
	require.NoError(t, err)

	_, err = runWith(t, cfgPath, "", "types", "rm", "url")
	require.NoError(t, err)

	var saved struct {
		PartTypes []config.PartTypeConfig `yaml:"part_types"`
	}
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &saved))

	var names []string
	for _, pt := range saved.PartTypes {
		names = append(names, pt.Name)
	}
	require.Equal(t, []string{"ticket", "user", "topic"}, names)

	v := decode[changeView](t, func() string {
		out, err := runWith(t, cfgPath, "", "parse", "<!7>")
		require.NoError(t, err)
		return out
	}())
	require.Equal(t, "!7", v.PlainText)
}

func TestTypes_AddDuplicate(t *testing.T) {
	_, err := runWith(t, writeConfig(t, ""), "", "types", "add", "user", "--pattern", "x")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInvalidConfig(t *testing.T) {
	_, err := runWith(t, writeConfig(t, "tracing:\n  sample_rate: 2"), "", "parse", "x")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestWatchLoop(t *testing.T) {
	cfg = config.Defaults()
	e, err := loadEnv()
	require.NoError(t, err)
	defer e.Close()

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi <@ada>"), 0o600))

	ctx, cancel := context.WithCancel(t.Context())
	changes := make(chan struct{})
	var out syncBuffer
	done := make(chan error)
	go func() { done <- watchLoop(ctx, &out, e.newSession(), path, changes) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1 mentions)\nhi @ada")
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("<@a> and <@b>"), 0o600))
	changes <- struct{}{}
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "2 mentions)\n@a and @b")
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	changes <- struct{}{}
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "error: reading")
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchLoop_MissingFile(t *testing.T) {
	cfg = config.Defaults()
	e, err := loadEnv()
	require.NoError(t, err)
	defer e.Close()

	err = watchLoop(t.Context(), io.Discard, e.newSession(), filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
}

func TestReadInput(t *testing.T) {
	got, err := readInput(strings.NewReader("ignored"), []string{"arg"})
	require.NoError(t, err)
	require.Equal(t, "arg", got)

	got, err = readInput(strings.NewReader("piped\n"), nil)
	require.NoError(t, err)
	require.Equal(t, "piped", got)
}

func TestPrintCaret_Multiline(t *testing.T) {
	var b bytes.Buffer
	printCaret(&b, "ab\ncd", 4)
	require.Equal(t, "ab\ncd\n ^\n", b.String())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "x.yaml"), expandHome("~/x.yaml"))
	require.Equal(t, "/abs", expandHome("/abs"))
}

package textdiff

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestChars_Identical(t *testing.T) {
	require.Nil(t, Chars("", ""))

	changes := Chars("hello", "hello")
	require.Equal(t, []Change{{Op: Equal, Text: "hello", Count: 5}}, changes)
}

func TestChars_Append(t *testing.T) {
	changes := Chars("Hello ", "Hello world")
	require.Equal(t, []Change{
		{Op: Equal, Text: "Hello ", Count: 6},
		{Op: Insert, Text: "world", Count: 5},
	}, changes)
}

func TestChars_Truncate(t *testing.T) {
	changes := Chars("Hello @123 world", "Hello @12")
	require.Equal(t, []Change{
		{Op: Equal, Text: "Hello @12", Count: 9},
		{Op: Delete, Text: "3 world", Count: 7},
	}, changes)
}

func TestChars_CountsRunes(t *testing.T) {
	changes := Chars("héllo", "héllo wörld")
	require.Len(t, changes, 2)
	require.Equal(t, 5, changes[0].Count)
	require.Equal(t, 6, changes[1].Count)
}

func TestOp_String(t *testing.T) {
	require.Equal(t, "equal", Equal.String())
	require.Equal(t, "insert", Insert.String())
	require.Equal(t, "delete", Delete.String())
	require.Equal(t, "unknown", Op(42).String())
}

func TestEdits(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     []Edit
	}{
		{"insert at end", "abc", "abcd", []Edit{{At: 3, Added: 1}}},
		{"insert at start", "abc", "xabc", []Edit{{At: 0, Added: 1}}},
		{"delete middle", "abcdef", "abef", []Edit{{At: 2, Removed: 2}}},
		{"replace", "hello world", "hello there", nil},
		{"no change", "same", "same", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits := Edits(Chars(tt.old, tt.new))
			if tt.want != nil || tt.old == tt.new {
				require.Equal(t, tt.want, edits)
			}
			// Replaying the edits against the old length must give the new length.
			total := utf8.RuneCountInString(tt.old)
			for _, e := range edits {
				total += e.Delta()
			}
			require.Equal(t, utf8.RuneCountInString(tt.new), total)
		})
	}
}

func TestNew_NegativeTimeoutDisablesBound(t *testing.T) {
	d := New(-1)
	require.Zero(t, d.dmp.DiffTimeout)
	_, got := Apply(d.Chars("abc", "abd"))
	require.Equal(t, "abd", got)
}

func TestProperty_ChangesReconstructBothTexts(t *testing.T) {
	alphabet := rapid.SampledFrom([]rune("ab @<>é\n"))
	rapid.Check(t, func(t *rapid.T) {
		oldText := string(rapid.SliceOfN(alphabet, 0, 30).Draw(t, "old"))
		newText := string(rapid.SliceOfN(alphabet, 0, 30).Draw(t, "new"))

		changes := Chars(oldText, newText)
		gotOld, gotNew := Apply(changes)
		if gotOld != oldText {
			t.Fatalf("old mismatch: %q != %q", gotOld, oldText)
		}
		if gotNew != newText {
			t.Fatalf("new mismatch: %q != %q", gotNew, newText)
		}
		for _, c := range changes {
			if c.Count != utf8.RuneCountInString(c.Text) || c.Count == 0 {
				t.Fatalf("bad count in %+v", c)
			}
		}
	})
}

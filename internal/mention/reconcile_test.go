package mention

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/mentions/internal/textdiff"
)

func TestReconcile(t *testing.T) {
	p := MustParser(userType())

	tests := []struct {
		name      string
		raw       string
		newPlain  string
		wantValue string
		mentions  int
	}{
		{
			name:      "truncating a mention decays it",
			raw:       "Hello <@123> world",
			newPlain:  "Hello @12",
			wantValue: "Hello @12",
		},
		{
			name:      "edit after mention keeps it",
			raw:       "Hello <@123> world",
			newPlain:  "Hello @123 worl",
			wantValue: "Hello <@123> worl",
			mentions:  1,
		},
		{
			name:      "edit before mention keeps it",
			raw:       "Hello <@123> world",
			newPlain:  "Hi @123 world",
			wantValue: "Hi <@123> world",
			mentions:  1,
		},
		{
			name:      "typing inside a mention decays it",
			raw:       "Hello <@123> world",
			newPlain:  "Hello @1x23 world",
			wantValue: "Hello @1x23 world",
		},
		{
			name:      "deleting a whole mention",
			raw:       "Hello <@123> world",
			newPlain:  "Hello  world",
			wantValue: "Hello  world",
		},
		{
			name:      "clearing everything",
			raw:       "<@1> and <@2>",
			newPlain:  "",
			wantValue: "",
		},
		{
			name:      "typing into empty value",
			raw:       "",
			newPlain:  "abc",
			wantValue: "abc",
		},
		{
			name:      "only the touched mention decays",
			raw:       "<@1> and <@22>",
			newPlain:  "@1 and @2",
			wantValue: "<@1> and @2",
			mentions:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Parse(tt.raw)

			value, parts := Reconcile(res.Parts, res.PlainText, tt.newPlain)

			require.Equal(t, tt.wantValue, value)
			requirePartition(t, parts, tt.newPlain, 0)

			mentions := 0
			for _, part := range parts {
				if part.IsMention() {
					mentions++
				}
			}
			require.Equal(t, tt.mentions, mentions)
		})
	}
}

func TestReconcile_IdenticalTextReturnsCopy(t *testing.T) {
	res := MustParser(userType()).Parse("<@1><@2> tail")

	value, parts := Reconcile(res.Parts, res.PlainText, res.PlainText)

	require.Equal(t, "<@1><@2> tail", value)
	require.Equal(t, res.Parts, parts)

	parts[0].Text = "changed"
	require.Equal(t, "@1", res.Parts[0].Text, "result must not alias input")
}

func TestReconcile_MergesPlainRuns(t *testing.T) {
	res := MustParser(userType()).Parse("Hi <@1> ab")

	_, parts := Reconcile(res.Parts, res.PlainText, "Hi @1 abc")

	require.Len(t, parts, 3)
	require.Equal(t, " abc", parts[2].Text)
}

func TestReconcile_KeepsBaseOffset(t *testing.T) {
	res := MustParser(userType()).ParseAt("a <@1>", 5)

	_, parts := Reconcile(res.Parts, res.PlainText, "ab @1")

	requirePartition(t, parts, "ab @1", 5)
}

func TestReconciler_CustomDiffer(t *testing.T) {
	r := NewReconciler(textdiff.New(0))
	res := MustParser(userType()).Parse("x <@1>")

	value, _ := r.Reconcile(res.Parts, res.PlainText, "xy @1")

	require.Equal(t, "xy <@1>", value)
}

func TestPartsInterval(t *testing.T) {
	// "ab" [0,2) "@1" [2,4) "cd" [4,6)
	parts := MustParser(userType()).Parse("ab<@1>cd").Parts
	require.Len(t, parts, 3)

	t.Run("whole mention reused", func(t *testing.T) {
		got := PartsInterval(parts, 2, 2)
		require.Len(t, got, 1)
		require.True(t, got[0].IsMention())
	})

	t.Run("fragment of mention is plain", func(t *testing.T) {
		got := PartsInterval(parts, 3, 1)
		require.Len(t, got, 1)
		require.Equal(t, "1", got[0].Text)
		require.False(t, got[0].IsMention())
		require.Equal(t, 3, got[0].Span.Start)
	})

	t.Run("crossing parts slices the ends", func(t *testing.T) {
		got := PartsInterval(parts, 1, 4)
		require.Len(t, got, 3)
		require.Equal(t, "b", got[0].Text)
		require.True(t, got[1].IsMention())
		require.Equal(t, "c", got[2].Text)
		require.Equal(t, 4, got[2].Span.Start)
	})

	t.Run("cut mention at the end decays", func(t *testing.T) {
		got := PartsInterval(parts, 0, 3)
		require.Len(t, got, 2)
		require.Equal(t, "ab", got[0].Text)
		require.Equal(t, "@", got[1].Text)
		require.False(t, got[1].IsMention())
	})

	t.Run("out of range", func(t *testing.T) {
		require.Nil(t, PartsInterval(parts, 6, 1))
		require.Nil(t, PartsInterval(parts, 2, 0))
		require.Nil(t, PartsInterval(nil, 0, 1))
	})
}

// mentionDoc draws a raw value of plain runs over [xyz ] and mentions with
// unique ids, so labels never share characters with plain text.
func mentionDoc(t *rapid.T) string {
	var b strings.Builder
	n := rapid.IntRange(1, 6).Draw(t, "tokens")
	for i := range n {
		if rapid.Bool().Draw(t, "mention") {
			b.WriteString("<@" + strconv.Itoa(10+i) + ">")
		} else {
			b.WriteString(rapid.StringMatching(`[xyz ]{0,5}`).Draw(t, "plain"))
		}
	}
	return b.String()
}

func mentionData(parts []Part) []MentionData {
	var out []MentionData
	for _, p := range parts {
		if p.IsMention() {
			d := *p.Data
			d.Match = nil
			out = append(out, d)
		}
	}
	return out
}

func TestReconcile_PartitionProperty(t *testing.T) {
	p := MustParser(userType())

	rapid.Check(t, func(t *rapid.T) {
		res := p.Parse(mentionDoc(t))
		newPlain := rapid.StringMatching(`[xyz@0-9 ]{0,20}`).Draw(t, "new")

		value, parts := Reconcile(res.Parts, res.PlainText, newPlain)

		requirePartition(t, parts, newPlain, 0)
		require.Equal(t, value, Value(parts))
	})
}

func TestReconcile_IdempotentProperty(t *testing.T) {
	p := MustParser(userType(), hashtagType())

	rapid.Check(t, func(t *rapid.T) {
		res := p.Parse(rawValue(t))

		value, parts := Reconcile(res.Parts, res.PlainText, res.PlainText)

		require.Equal(t, res.Parts, parts)
		require.Equal(t, Value(res.Parts), value)
	})
}

func TestReconcile_EditOutsideMentionsPreservesThem(t *testing.T) {
	p := MustParser(userType())

	rapid.Check(t, func(t *rapid.T) {
		res := p.Parse(mentionDoc(t))

		var plainIdx []int
		for i, part := range res.Parts {
			if !part.IsMention() {
				plainIdx = append(plainIdx, i)
			}
		}
		if len(plainIdx) == 0 {
			t.Skip("no plain part to edit")
		}
		host := res.Parts[rapid.SampledFrom(plainIdx).Draw(t, "part")].Span
		lo := rapid.IntRange(host.Start, host.End).Draw(t, "lo")
		hi := rapid.IntRange(lo, host.End).Draw(t, "hi")
		ins := rapid.StringMatching(`[xyz ]{0,4}`).Draw(t, "insert")

		runes := []rune(res.PlainText)
		newPlain := string(runes[:lo]) + ins + string(runes[hi:])

		_, parts := Reconcile(res.Parts, res.PlainText, newPlain)

		require.Equal(t, mentionData(res.Parts), mentionData(parts))
		requirePartition(t, parts, newPlain, 0)
	})
}

func TestReconcile_EditInsideMentionDecays(t *testing.T) {
	p := MustParser(userType())

	rapid.Check(t, func(t *rapid.T) {
		res := p.Parse(mentionDoc(t))

		var mentionIdx []int
		for i, part := range res.Parts {
			if part.IsMention() {
				mentionIdx = append(mentionIdx, i)
			}
		}
		if len(mentionIdx) == 0 {
			t.Skip("no mention to edit")
		}
		target := res.Parts[rapid.SampledFrom(mentionIdx).Draw(t, "mention")]
		s := target.Span

		runes := []rune(res.PlainText)
		var newPlain string
		if rapid.Bool().Draw(t, "insert") {
			at := rapid.IntRange(s.Start+1, s.End-1).Draw(t, "at")
			newPlain = string(runes[:at]) + "x" + string(runes[at:])
		} else {
			lo := rapid.IntRange(s.Start, s.End-1).Draw(t, "lo")
			hi := rapid.IntRange(lo+1, s.End).Draw(t, "hi")
			if lo == s.Start && hi == s.End {
				hi--
			}
			if hi <= lo {
				t.Skip("would delete the whole mention")
			}
			newPlain = string(runes[:lo]) + string(runes[hi:])
		}

		_, parts := Reconcile(res.Parts, res.PlainText, newPlain)

		for _, part := range parts {
			if part.IsMention() {
				require.NotEqual(t, target.Data.ID, part.Data.ID)
			}
		}
		requirePartition(t, parts, newPlain, 0)
	})
}

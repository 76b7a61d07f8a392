package mention

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/mentions/internal/span"
)

var markupPattern = regexp.MustCompile(`<(?P<trigger>[@#])(?P<id>[0-9a-z]+)>`)

func userType() *MentionType {
	return &MentionType{
		Name:               "user",
		Trigger:            "@",
		Pattern:            markupPattern,
		AllowedSpacesCount: 1,
	}
}

func topicType() *MentionType {
	return &MentionType{
		Name:             "topic",
		Trigger:          "#",
		Pattern:          markupPattern,
		InsertSpaceAfter: true,
		RenderPosition:   RenderBottom,
	}
}

func hashtagType() *PatternType {
	return &PatternType{Name: "hashtag", Pattern: regexp.MustCompile(`#[a-z]+`), Style: TagHashtag}
}

func requirePartition(t require.TestingT, parts []Part, plain string, offset int) {
	pos := offset
	for i, p := range parts {
		require.Equal(t, pos, p.Span.Start, "part %d start", i)
		require.Equal(t, pos+len([]rune(p.Text)), p.Span.End, "part %d end", i)
		pos = p.Span.End
	}
	require.Equal(t, plain, PlainText(parts))
}

func TestParse_MentionWithCustomLabel(t *testing.T) {
	mt := userType()
	mt.Label = func(d MentionData) string { return d.Trigger + "user" + d.ID }

	res, err := Parse("Hello <@123>", []PartType{mt})
	require.NoError(t, err)

	require.Equal(t, "Hello @user123", res.PlainText)
	require.Len(t, res.Parts, 2)
	require.Equal(t, "Hello ", res.Parts[0].Text)
	require.True(t, res.Parts[0].IsPlain())
	require.Equal(t, "@user123", res.Parts[1].Text)
	require.Equal(t, span.Span{Start: 6, End: 14}, res.Parts[1].Span)
	require.NotNil(t, res.Parts[1].Data)
	require.Equal(t, "123", res.Parts[1].Data.ID)
	require.Equal(t, "<@123>", res.Parts[1].Data.Original)
	require.Equal(t, TagMention, res.Parts[1].Type.Tag())
}

func TestParse_EmptyInputYieldsOneEmptyPart(t *testing.T) {
	res := MustParser(userType()).Parse("")

	require.Equal(t, "", res.PlainText)
	require.Len(t, res.Parts, 1)
	require.Equal(t, span.At(0), res.Parts[0].Span)
}

func TestParse_AdjacentMentionsKeepConnectivePart(t *testing.T) {
	res := MustParser(userType()).Parse("<@123><@456>")

	require.Equal(t, "@123@456", res.PlainText)
	require.Len(t, res.Parts, 3)
	require.True(t, res.Parts[0].IsMention())
	require.Equal(t, "", res.Parts[1].Text)
	require.Equal(t, span.At(4), res.Parts[1].Span)
	require.True(t, res.Parts[2].IsMention())
	requirePartition(t, res.Parts, res.PlainText, 0)
}

func TestParse_TypePriority(t *testing.T) {
	res := MustParser(userType(), hashtagType()).Parse("hi #go <@1>")

	texts := make([]string, len(res.Parts))
	for i, p := range res.Parts {
		texts[i] = p.Text
	}
	require.Equal(t, []string{"hi ", "#go", " ", "@1"}, texts)
	require.Equal(t, TagHashtag, res.Parts[1].Type.Tag())
	require.Nil(t, res.Parts[1].Data)
	requirePartition(t, res.Parts, res.PlainText, 0)
}

func TestParse_TriggerMismatchFallsThroughToNextType(t *testing.T) {
	res := MustParser(userType(), topicType()).Parse("<#go> <@2>")

	require.Equal(t, "#go @2", res.PlainText)
	require.Len(t, res.Parts, 3)
	require.Equal(t, "#", res.Parts[0].Data.Trigger)
	require.Equal(t, "topic", res.Parts[0].Type.(*MentionType).Name)
	require.Equal(t, " ", res.Parts[1].Text)
	require.Equal(t, "@", res.Parts[2].Data.Trigger)
}

func TestParse_UnmatchedTriggerStaysPlain(t *testing.T) {
	res := MustParser(userType()).Parse("ping <#go>")

	require.Equal(t, "ping <#go>", res.PlainText)
	for _, p := range res.Parts {
		require.False(t, p.IsMention())
	}
}

func TestParseAt_Offset(t *testing.T) {
	res := MustParser(userType()).ParseAt("a <@1> b", 10)

	require.Equal(t, 10, res.Parts[0].Span.Start)
	requirePartition(t, res.Parts, res.PlainText, 10)
}

func TestParse_PositionalGroups(t *testing.T) {
	mt := &MentionType{Trigger: "@", Pattern: regexp.MustCompile(`\[(@)([0-9]+)\]`)}

	res, err := Parse("x [@7]", []PartType{mt})
	require.NoError(t, err)
	require.Equal(t, "x @7", res.PlainText)
	require.Equal(t, "7", res.Parts[1].Data.ID)
}

func TestParse_NamedNameGroupFeedsLabel(t *testing.T) {
	mt := &MentionType{
		Trigger: "@",
		Pattern: regexp.MustCompile(`@\[(?P<name>[^\]]+)\]\((?P<trigger>@)(?P<id>[^)]+)\)`),
	}

	res, err := Parse("hi @[Ada](@42)", []PartType{mt})
	require.NoError(t, err)
	require.Equal(t, "hi @Ada", res.PlainText)
	require.Equal(t, "Ada", res.Parts[1].Data.Name)
	require.Equal(t, "42", res.Parts[1].Data.ID)
	require.Equal(t, "hi @[Ada](@42)", Value(res.Parts))
}

func TestNewParser_RejectsInvalidTypes(t *testing.T) {
	tests := []struct {
		name string
		pt   PartType
	}{
		{"no groups", &MentionType{Trigger: "@", Pattern: regexp.MustCompile(`<@\d+>`)}},
		{"no trigger", &MentionType{Pattern: markupPattern}},
		{"no pattern", &MentionType{Trigger: "@"}},
		{"pattern type without pattern", &PatternType{Name: "x"}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(userType(), tt.pt)
			require.ErrorIs(t, err, ErrInvalidPartType)
			require.Contains(t, err.Error(), "part type 1")
		})
	}
}

func TestMustParser_Panics(t *testing.T) {
	require.Panics(t, func() { MustParser(&MentionType{Trigger: "@"}) })
}

func TestMentionTypesAt(t *testing.T) {
	types := []PartType{userType(), hashtagType(), topicType()}

	require.Len(t, MentionTypes(types), 2)
	top := MentionTypesAt(types, RenderTop)
	require.Len(t, top, 1)
	require.Equal(t, "user", top[0].Name)
	bottom := MentionTypesAt(types, RenderBottom)
	require.Len(t, bottom, 1)
	require.Equal(t, "topic", bottom[0].Name)
}

// rawValue draws a raw value made of plain words, hashtags and mentions.
func rawValue(t *rapid.T) string {
	var b strings.Builder
	n := rapid.IntRange(0, 8).Draw(t, "tokens")
	for i := range n {
		switch rapid.IntRange(0, 2).Draw(t, "kind") {
		case 0:
			b.WriteString(rapid.StringMatching(`[a-z ]{0,6}`).Draw(t, "plain"))
		case 1:
			b.WriteString("#" + rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "tag"))
		default:
			b.WriteString("<@" + strconv.Itoa(i) + ">")
		}
	}
	return b.String()
}

func TestParse_PartitionAndRoundTrip(t *testing.T) {
	p := MustParser(userType(), hashtagType())

	rapid.Check(t, func(t *rapid.T) {
		raw := rawValue(t)
		offset := rapid.IntRange(0, 20).Draw(t, "offset")

		res := p.ParseAt(raw, offset)

		requirePartition(t, res.Parts, res.PlainText, offset)
		require.Equal(t, raw, Value(res.Parts))
	})
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mentions/internal/mention"
	"github.com/zjrosen/mentions/internal/session"
	"github.com/zjrosen/mentions/internal/span"
	"github.com/zjrosen/mentions/internal/textutil"
)

// partView is the printed form of a part.
type partView struct {
	Text     string `yaml:"text"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
	Type     string `yaml:"type,omitempty"`
	Style    string `yaml:"style,omitempty"`
	ID       string `yaml:"id,omitempty"`
	Trigger  string `yaml:"trigger,omitempty"`
	Original string `yaml:"original,omitempty"`
}

// changeView is the printed form of a session state.
type changeView struct {
	Value     string            `yaml:"value"`
	PlainText string            `yaml:"plain_text"`
	Parts     []partView        `yaml:"parts"`
	Caret     *int              `yaml:"caret,omitempty"`
	Decayed   int               `yaml:"decayed,omitempty"`
	Keywords  map[string]string `yaml:"keywords,omitempty"`
}

func viewChange(c session.Change, withCaret bool) changeView {
	v := changeView{
		Value:     c.Value,
		PlainText: c.PlainText,
		Parts:     viewParts(c.Parts, c.PlainText),
		Decayed:   c.Decayed,
	}
	if withCaret {
		caret := outOffset(c.PlainText, c.Selection.End)
		v.Caret = &caret
	}
	return v
}

func viewParts(parts []mention.Part, plain string) []partView {
	out := make([]partView, 0, len(parts))
	for _, p := range parts {
		pv := partView{
			Text:  p.Text,
			Start: outOffset(plain, p.Span.Start),
			End:   outOffset(plain, p.Span.End),
		}
		if p.Type != nil {
			pv.Type = partTypeName(p.Type)
			pv.Style = p.Type.Tag()
		}
		if p.Data != nil {
			pv.ID, pv.Trigger, pv.Original = p.Data.ID, p.Data.Trigger, p.Data.Original
		}
		out = append(out, pv)
	}
	return out
}

func partTypeName(pt mention.PartType) string {
	switch t := pt.(type) {
	case *mention.MentionType:
		return t.Name
	case *mention.PatternType:
		return t.Name
	}
	return ""
}

// outOffset converts a rune offset into plain for printing.
func outOffset(plain string, runeOffset int) int {
	if utf16Flag {
		return textutil.UTF16Offset(plain, runeOffset)
	}
	return runeOffset
}

// inCaret converts a caret given on the command line into a rune offset.
func inCaret(plain string, caret int) (span.Span, error) {
	if caret < 0 {
		caret = textutil.RuneLen(plain)
	} else if utf16Flag {
		caret = textutil.RuneOffset(plain, caret)
	}
	if caret > textutil.RuneLen(plain) {
		return span.Span{}, fmt.Errorf("caret %d is past the end of the text (%d)", caret, textutil.RuneLen(plain))
	}
	return span.At(caret), nil
}

// printCaret writes the plain text with a caret marker under the given rune
// offset. Only the line holding the caret gets a marker.
func printCaret(w io.Writer, plain string, caret int) {
	lines := strings.Split(plain, "\n")
	pos := 0
	for _, line := range lines {
		n := textutil.RuneLen(line)
		_, _ = fmt.Fprintln(w, line)
		if caret >= pos && caret <= pos+n {
			_, _ = fmt.Fprintln(w, textutil.CaretMarker(line, caret-pos))
			caret = -1
		}
		pos += n + 1
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}

// readInput returns args[0], or stdin when no argument is given.
func readInput(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if f, ok := in.(*os.File); ok {
		if st, err := f.Stat(); err == nil && st.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no input: pass a value or pipe one on stdin")
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

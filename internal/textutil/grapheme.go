package textutil

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// StringDisplayWidth returns the width of s in terminal cells.
func StringDisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// DisplayColumn returns the terminal column a caret at runeOffset occupies
// within s. Runes that are part of a wider grapheme cluster collapse to the
// cluster's starting column, so a caret never renders inside an emoji.
func DisplayColumn(s string, runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	col, runes := 0, 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		n := RuneLen(cluster)
		if runes+n > runeOffset {
			return col
		}
		runes += n
		col += runewidth.StringWidth(cluster)
		s = rest
		state = newState
	}
	return col
}

// CaretMarker renders a line with a caret under the given rune offset of s,
// for printing beneath s on a terminal.
func CaretMarker(s string, runeOffset int) string {
	col := DisplayColumn(s, runeOffset)
	b := make([]byte, 0, col+1)
	for i := 0; i < col; i++ {
		b = append(b, ' ')
	}
	return string(append(b, '^'))
}

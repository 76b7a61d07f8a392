// Package textutil converts between the offset units a caller may use and the
// rune offsets used throughout the mention model.
//
// Three units appear at the boundary:
//
//  1. Runes: the unit of every Span, Selection and diff count in this module.
//  2. UTF-16 code units: what JavaScript-style input surfaces report. Runes
//     above U+FFFF occupy two units.
//  3. Display columns: terminal cells, used only for rendering caret markers.
package textutil

import "unicode/utf8"

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// RuneSlice returns the runes of s in [start, end), clamping the bounds.
func RuneSlice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return ""
	}
	from, to := -1, len(s)
	i := 0
	for byteIdx := range s {
		if i == start {
			from = byteIdx
		}
		if i == end {
			to = byteIdx
			break
		}
		i++
	}
	if from < 0 {
		return ""
	}
	return s[from:to]
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

// RuneOffset converts a UTF-16 code-unit offset into a rune offset. An offset
// landing between the two halves of a surrogate pair resolves to the offset
// just after that pair. Offsets past the end clamp to the rune length.
func RuneOffset(s string, utf16Offset int) int {
	if utf16Offset <= 0 {
		return 0
	}
	units, runes := 0, 0
	for _, r := range s {
		if units >= utf16Offset {
			return runes
		}
		units += utf16Width(r)
		runes++
	}
	return runes
}

// UTF16Offset converts a rune offset into a UTF-16 code-unit offset.
func UTF16Offset(s string, runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	units, runes := 0, 0
	for _, r := range s {
		if runes == runeOffset {
			return units
		}
		units += utf16Width(r)
		runes++
	}
	return units
}

func utf16Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

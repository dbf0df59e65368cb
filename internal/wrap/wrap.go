// Package wrap implements the word-wrap engine: splitting a grapheme-indexed
// line of text into visual lines no wider than a target column count.
package wrap

import (
	"github.com/arzg/nunitius/internal/text"
)

// Wrap splits s into visual lines of display width <= width, except when a
// single grapheme is itself wider than width, in which case that grapheme
// forms its own (over-wide) line to guarantee forward progress.
func Wrap(s string, width int) []string {
	if width < 1 {
		panic("wrap: width must be >= 1")
	}
	words := splitIntoWords(s, width)
	return packLines(words, width)
}

// splitIntoWords breaks s into chunks that end either at the first space
// (inclusive of the trailing space) or, if no space occurs within width
// graphemes, at the largest grapheme-prefix whose display width is <=
// width (a forced break of at least one grapheme).
func splitIntoWords(s string, width int) []string {
	tx := text.New(s)
	var words []string
	pos := 0
	for pos < tx.Len() {
		spaceIdx, found := findSpaceFrom(tx, pos, width)
		if found {
			words = append(words, tx.Slice(pos, spaceIdx+1).AsString())
			pos = spaceIdx + 1
			continue
		}

		end := chunkEnd(tx, pos, width)
		words = append(words, tx.Slice(pos, end).AsString())
		pos = end
	}
	return words
}

// findSpaceFrom returns the grapheme index of the first single-space
// grapheme within the next width graphemes at or after pos, reporting
// false if none exists in that window (the word then takes a forced
// break instead).
func findSpaceFrom(tx text.Text, pos, width int) (int, bool) {
	limit := pos + width
	if limit > tx.Len() {
		limit = tx.Len()
	}
	for i := pos; i < limit; i++ {
		if tx.Slice(i, i+1).AsString() == " " {
			return i, true
		}
	}
	return 0, false
}

// chunkEnd returns the grapheme index one past the largest prefix starting
// at pos whose display width is <= width, always advancing by at least one
// grapheme even if that grapheme alone exceeds width.
func chunkEnd(tx text.Text, pos, width int) int {
	end := pos
	w := 0
	for end < tx.Len() {
		gw := tx.GraphemeWidth(end)
		if end > pos && w+gw > width {
			break
		}
		w += gw
		end++
		if w >= width {
			break
		}
	}
	if end == pos {
		end = pos + 1
	}
	return end
}

// packLines greedily packs words onto lines so that each line's display
// width stays <= width wherever possible.
func packLines(words []string, width int) []string {
	var lines []string
	var current string
	currentWidth := 0

	for _, w := range words {
		ww := text.New(w).Width()
		if currentWidth > 0 && currentWidth+ww > width {
			lines = append(lines, current)
			current = w
			currentWidth = ww
			continue
		}
		current += w
		currentWidth += ww
	}
	lines = append(lines, current)
	return lines
}

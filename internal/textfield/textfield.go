// Package textfield implements the single-line, horizontally-scrolling
// analogue of the editor core for one-line inputs.
package textfield

import (
	"github.com/arzg/nunitius/internal/text"
)

// TextField is a single-line grapheme-indexed input with horizontal scroll.
type TextField struct {
	buf            *text.TextBuf
	width          int
	col            int // cursor position in graphemes
	amountScrolled int
}

// New creates an empty field with the given viewport width.
func New(width int) *TextField {
	if width < 1 {
		width = 1
	}
	return &TextField{buf: text.NewTextBuf(""), width: width}
}

// Contents returns the full underlying text.
func (f *TextField) Contents() string {
	return f.buf.AsString()
}

// Cursor returns the cursor's column relative to the current scroll offset.
func (f *TextField) Cursor() int {
	return f.col - f.amountScrolled
}

// Render returns the visible slice of text, at most width graphemes wide.
func (f *TextField) Render() string {
	total := f.buf.Len()
	end := f.amountScrolled + f.width
	if end > total {
		end = total
	}
	return f.buf.Slice(f.amountScrolled, end).AsString()
}

// Add inserts s at the cursor and advances the cursor past it.
func (f *TextField) Add(s string) {
	if s == "" {
		return
	}
	f.buf.Insert(f.col, s)
	f.col += text.New(s).Len()
	f.adjustScroll()
}

// Backspace deletes the grapheme before the cursor; a no-op at the start.
func (f *TextField) Backspace() {
	if f.col == 0 {
		return
	}
	f.buf.Remove(f.col - 1)
	f.col--
	f.adjustScroll()
}

// MoveLeft moves the cursor one grapheme left; a no-op at the start.
func (f *TextField) MoveLeft() {
	if f.col > 0 {
		f.col--
	}
	f.adjustScroll()
}

// MoveRight moves the cursor one grapheme right; a no-op at the end.
func (f *TextField) MoveRight() {
	if f.col < f.buf.Len() {
		f.col++
	}
	f.adjustScroll()
}

// MoveStart jumps the cursor to the start of the field (Up in the editor's
// vocabulary).
func (f *TextField) MoveStart() {
	f.col = 0
	f.adjustScroll()
}

// MoveEnd jumps the cursor to the end of the field (Down in the editor's
// vocabulary).
func (f *TextField) MoveEnd() {
	f.col = f.buf.Len()
	f.adjustScroll()
}

// Resize changes the viewport width, shrinking the scroll offset on growth
// to reveal as much text as possible.
func (f *TextField) Resize(width int) {
	if width < 1 {
		width = 1
	}
	grew := width > f.width
	f.width = width
	if grew {
		maxScroll := f.buf.Len() - f.width
		if maxScroll < 0 {
			maxScroll = 0
		}
		if f.amountScrolled > maxScroll {
			f.amountScrolled = maxScroll
		}
	}
	f.adjustScroll()
}

// adjustScroll keeps amount_scrolled in [0, len-width] and the cursor
// reachable within the viewport. At the exact end of text longer than the
// viewport, amount_scrolled pins at its maximum (len-width) and Cursor()
// reports width — one column past the last rendered grapheme, the same
// insertion-point convention a terminal cursor uses after the last
// character of a full line. That is the only column value in [0, width]
// that content columns [0, width) never occupy, so it never overlaps a
// rendered character.
func (f *TextField) adjustScroll() {
	total := f.buf.Len()
	if total <= f.width {
		f.amountScrolled = 0
		return
	}
	maxScroll := total - f.width
	if f.amountScrolled > maxScroll {
		f.amountScrolled = maxScroll
	}
	if f.col < f.amountScrolled {
		f.amountScrolled = f.col
	} else if f.col > f.amountScrolled+f.width {
		f.amountScrolled = f.col - f.width
	}
	if f.amountScrolled < 0 {
		f.amountScrolled = 0
	}
}

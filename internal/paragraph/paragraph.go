// Package paragraph implements the paragraph buffer: an ordered, always
// non-empty sequence of wrapped lines that together form one logical editing
// unit. A paragraph's grapheme index linearizes across its lines without
// counting an implicit newline between them, which is what lets the editor
// preserve cursor position across a rewrap.
package paragraph

import (
	"fmt"
	"strings"

	"github.com/arzg/nunitius/internal/text"
	"github.com/arzg/nunitius/internal/wrap"
)

// Paragraph holds at least one line. The empty paragraph is represented as
// a single empty line, never as zero lines.
type Paragraph struct {
	lines []*text.TextBuf
}

// New builds a paragraph from s, without wrapping it. Use Rewrap to apply a
// width.
func New(s string) *Paragraph {
	return &Paragraph{lines: []*text.TextBuf{text.NewTextBuf(s)}}
}

// Empty returns a paragraph containing a single empty line, the starting
// state of every new paragraph.
func Empty() *Paragraph {
	return New("")
}

// NumLines returns the number of lines in the paragraph.
func (p *Paragraph) NumLines() int {
	return len(p.lines)
}

// Line returns the string contents of line i.
func (p *Paragraph) Line(i int) string {
	return p.lines[i].AsString()
}

// LineLen returns the grapheme length of line i.
func (p *Paragraph) LineLen(i int) int {
	return p.lines[i].Len()
}

// Lines returns the string contents of every line, in order.
func (p *Paragraph) Lines() []string {
	out := make([]string, len(p.lines))
	for i, l := range p.lines {
		out[i] = l.AsString()
	}
	return out
}

// contents joins all lines with no separator: the paragraph's logical text.
func (p *Paragraph) contents() string {
	var b strings.Builder
	for _, l := range p.lines {
		b.WriteString(l.AsString())
	}
	return b.String()
}

// Rewrap concatenates all lines and re-wraps them at width, replacing the
// line sequence. The empty paragraph rewraps to a single empty line.
func (p *Paragraph) Rewrap(width int) {
	wrapped := wrap.Wrap(p.contents(), width)
	lines := make([]*text.TextBuf, len(wrapped))
	for i, l := range wrapped {
		lines[i] = text.NewTextBuf(l)
	}
	p.lines = lines
}

// IdxOfCoords linearizes (line, col) into a single grapheme position
// counting across lines with no newline grapheme between them.
func (p *Paragraph) IdxOfCoords(line, col int) int {
	if line < 0 || line >= len(p.lines) {
		panic(fmt.Sprintf("paragraph: line %d out of range [0,%d)", line, len(p.lines)))
	}
	idx := 0
	for i := 0; i < line; i++ {
		idx += p.lines[i].Len()
	}
	return idx + col
}

// CoordsOfIdx is the inverse of IdxOfCoords: given a linear grapheme
// position, returns the (line, col) it falls on. An idx on a boundary
// between two lines maps to the start of the later line; an idx equal to
// the paragraph's total length maps to (lastLine, lastLineLen).
func (p *Paragraph) CoordsOfIdx(idx int) (line, col int) {
	remaining := idx
	for i, l := range p.lines {
		if i == len(p.lines)-1 || remaining < l.Len() {
			return i, remaining
		}
		remaining -= l.Len()
	}
	last := len(p.lines) - 1
	return last, p.lines[last].Len()
}

// SplitOff cuts the paragraph in two at (line, col): everything before that
// position stays in the receiver, everything from that position onward is
// returned as a new paragraph. Both halves remain non-empty (each is at
// least a single, possibly-empty, line).
func (p *Paragraph) SplitOff(line, col int) *Paragraph {
	if line < 0 || line >= len(p.lines) {
		panic(fmt.Sprintf("paragraph: line %d out of range [0,%d)", line, len(p.lines)))
	}
	leftText, rightText := p.lines[line].Split(p.lines[line].AsText().ByteOffset(col))

	left := make([]*text.TextBuf, 0, line+1)
	left = append(left, p.lines[:line]...)
	left = append(left, text.NewTextBuf(leftText.AsString()))

	right := make([]*text.TextBuf, 0, len(p.lines)-line)
	right = append(right, text.NewTextBuf(rightText.AsString()))
	right = append(right, p.lines[line+1:]...)

	p.lines = left
	return &Paragraph{lines: right}
}

// Join appends other's lines after the receiver's, mutating the receiver.
func (p *Paragraph) Join(other *Paragraph) {
	p.lines = append(p.lines, other.lines...)
}

// Insert inserts s at (line, col), delegating to the TextBuf on that line.
func (p *Paragraph) Insert(s string, line, col int) {
	p.lines[line].Insert(col, s)
}

// Remove deletes the grapheme at (line, col) and returns it.
func (p *Paragraph) Remove(line, col int) *text.TextBuf {
	return p.lines[line].Remove(col)
}

// Clone returns a deep copy of the paragraph.
func (p *Paragraph) Clone() *Paragraph {
	lines := make([]*text.TextBuf, len(p.lines))
	for i, l := range p.lines {
		lines[i] = text.NewTextBuf(l.AsString())
	}
	return &Paragraph{lines: lines}
}

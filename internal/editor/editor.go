// Package editor implements the multi-paragraph, word-wrapping, grapheme
// correct editor core: cursor motion, editing operations, rewrap-preserving
// cursor restoration, and viewport scrolling.
package editor

import (
	"strings"

	"github.com/arzg/nunitius/internal/paragraph"
	"github.com/arzg/nunitius/internal/text"
)

// Cursor identifies a position as (paragraph index, line index within that
// paragraph, column in graphemes).
type Cursor struct {
	Para, Line, Col int
}

// Editor is a multi-paragraph text buffer with a wrapping width, a viewport
// height, and a cursor. It is never empty: it begins as a single paragraph
// holding a single empty line.
type Editor struct {
	paragraphs    []*paragraph.Paragraph
	cursor        Cursor
	width         int
	height        int
	linesScrolled int
}

// New creates an editor wrapping at width columns with a viewport of height
// visual lines.
func New(width, height int) *Editor {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Editor{
		paragraphs: []*paragraph.Paragraph{paragraph.Empty()},
		width:      width,
		height:     height,
	}
}

// Cursor returns the render-space cursor position: (visual row relative to
// the current scroll offset, visual column in display cells).
func (e *Editor) Cursor() (row, col int) {
	visLine := e.cursorVisualLine()
	line := e.paragraphs[e.cursor.Para].Line(e.cursor.Line)
	col = text.New(line).Slice(0, columnClamp(line, e.cursor.Col)).Width()
	return visLine - e.linesScrolled, col
}

func columnClamp(line string, col int) int {
	n := text.New(line).Len()
	if col > n {
		return n
	}
	if col < 0 {
		return 0
	}
	return col
}

// Contents returns the full document text, paragraphs separated by a single
// newline and lines within a paragraph joined with no separator (matching
// the paragraph's own linearization, which carries no inter-line newline).
func (e *Editor) Contents() string {
	parts := make([]string, len(e.paragraphs))
	for i, p := range e.paragraphs {
		parts[i] = strings.Join(p.Lines(), "")
	}
	return strings.Join(parts, "\n")
}

// Render returns exactly Height lines if scrolling is active, otherwise
// every visual line: each paragraph's wrapped lines, with one blank
// separator row between consecutive paragraphs.
func (e *Editor) Render() []string {
	all := e.allVisualLines()
	total := len(all)
	if total <= e.height {
		return all
	}
	end := e.linesScrolled + e.height
	if end > total {
		end = total
	}
	return all[e.linesScrolled:end]
}

func (e *Editor) allVisualLines() []string {
	var lines []string
	for i, p := range e.paragraphs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, p.Lines()...)
	}
	return lines
}

func (e *Editor) totalVisualLines() int {
	total := 0
	for _, p := range e.paragraphs {
		total += p.NumLines()
	}
	return total + (len(e.paragraphs) - 1)
}

func (e *Editor) cursorVisualLine() int {
	line := 0
	for i := 0; i < e.cursor.Para; i++ {
		line += e.paragraphs[i].NumLines() + 1
	}
	return line + e.cursor.Line
}

// ResizeWidth changes the wrap width and rewraps every paragraph, restoring
// each cursor-bearing paragraph's logical position from its linear index.
func (e *Editor) ResizeWidth(w int) {
	if w < 1 {
		w = 1
	}
	if w == e.width {
		return
	}
	e.width = w

	cur := e.paragraphs[e.cursor.Para]
	idx := cur.IdxOfCoords(e.cursor.Line, e.cursor.Col)
	for _, p := range e.paragraphs {
		p.Rewrap(w)
	}
	e.cursor.Line, e.cursor.Col = cur.CoordsOfIdx(idx)
	e.adjustScroll()
}

// ResizeHeight changes the viewport height and re-adjusts scroll.
func (e *Editor) ResizeHeight(h int) {
	if h < 1 {
		h = 1
	}
	e.height = h
	e.adjustScroll()
}

// MoveLeft moves the cursor one grapheme left, crossing line and paragraph
// boundaries as needed. A no-op at the very start of the document.
func (e *Editor) MoveLeft() {
	c := e.cursor
	if c.Para == 0 && c.Line == 0 && c.Col == 0 {
		return
	}
	if c.Col == 0 {
		if c.Line > 0 {
			c.Line--
			c.Col = e.paragraphs[c.Para].LineLen(c.Line)
		} else {
			c.Para--
			p := e.paragraphs[c.Para]
			c.Line = p.NumLines() - 1
			c.Col = p.LineLen(c.Line)
		}
	} else {
		c.Col--
	}
	e.cursor = c
	e.adjustScroll()
}

// MoveRight mirrors MoveLeft.
func (e *Editor) MoveRight() {
	c := e.cursor
	p := e.paragraphs[c.Para]
	atLineEnd := c.Col == p.LineLen(c.Line)
	atParaLastLine := c.Line == p.NumLines()-1
	atLastPara := c.Para == len(e.paragraphs)-1

	if atLineEnd && atParaLastLine && atLastPara {
		return
	}
	if atLineEnd {
		if !atParaLastLine {
			c.Line++
			c.Col = 0
		} else {
			c.Para++
			c.Line = 0
			c.Col = 0
		}
	} else {
		c.Col++
	}
	e.cursor = c
	e.adjustScroll()
}

// MoveUp moves the cursor to the previous visual line, clamping the column
// to the new line's length.
func (e *Editor) MoveUp() {
	c := e.cursor
	if c.Para == 0 && c.Line == 0 {
		c.Col = 0
		e.cursor = c
		e.adjustScroll()
		return
	}
	if c.Line == 0 {
		c.Para--
		c.Line = e.paragraphs[c.Para].NumLines() - 1
	} else {
		c.Line--
	}
	c.Col = columnClamp(e.paragraphs[c.Para].Line(c.Line), c.Col)
	e.cursor = c
	e.adjustScroll()
}

// MoveDown mirrors MoveUp.
func (e *Editor) MoveDown() {
	c := e.cursor
	p := e.paragraphs[c.Para]
	atParaLastLine := c.Line == p.NumLines()-1
	atLastPara := c.Para == len(e.paragraphs)-1

	if atParaLastLine && atLastPara {
		c.Col = p.LineLen(c.Line)
		e.cursor = c
		e.adjustScroll()
		return
	}
	if atParaLastLine {
		c.Para++
		c.Line = 0
	} else {
		c.Line++
	}
	c.Col = columnClamp(e.paragraphs[c.Para].Line(c.Line), c.Col)
	e.cursor = c
	e.adjustScroll()
}

// Add inserts s at the cursor and advances the cursor by its grapheme
// count, rewrapping the current paragraph and restoring the cursor's
// logical position from its paragraph-local grapheme index.
func (e *Editor) Add(s string) {
	if s == "" {
		return
	}
	p := e.paragraphs[e.cursor.Para]
	idx := p.IdxOfCoords(e.cursor.Line, e.cursor.Col)
	p.Insert(s, e.cursor.Line, e.cursor.Col)
	idx += text.New(s).Len()
	p.Rewrap(e.width)
	e.cursor.Line, e.cursor.Col = p.CoordsOfIdx(idx)
	e.adjustScroll()
}

// Backspace deletes the grapheme before the cursor, joining with the
// previous paragraph if the cursor sits at a paragraph start, and is a
// no-op at the very start of the document.
func (e *Editor) Backspace() {
	c := e.cursor
	if c.Para == 0 && c.Line == 0 && c.Col == 0 {
		return
	}

	p := e.paragraphs[c.Para]
	idx := p.IdxOfCoords(c.Line, c.Col)

	if idx == 0 {
		prev := e.paragraphs[c.Para-1]
		joinIdx := prev.IdxOfCoords(prev.NumLines()-1, prev.LineLen(prev.NumLines()-1))
		prev.Join(p)
		e.paragraphs = append(e.paragraphs[:c.Para], e.paragraphs[c.Para+1:]...)
		prev.Rewrap(e.width)
		e.cursor.Para = c.Para - 1
		e.cursor.Line, e.cursor.Col = prev.CoordsOfIdx(joinIdx)
		e.adjustScroll()
		return
	}

	newIdx := idx - 1
	line, col := p.CoordsOfIdx(newIdx)
	p.Remove(line, col)
	p.Rewrap(e.width)
	e.cursor.Line, e.cursor.Col = p.CoordsOfIdx(newIdx)
	e.adjustScroll()
}

// Enter splits the current paragraph at the cursor; the trailing half
// becomes a new paragraph and the cursor moves to its start. Pressing
// enter at a paragraph's very start degenerates to inserting an empty
// paragraph before it, since the trailing half is then the whole paragraph.
func (e *Editor) Enter() {
	c := e.cursor
	p := e.paragraphs[c.Para]
	right := p.SplitOff(c.Line, c.Col)

	newParagraphs := make([]*paragraph.Paragraph, 0, len(e.paragraphs)+1)
	newParagraphs = append(newParagraphs, e.paragraphs[:c.Para+1]...)
	newParagraphs = append(newParagraphs, right)
	newParagraphs = append(newParagraphs, e.paragraphs[c.Para+1:]...)
	e.paragraphs = newParagraphs

	p.Rewrap(e.width)
	right.Rewrap(e.width)

	e.cursor = Cursor{Para: c.Para + 1, Line: 0, Col: 0}
	e.adjustScroll()
}

// adjustScroll applies the four-branch viewport rule from the scrolling
// algorithm: fit the whole document, scroll up to reveal, scroll down to
// reveal, or pull up to eliminate trailing blank space.
func (e *Editor) adjustScroll() {
	total := e.totalVisualLines()
	if total <= e.height {
		e.linesScrolled = 0
		return
	}

	cursorLine := e.cursorVisualLine()
	switch {
	case cursorLine < e.linesScrolled:
		e.linesScrolled = min(cursorLine, total-e.height)
	case cursorLine > e.linesScrolled+e.height-1:
		e.linesScrolled = cursorLine - e.height + 1
	case e.linesScrolled > total-e.height:
		e.linesScrolled = total - e.height
	}
}

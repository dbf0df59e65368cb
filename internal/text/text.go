// Package text implements a grapheme-indexed text buffer. Length, slicing,
// insertion, and removal are all expressed in grapheme-cluster units rather
// than bytes or code points, so that editing operations behave correctly on
// multi-byte, multi-codepoint, and zero-width-joined Unicode text.
//
// The buffer tracks three coordinate systems on the same underlying bytes:
// byte offsets (what the standard library understands), grapheme indices
// (what the editor and wire protocol understand), and display columns (what
// the terminal understands). Conversions between them go through the cached
// offsets slice built by segmenting the string with uniseg.
package text

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Text is an immutable, borrowed view over a byte string plus its grapheme
// offset index. Slicing reuses the same backing string; the offsets of the
// slice are a new, rebased copy.
type Text struct {
	s       string
	offsets []int // offsets[i] is the byte offset of the start of grapheme i; len(offsets) == len(graphemes)+1, final entry == len(s)
}

// New segments s into extended grapheme clusters and caches their byte
// offsets.
func New(s string) Text {
	return Text{s: s, offsets: graphemeOffsets(s)}
}

func graphemeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	state := -1
	pos := 0
	remaining := s
	for len(remaining) > 0 {
		var cluster string
		var rest string
		cluster, rest, _, state = uniseg.StepString(remaining, state)
		offsets = append(offsets, pos)
		pos += len(cluster)
		remaining = rest
	}
	offsets = append(offsets, pos)
	return offsets
}

// Len returns the number of grapheme clusters.
func (t Text) Len() int {
	if len(t.offsets) == 0 {
		return 0
	}
	return len(t.offsets) - 1
}

// IsEmpty reports whether the text has zero graphemes.
func (t Text) IsEmpty() bool {
	return t.Len() == 0
}

// AsString returns the underlying byte string.
func (t Text) AsString() string {
	return t.s
}

// ByteOffset returns the byte offset at which grapheme i starts. i may
// equal Len(), yielding the byte length (past-the-end).
func (t Text) ByteOffset(i int) int {
	if i < 0 || i >= len(t.offsets) {
		panic(fmt.Sprintf("text: grapheme index %d out of range [0,%d]", i, t.Len()))
	}
	return t.offsets[i]
}

// Slice returns the substring spanning grapheme indices [start, end).
// Past-the-end positions (end == Len()) map to the byte length.
func (t Text) Slice(start, end int) Text {
	if start < 0 || end > t.Len() || start > end {
		panic(fmt.Sprintf("text: invalid slice range [%d,%d) of length %d", start, end, t.Len()))
	}
	bStart := t.offsets[start]
	bEnd := t.offsets[end]
	return Text{s: t.s[bStart:bEnd], offsets: rebase(t.offsets[start:end+1], bStart)}
}

func rebase(offsets []int, origin int) []int {
	out := make([]int, len(offsets))
	for i, o := range offsets {
		out[i] = o - origin
	}
	return out
}

// Split divides the text at byteIdx, a byte offset that must have been
// obtained from this Text's own ByteOffset (or equal len(s)). Both halves
// are re-segmented immediately via New, so each carries its own grapheme
// index.
func (t Text) Split(byteIdx int) (Text, Text) {
	if byteIdx < 0 || byteIdx > len(t.s) {
		panic(fmt.Sprintf("text: split byte index %d out of range [0,%d]", byteIdx, len(t.s)))
	}
	return New(t.s[:byteIdx]), New(t.s[byteIdx:])
}

// Find searches for needle as a byte substring and, if found, returns the
// grapheme index of its first byte. It returns (0, false) if absent.
func (t Text) Find(needle string) (int, bool) {
	idx := indexByte(t.s, needle)
	if idx < 0 {
		return 0, false
	}
	return t.ByteToGraphemeIndex(idx), true
}

func indexByte(haystack, needle string) int {
	n := len(needle)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(haystack); i++ {
		if haystack[i:i+n] == needle {
			return i
		}
	}
	return -1
}

// ByteToGraphemeIndex maps a byte offset back to the grapheme index whose
// cluster starts there (or would start there, for offsets strictly inside a
// cluster: it returns the index of the cluster containing that byte).
func (t Text) ByteToGraphemeIndex(byteOffset int) int {
	for i := 0; i+1 < len(t.offsets); i++ {
		if byteOffset < t.offsets[i+1] {
			return i
		}
	}
	return t.Len()
}

// Width returns the sum of display-column widths of the text's grapheme
// clusters, East-Asian-Width aware.
func (t Text) Width() int {
	width := 0
	for i := 0; i < t.Len(); i++ {
		width += t.GraphemeWidth(i)
	}
	return width
}

// GraphemeWidth returns the display width of the grapheme at index i. A
// multi-rune cluster (ZWJ sequence, combining marks) counts as the width of
// its widest constituent rune, never as the sum — joined sequences render
// as a single terminal cell in practice.
func (t Text) GraphemeWidth(i int) int {
	cluster := t.s[t.offsets[i]:t.offsets[i+1]]
	w := runewidth.StringWidth(cluster)
	if w == 0 && len(cluster) > 0 {
		// Zero-width joiners/marks alone still occupy their base cell.
		return 1
	}
	return w
}

// cjkCondition forces ambiguous-width runes (the East Asian Width
// "Ambiguous" class) to count as two columns, matching how CJK terminals
// render them regardless of the host locale.
var cjkCondition = &runewidth.Condition{EastAsianWidth: true}

// WidthCJK returns the sum of display-column widths of the text's grapheme
// clusters, treating East-Asian-Width "Ambiguous" runes as double-width.
// Use this instead of Width when rendering for a CJK-locale terminal.
func (t Text) WidthCJK() int {
	width := 0
	for i := 0; i < t.Len(); i++ {
		width += t.GraphemeWidthCJK(i)
	}
	return width
}

// GraphemeWidthCJK is GraphemeWidth under the East-Asian-Width-aware
// condition; see WidthCJK.
func (t Text) GraphemeWidthCJK(i int) int {
	cluster := t.s[t.offsets[i]:t.offsets[i+1]]
	w := cjkCondition.StringWidth(cluster)
	if w == 0 && len(cluster) > 0 {
		return 1
	}
	return w
}

// TextBuf is an owned, mutable grapheme text buffer. It recomputes its
// offset index from scratch on every mutation: simplicity over
// incrementality, acceptable because buffers here never exceed a single
// paragraph line.
type TextBuf struct {
	text Text
}

// NewTextBuf wraps s as a mutable buffer.
func NewTextBuf(s string) *TextBuf {
	return &TextBuf{text: New(s)}
}

// AsText returns a read-only Text view of the current contents.
func (b *TextBuf) AsText() Text {
	return b.text
}

// AsString returns the underlying byte string.
func (b *TextBuf) AsString() string {
	return b.text.AsString()
}

// Len returns the number of grapheme clusters.
func (b *TextBuf) Len() int {
	return b.text.Len()
}

// IsEmpty reports whether the buffer has zero graphemes.
func (b *TextBuf) IsEmpty() bool {
	return b.text.IsEmpty()
}

// Push appends s to the end of the buffer.
func (b *TextBuf) Push(s string) {
	b.text = New(b.text.s + s)
}

// Insert inserts s before grapheme index i.
func (b *TextBuf) Insert(i int, s string) {
	if i < 0 || i > b.Len() {
		panic(fmt.Sprintf("text: insert index %d out of range [0,%d]", i, b.Len()))
	}
	byteIdx := b.text.ByteOffset(i)
	b.text = New(b.text.s[:byteIdx] + s + b.text.s[byteIdx:])
}

// Remove deletes the grapheme at index i and returns it as a new TextBuf.
func (b *TextBuf) Remove(i int) *TextBuf {
	if i < 0 || i >= b.Len() {
		panic(fmt.Sprintf("text: remove index %d out of range [0,%d)", i, b.Len()))
	}
	start := b.text.ByteOffset(i)
	end := b.text.ByteOffset(i + 1)
	removed := b.text.s[start:end]
	b.text = New(b.text.s[:start] + b.text.s[end:])
	return NewTextBuf(removed)
}

// Slice returns a read-only view over [start,end).
func (b *TextBuf) Slice(start, end int) Text {
	return b.text.Slice(start, end)
}

// Split divides the buffer in two at byteIdx, consuming neither half's
// receiver; see Text.Split.
func (b *TextBuf) Split(byteIdx int) (Text, Text) {
	return b.text.Split(byteIdx)
}

// Find delegates to the underlying Text.
func (b *TextBuf) Find(needle string) (int, bool) {
	return b.text.Find(needle)
}

// Width delegates to the underlying Text.
func (b *TextBuf) Width() int {
	return b.text.Width()
}

// WidthCJK delegates to the underlying Text.
func (b *TextBuf) WidthCJK() int {
	return b.text.WidthCJK()
}

package textfield_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arzg/nunitius/internal/textfield"
)

func TestNoScrollWhenFits(t *testing.T) {
	f := textfield.New(10)
	f.Add("hello")
	require.Equal(t, "hello", f.Render())
	require.Equal(t, 5, f.Cursor())
}

func TestScrollsWhenOverWidth(t *testing.T) {
	f := textfield.New(5)
	f.Add("hello world")
	require.Len(t, []rune(f.Render()), 5)
	require.GreaterOrEqual(t, f.Cursor(), 0)
	// Cursor sits at the end of an 11-grapheme buffer in a 5-wide viewport:
	// amount_scrolled pins at its maximum (len-width), so Cursor() reports
	// width itself, the insertion point just past the last rendered cell.
	require.LessOrEqual(t, f.Cursor(), 5)
}

func TestCursorStaysAtViewportEdgeAtBufferEnd(t *testing.T) {
	f := textfield.New(5)
	f.Add("hello world")
	require.Equal(t, 5, f.Cursor())

	f.MoveLeft()
	require.Less(t, f.Cursor(), 5)
}

func TestBackspaceAtStartNoOp(t *testing.T) {
	f := textfield.New(5)
	f.Backspace()
	require.Equal(t, "", f.Contents())
}

func TestGrowResizeRevealsMoreText(t *testing.T) {
	f := textfield.New(3)
	f.Add("hello world")
	f.MoveEnd()
	beforeRender := f.Render()
	f.Resize(20)
	require.Equal(t, "hello world", f.Render())
	require.NotEqual(t, beforeRender, f.Render())
}

func TestMoveStartEnd(t *testing.T) {
	f := textfield.New(5)
	f.Add("abcdef")
	f.MoveStart()
	require.Equal(t, 0, f.Cursor())
	f.MoveEnd()
	require.GreaterOrEqual(t, f.Cursor(), 0)
}

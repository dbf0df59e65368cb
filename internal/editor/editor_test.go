package editor_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arzg/nunitius/internal/editor"
)

func TestEnterAtStartOfSingleCharLine(t *testing.T) {
	e := editor.New(80, 10)
	e.Add("a")
	e.MoveLeft()
	e.Enter()
	e.Add("b")

	require.Equal(t, []string{"", "", "ba"}, e.Render())
	row, col := e.Cursor()
	require.Equal(t, 2, row)
	require.Equal(t, 1, col)
}

func TestBackspaceJoinsParagraphAtParagraphStart(t *testing.T) {
	e := editor.New(80, 10)
	e.Add("a")
	e.Enter()
	e.Add("b")
	// cursor sits at paragraph 1, line 0, col 1: end of the new paragraph
	// "b". One left reaches its start (col 0), the join point backspace
	// collapses into the previous paragraph.
	e.MoveLeft()
	e.Backspace()

	require.Equal(t, []string{"ab"}, e.Render())
	row, col := e.Cursor()
	require.Equal(t, 0, row)
	require.Equal(t, 1, col)
}

func TestBackspaceNoOpAtBufferStart(t *testing.T) {
	e := editor.New(80, 10)
	e.Add("a")
	e.MoveLeft()
	e.Backspace()
	require.Equal(t, []string{"a"}, e.Render())
	row, col := e.Cursor()
	require.Equal(t, 0, row)
	require.Equal(t, 0, col)
}

func TestMoveLeftRightNoOpAtBoundaries(t *testing.T) {
	e := editor.New(80, 10)
	e.MoveLeft() // no-op, empty buffer at start
	row, col := e.Cursor()
	require.Equal(t, 0, row)
	require.Equal(t, 0, col)

	e.MoveRight() // still at the only (empty) position
	row, col = e.Cursor()
	require.Equal(t, 0, row)
	require.Equal(t, 0, col)
}

func TestWrapForcesMultipleVisualLines(t *testing.T) {
	e := editor.New(3, 10)
	e.Add("abcdef")
	require.Equal(t, []string{"abc", "def"}, e.Render())
}

func TestViewportScrollsToRevealCursor(t *testing.T) {
	e := editor.New(80, 2)
	for i := 0; i < 5; i++ {
		e.Add("x")
		e.Enter()
	}
	lines := e.Render()
	require.Len(t, lines, 2)
	row, _ := e.Cursor()
	require.GreaterOrEqual(t, row, 0)
	require.Less(t, row, 2)
}

func TestCursorBoundsInvariantUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := editor.New(rapid.IntRange(1, 10).Draw(rt, "width"), rapid.IntRange(1, 6).Draw(rt, "height"))
		ops := rapid.SliceOfN(rapid.IntRange(0, 6), 0, 40).Draw(rt, "ops")
		for _, op := range ops {
			switch op {
			case 0:
				e.Add("a")
			case 1:
				e.Backspace()
			case 2:
				e.Enter()
			case 3:
				e.MoveLeft()
			case 4:
				e.MoveRight()
			case 5:
				e.MoveUp()
			case 6:
				e.MoveDown()
			}
		}
		row, col := e.Cursor()
		require.GreaterOrEqual(rt, row, 0) // every operation ends with adjustScroll, which keeps the cursor row inside the viewport
		require.GreaterOrEqual(rt, col, 0)
		lines := e.Render()
		require.NotEmpty(rt, lines)
	})
}

package paragraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arzg/nunitius/internal/paragraph"
)

func TestRewrap(t *testing.T) {
	p := paragraph.New("foo bar baz")
	p.Rewrap(8)
	require.Equal(t, []string{"foo bar ", "baz"}, p.Lines())
}

func TestIdxOfCoordsAndCoordsOfIdx(t *testing.T) {
	p := paragraph.New("foo bar baz")
	p.Rewrap(8) // ["foo bar ", "baz"]

	require.Equal(t, 0, p.IdxOfCoords(0, 0))
	require.Equal(t, 8, p.IdxOfCoords(1, 0))
	require.Equal(t, 11, p.IdxOfCoords(1, 3))

	line, col := p.CoordsOfIdx(0)
	require.Equal(t, 0, line)
	require.Equal(t, 0, col)

	line, col = p.CoordsOfIdx(8)
	require.Equal(t, 1, line)
	require.Equal(t, 0, col)

	line, col = p.CoordsOfIdx(11)
	require.Equal(t, 1, line)
	require.Equal(t, 3, col)
}

func TestSplitOffAndJoin(t *testing.T) {
	p := paragraph.New("foo bar baz")
	p.Rewrap(8)

	right := p.SplitOff(1, 1)
	require.Equal(t, []string{"foo bar ", "b"}, p.Lines())
	require.Equal(t, []string{"az"}, right.Lines())

	p.Join(right)
	require.Equal(t, []string{"foo bar ", "b", "az"}, p.Lines())
}

func TestInsertAndRemove(t *testing.T) {
	p := paragraph.New("ac")
	p.Insert("b", 0, 1)
	require.Equal(t, "abc", p.Line(0))

	removed := p.Remove(0, 1)
	require.Equal(t, "ac", p.Line(0))
	require.Equal(t, "b", removed.AsString())
}

func TestEmptyParagraphIsSingleEmptyLine(t *testing.T) {
	p := paragraph.Empty()
	require.Equal(t, 1, p.NumLines())
	require.Equal(t, "", p.Line(0))
}

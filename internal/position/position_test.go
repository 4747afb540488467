package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(file string, line, startCol, endCol, startOff, endOff int) Span {
	return Span{
		Start: Position{File: file, Line: line, Col: startCol, Offset: startOff},
		End:   Position{File: file, Line: line, Col: endCol, Offset: endOff},
	}
}

func TestPositionString(t *testing.T) {
	p := Position{File: "src/main.why", Line: 3, Col: 7, Offset: 42}
	assert.Equal(t, "main.why:3:7", p.String())

	anon := Position{Line: 3, Col: 7, Offset: 42}
	assert.Equal(t, "3:7", anon.String())
}

func TestSpanValidity(t *testing.T) {
	assert.True(t, span("t.why", 1, 1, 4, 0, 3).IsValid())
	assert.False(t, Span{}.IsValid())

	crossFile := Span{
		Start: Position{File: "a.why", Line: 1, Col: 1, Offset: 0},
		End:   Position{File: "b.why", Line: 1, Col: 2, Offset: 1},
	}
	assert.False(t, crossFile.IsValid())
}

func TestSpanCovers(t *testing.T) {
	s := span("t.why", 1, 1, 6, 0, 5)

	assert.True(t, s.Covers(0))
	assert.True(t, s.Covers(4))
	assert.False(t, s.Covers(5))
	assert.False(t, Span{}.Covers(0))
}

func TestSpanMergeCoversBoth(t *testing.T) {
	a := span("t.why", 1, 1, 4, 0, 3)
	b := span("t.why", 1, 9, 12, 8, 11)

	m := a.Merge(b)
	assert.Equal(t, 0, m.Start.Offset)
	assert.Equal(t, 11, m.End.Offset)
	assert.Equal(t, 11, m.Len())
}

func TestSpanMergeWithInvalidKeepsValidSide(t *testing.T) {
	a := span("t.why", 1, 1, 4, 0, 3)

	assert.Equal(t, a, a.Merge(Span{}))
	assert.Equal(t, a, Span{}.Merge(a))
}

func TestFileLineLookup(t *testing.T) {
	f := NewFile("t.why", "let x\n= 1;\n")

	assert.Equal(t, 3, f.NumLines())
	assert.Equal(t, "let x", f.Line(1))
	assert.Equal(t, "= 1;", f.Line(2))
	assert.Equal(t, "", f.Line(3))
	assert.Equal(t, "", f.Line(4))
}

func TestFileLocate(t *testing.T) {
	f := NewFile("t.why", "let x\n= 1;")

	pos := f.Locate(6)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 1, pos.Col)
	assert.Equal(t, 6, pos.Offset)

	assert.False(t, f.Locate(-1).Known())
	assert.False(t, f.Locate(99).Known())
}

func TestSourceMapSlice(t *testing.T) {
	sm := NewSourceMap()
	sm.Add("t.why", "let x = 42;")

	assert.Equal(t, "x", sm.Slice(span("t.why", 1, 5, 6, 4, 5)))
	assert.Equal(t, "", sm.Slice(span("ghost.why", 1, 5, 6, 4, 5)))
}

// TestHighlightFormat locks down the diagnostic rendering format: the
// offending line prefixed by its number, then a caret line carrying the
// message.
func TestHighlightFormat(t *testing.T) {
	sm := NewSourceMap()
	sm.Add("t.why", "let x = 42;")

	out := Highlight(sm, span("t.why", 1, 9, 11, 8, 10), "expected ;")
	assert.Equal(t, "1 |let x = 42;\n   |        ^^   expected ;", out)
}

func TestHighlightUnknownFileFallsBack(t *testing.T) {
	sm := NewSourceMap()

	out := Highlight(sm, span("ghost.why", 1, 1, 2, 0, 1), "boom")
	assert.Equal(t, "boom", out)
}

func TestHighlightInvalidSpanFallsBack(t *testing.T) {
	sm := NewSourceMap()
	sm.Add("t.why", "let x = 42;")

	require.Equal(t, "boom", Highlight(sm, Span{}, "boom"))
}

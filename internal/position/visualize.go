package position

// This file renders the span-prefixed diagnostic format: each offending
// source line prefixed by its line number, followed by a caret line
// pointing at the spanned columns, with the message after the final
// caret run.

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Highlight renders the lines span covers out of sm. A span-less error
// or an unregistered file falls back to the bare message.
func Highlight(sm *SourceMap, span Span, message string) string {
	if !span.IsValid() {
		return message
	}
	file := sm.File(span.Start.File)
	if file == nil {
		return message
	}

	var b strings.Builder
	for lineNum := span.Start.Line; lineNum <= span.End.Line; lineNum++ {
		line := file.Line(lineNum)
		fmt.Fprintf(&b, "%d |%s\n", lineNum, line)

		startCol, endCol := 1, utf8.RuneCountInString(line)+1
		if lineNum == span.Start.Line {
			startCol = span.Start.Col
		}
		if lineNum == span.End.Line {
			endCol = span.End.Col
		}

		b.WriteString("   |")
		writeCaret(&b, line, startCol, endCol)
		if lineNum == span.End.Line {
			b.WriteString("   " + message)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// writeCaret writes the spaces-then-carets line under [startCol, endCol),
// carrying tabs through so the carets line up under tab-indented code.
func writeCaret(b *strings.Builder, line string, startCol, endCol int) {
	runes := []rune(line)

	for i := 1; i < startCol; i++ {
		if i <= len(runes) && runes[i-1] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}

	n := endCol - startCol
	if n < 1 {
		n = 1
	}
	b.WriteString(strings.Repeat("^", n))
}

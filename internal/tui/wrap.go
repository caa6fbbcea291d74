package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typer/internal/engine"
)

// wrongSpace marks a space slot that was mistyped.
const wrongSpace = '•'

// visibleLineCount is how many wrapped lines the typing view shows.
const visibleLineCount = 3

type styledRune struct {
	s       string
	width   int
	isSpace bool
	cursor  bool
}

// buildStyledRunes renders engine slots. cursor is -1 when the test is complete.
func buildStyledRunes(slots []engine.Slot, cursor int, st styles) []styledRune {
	wordStart, wordEnd, inWord := wordAt(slots, cursor)

	out := make([]styledRune, 0, len(slots))
	for i, slot := range slots {
		displayed := slot.Char
		style := st.pending
		switch slot.Status {
		case engine.SlotCorrect:
			style = st.correct
		case engine.SlotIncorrect:
			style = st.incorrect
			if slot.Char == ' ' {
				displayed = wrongSpace
			}
		default:
			if inWord && i >= wordStart && i < wordEnd {
				style = st.currentWord
			}
		}
		if i == cursor {
			style = st.caret(style)
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: slot.Char == ' ',
			cursor:  i == cursor,
		})
	}
	return out
}

// wordAt returns the bounds of the word under the cursor. A cursor on a
// space belongs to the word after it.
func wordAt(slots []engine.Slot, cursor int) (start, end int, ok bool) {
	if cursor < 0 || cursor >= len(slots) {
		return 0, 0, false
	}
	start = cursor
	for start < len(slots) && slots[start].Char == ' ' {
		start++
	}
	if start == len(slots) {
		return 0, 0, false
	}
	for start > 0 && slots[start-1].Char != ' ' {
		start--
	}
	end = start
	for end < len(slots) && slots[end].Char != ' ' {
		end++
	}
	return start, end, true
}

// wrapLines breaks runes into lines no wider than width, after the last space
// that fits or mid-word when a word is wider than the line. Breaking spaces
// stay at the end of their line so mistyped spaces remain visible.
func wrapLines(runes []styledRune, width int) [][]styledRune {
	if width <= 0 || len(runes) == 0 {
		return [][]styledRune{runes}
	}
	var lines [][]styledRune
	start, lineWidth, breakAt := 0, 0, -1
	for i, item := range runes {
		for lineWidth+item.width > width && i > start {
			end := i
			if breakAt >= start {
				end = breakAt + 1
			}
			lines = append(lines, runes[start:end])
			start = end
			lineWidth = widthOf(runes[start:i])
			breakAt = -1
		}
		lineWidth += item.width
		if item.isSpace {
			breakAt = i
		}
	}
	return append(lines, runes[start:])
}

// visibleLines keeps at most n lines with the cursor line first, or second
// once a line has been completed.
func visibleLines(lines [][]styledRune, n int) [][]styledRune {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	first := max(0, cursorLine(lines)-1)
	first = min(first, len(lines)-n)
	return lines[first : first+n]
}

func cursorLine(lines [][]styledRune) int {
	for i, line := range lines {
		for _, item := range line {
			if item.cursor {
				return i
			}
		}
	}
	return len(lines) - 1
}

func renderLines(lines [][]styledRune) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, item := range line {
			b.WriteString(item.s)
		}
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	return renderLines(wrapLines(runes, width))
}

func widthOf(runes []styledRune) int {
	total := 0
	for _, item := range runes {
		total += item.width
	}
	return total
}

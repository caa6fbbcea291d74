package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/typer/internal/engine"
	"github.com/verte-zerg/typer/internal/settings"
)

func slotsOf(text string, statuses ...engine.SlotStatus) []engine.Slot {
	slots := make([]engine.Slot, 0, len(text))
	for i, r := range []rune(text) {
		status := engine.SlotPending
		if i < len(statuses) {
			status = statuses[i]
		}
		slots = append(slots, engine.Slot{Char: r, Status: status})
	}
	return slots
}

func TestBuildStyledRunesCursor(t *testing.T) {
	st := newStyles("midnight", settings.CaretUnderline)
	runes := buildStyledRunes(slotsOf("ab", engine.SlotCorrect), 1, st)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != st.correct.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != st.caret(st.currentWord).Render("b") {
		t.Fatalf("expected caret style for second rune")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	st := newStyles("midnight", settings.CaretLine)
	runes := buildStyledRunes(slotsOf("a", engine.SlotCorrect), -1, st)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != st.correct.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	st := newStyles("carbon", settings.CaretBlock)
	runes := buildStyledRunes(slotsOf("ab", engine.SlotCorrect, engine.SlotIncorrect), -1, st)
	if runes[1].s != st.incorrect.Render("b") {
		t.Fatalf("expected incorrect style showing the target rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	st := newStyles("serika", settings.CaretOff)
	runes := buildStyledRunes(slotsOf("one two", engine.SlotCorrect), 1, st)
	if runes[0].s != st.correct.Render("o") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[2].s != st.currentWord.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != st.pending.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
	if runes[6].s != st.pending.Render("o") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	st := newStyles("midnight", settings.CaretLine)
	runes := buildStyledRunes(slotsOf("a b", engine.SlotCorrect, engine.SlotIncorrect), 2, st)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[1].s != st.incorrect.Render(string(wrongSpace)) {
		t.Fatalf("expected dot for wrong space")
	}
	if !runes[1].isSpace {
		t.Fatalf("wrong space must still break lines")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	st := newStyles("midnight", settings.CaretOff)
	runes := buildStyledRunes(slotsOf("alpha beta gamma"), -1, st)
	got := wrapStyledRunes(runes, 11)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if lines[0] != "alpha beta " || lines[1] != "gamma" {
		t.Fatalf("unexpected wrap: %q", lines)
	}
}

func TestWrapStyledRunesSplitsLongWord(t *testing.T) {
	st := newStyles("midnight", settings.CaretOff)
	runes := buildStyledRunes(slotsOf("abcdefgh"), -1, st)
	got := wrapStyledRunes(runes, 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesKeepsEveryRune(t *testing.T) {
	st := newStyles("midnight", settings.CaretOff)
	text := "the quick brown fox jumps over the lazy dog"
	runes := buildStyledRunes(slotsOf(text), -1, st)
	for width := 1; width < 50; width++ {
		got := strings.ReplaceAll(wrapStyledRunes(runes, width), "\n", "")
		if got != text {
			t.Fatalf("width %d lost runes: %q", width, got)
		}
	}
}

func TestWordAtCursorOnSpaceUsesNextWord(t *testing.T) {
	slots := slotsOf("ab cd")
	start, end, ok := wordAt(slots, 2)
	if !ok || start != 3 || end != 5 {
		t.Fatalf("expected next word [3,5), got [%d,%d) ok=%v", start, end, ok)
	}
	if _, _, ok := wordAt(slots, -1); ok {
		t.Fatalf("no word without a cursor")
	}
}

func TestVisibleLinesFollowCursor(t *testing.T) {
	st := newStyles("midnight", settings.CaretOff)
	text := "aa bb cc dd ee ff"
	for _, tc := range []struct {
		cursor int
		want   string
	}{
		{0, "aa \nbb \ncc "},
		{7, "bb \ncc \ndd "},
		{16, "dd \nee \nff"},
		{-1, "dd \nee \nff"},
	} {
		runes := buildStyledRunes(slotsOf(text), tc.cursor, st)
		got := renderLines(visibleLines(wrapLines(runes, 3), visibleLineCount))
		if got != tc.want {
			t.Fatalf("cursor %d: got %q, want %q", tc.cursor, got, tc.want)
		}
	}
}

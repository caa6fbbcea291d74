package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typer/internal/settings"
)

type palette struct {
	correct   lipgloss.Color
	incorrect lipgloss.Color
	pending   lipgloss.Color
	current   lipgloss.Color
	caret     lipgloss.Color
	dim       lipgloss.Color
	accent    lipgloss.Color
}

var palettes = map[string]palette{
	"midnight": {
		correct: "#F0F0F0", incorrect: "#FF4D4F", pending: "#8C8C8C",
		current: "#C89A3A", caret: "#C89A3A", dim: "#6E6E6E", accent: "#7AA2F7",
	},
	"serika": {
		correct: "#323437", incorrect: "#CA4754", pending: "#AAAEB3",
		current: "#E2B714", caret: "#E2B714", dim: "#8A8D91", accent: "#E2B714",
	},
	"carbon": {
		correct: "#F5E6C8", incorrect: "#F66E0D", pending: "#616161",
		current: "#F66E0D", caret: "#F66E0D", dim: "#4A4A4A", accent: "#F66E0D",
	},
	"cyberpunk": {
		correct: "#00FFC8", incorrect: "#FF2A6D", pending: "#5B5F97",
		current: "#F9F871", caret: "#FF2A6D", dim: "#3D3F63", accent: "#05D9E8",
	},
}

// styles is the resolved style set for one theme and caret style.
type styles struct {
	correct     lipgloss.Style
	incorrect   lipgloss.Style
	pending     lipgloss.Style
	currentWord lipgloss.Style
	footer      lipgloss.Style
	header      lipgloss.Style
	accent      lipgloss.Style
	caret       func(lipgloss.Style) lipgloss.Style
}

func newStyles(theme string, caret settings.CaretStyle) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[settings.Themes[0]]
	}
	st := styles{
		correct:     lipgloss.NewStyle().Foreground(p.correct),
		incorrect:   lipgloss.NewStyle().Foreground(p.incorrect),
		pending:     lipgloss.NewStyle().Foreground(p.pending),
		currentWord: lipgloss.NewStyle().Foreground(p.current),
		footer:      lipgloss.NewStyle().Foreground(p.dim),
		header:      lipgloss.NewStyle().Foreground(p.dim),
		accent:      lipgloss.NewStyle().Foreground(p.accent).Bold(true),
	}
	switch caret {
	case settings.CaretBlock:
		st.caret = func(s lipgloss.Style) lipgloss.Style { return s.Reverse(true) }
	case settings.CaretUnderline:
		st.caret = func(s lipgloss.Style) lipgloss.Style { return s.Underline(true) }
	case settings.CaretOff:
		st.caret = func(s lipgloss.Style) lipgloss.Style { return s }
	default:
		st.caret = func(s lipgloss.Style) lipgloss.Style { return s.Foreground(p.caret).Bold(true).Underline(true) }
	}
	return st
}

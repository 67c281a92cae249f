// Package board draws the score screen in a terminal with Lip Gloss.
package board

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/preston-bernstein/scorekeeper-service/internal/color"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
)

const (
	// MinWidth is the narrowest board Render will lay out.
	MinWidth = 24
	// DefaultWidth is used when the terminal width is unknown.
	DefaultWidth = 48

	panelHeight = 7
)

var (
	scoreText = lipgloss.Color("#ffffff")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)

	nameStyle = lipgloss.NewStyle().
			Foreground(scoreText).
			Align(lipgloss.Center)

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(scoreText).
			Align(lipgloss.Center)

	footerStyle = lipgloss.NewStyle().
			Faint(true).
			Align(lipgloss.Center)
)

// Render returns the board for state laid out in width columns: a title, the
// home and away panels side by side in their team colors, and a footer with
// the quick-set picks and session revision.
func Render(state match.State, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if width < MinWidth {
		width = MinWidth
	}
	panelWidth := width / 2

	home := panel(state.HomeTeamName, state.HomeScore, state.HomeColor, panelWidth)
	away := panel(state.AwayTeamName, state.AwayScore, state.AwayColor, width-panelWidth)

	footer := fmt.Sprintf("set %d : %d  rev %d", state.HomeQuickSet, state.AwayQuickSet, state.Revision)
	if state.SettingsOpen {
		footer += "  [settings]"
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Width(width).Render("Score"),
		lipgloss.JoinHorizontal(lipgloss.Top, home, away),
		footerStyle.Width(width).Render(footer),
	)
}

func panel(name string, score int, bg color.RGBA, width int) string {
	fill := lipgloss.Color(bg.Hex())
	if bg.A != 0xff {
		// Terminals have no alpha; drop it rather than misread ARGB.
		fill = lipgloss.Color(color.RGBA{R: bg.R, G: bg.G, B: bg.B, A: 0xff}.Hex())
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		nameStyle.Width(width).Render(truncate(name, width-2)),
		"",
		scoreStyle.Width(width).Render(strconv.Itoa(score)),
	)
	return lipgloss.NewStyle().
		Background(fill).
		Width(width).
		Height(panelHeight).
		Padding(1, 0).
		Render(body)
}

func truncate(s string, max int) string {
	if max <= 0 || lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

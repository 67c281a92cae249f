package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/preston-bernstein/scorekeeper-service/internal/color"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
)

var (
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Width(14)
)

func swatch(c color.RGBA) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(opaque(c).Hex())).Render("    ")
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 0xff
	return c
}

func paletteRow(key string, pair palette.Pair) string {
	return fmt.Sprintf("%s %s %s  %s / %s",
		keyStyle.Render(key), swatch(pair.Home), swatch(pair.Away), pair.Home.Hex(), pair.Away.Hex())
}

func renderCatalogue(cat palette.Catalogue) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("palettes " + cat.Revision))
	b.WriteString("\n")
	b.WriteString(paletteRow("(default)", cat.Default))
	b.WriteString("\n")
	for _, e := range cat.Entries {
		b.WriteString(paletteRow(e.Key, e.Pair))
		b.WriteString("\n")
	}
	return b.String()
}

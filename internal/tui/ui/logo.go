package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/huddle/internal/status"
	"github.com/rivo/tview"
)

var logoArt = []string{
	" ╦ ╦╦ ╦╔╦╗",
	" ╠═╣║ ║ ║║",
	" ╩ ╩╚═╝═╩╝",
}

// Logo is the header mark. Its color follows the live feed.
type Logo struct {
	*tview.TextView
	theme *Theme
	color tcell.Color
}

// NewLogo creates the logo in the title color.
func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	l := &Logo{TextView: tv, theme: theme, color: theme.TitleColor}
	l.render()
	return l
}

// SetFeed recolors the logo for the synchronizer state. It reports whether
// the color changed.
func (l *Logo) SetFeed(state status.State, degraded bool) bool {
	c := l.theme.TitleColor
	switch {
	case degraded:
		c = l.theme.DegradedColor
	case state == status.Live:
		c = l.theme.LiveColor
	case state == status.Loading:
		c = l.theme.LoadingColor
	}
	if c == l.color {
		return false
	}
	l.color = c
	l.render()
	return true
}

func (l *Logo) render() {
	tag := "[" + colorName(l.color) + "::b]"
	var b strings.Builder
	for _, line := range logoArt {
		b.WriteString(tag + line + "[-:-:-]\n")
	}
	b.WriteString("[" + colorName(l.theme.FgColor) + "]huddle[-]")
	l.SetText(b.String())
}

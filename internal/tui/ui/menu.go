package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

const (
	menuRows     = 6
	menuColWidth = 20
)

// Menu displays keyboard shortcut hints in columns of menuRows lines.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint panel.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders hints column by column.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	if len(hints) == 0 {
		return
	}

	cols := (len(hints) + menuRows - 1) / menuRows
	rows := min(len(hints), menuRows)
	var b strings.Builder
	for r := range rows {
		for c := range cols {
			i := c*menuRows + r
			if i >= len(hints) {
				break
			}
			b.WriteString(m.cell(hints[i]))
		}
		b.WriteString("\n")
	}
	_, _ = fmt.Fprint(m, b.String())
}

func (m *Menu) cell(h MenuHint) string {
	kc := m.theme.MenuKeyColor
	if h.Numeric {
		kc = m.theme.NumericKeyColor
	}
	key := "<" + h.Key + ">"
	pad := max(1, menuColWidth-len(key)-len(h.Description)-1)
	return fmt.Sprintf("[%s::b]%s[-:-:-] %s%s", colorName(kc), tview.Escape(key), h.Description, strings.Repeat(" ", pad))
}

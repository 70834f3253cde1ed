package views

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/huddle/internal/tui/ui"
	"github.com/rivo/tview"
)

type column struct {
	title     string
	expansion int
	maxWidth  int
	align     int
}

// newTable returns a bordered, row-selectable table with a fixed header row.
func newTable(theme *ui.Theme, title string) *tview.Table {
	t := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	t.SetBorder(true).
		SetBorderColor(theme.BorderColor).
		SetBackgroundColor(theme.BgColor).
		SetTitle(title).
		SetTitleColor(theme.TitleColor)
	t.SetSelectedStyle(tcell.StyleDefault.Foreground(theme.TableCursorFg).Background(theme.TableCursorBg))
	return t
}

func setHeader(t *tview.Table, theme *ui.Theme, cols []column) {
	for i, c := range cols {
		t.SetCell(0, i, tview.NewTableCell(" "+c.title).
			SetSelectable(false).
			SetTextColor(theme.TableHeaderFg).
			SetBackgroundColor(theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(c.expansion).
			SetAlign(c.align))
	}
}

// cell builds a body cell laid out like its column. text must already be
// escaped for tview.
func cell(theme *ui.Theme, c column, text string) *tview.TableCell {
	tc := tview.NewTableCell(" " + text).
		SetTextColor(theme.FgColor).
		SetExpansion(c.expansion).
		SetAlign(c.align)
	if c.maxWidth > 0 {
		tc.SetMaxWidth(c.maxWidth)
	}
	return tc
}

func newInput(theme *ui.Theme, label string) *tview.InputField {
	in := tview.NewInputField().
		SetLabel(label).
		SetFieldWidth(0).
		SetLabelColor(theme.MenuKeyColor).
		SetFieldTextColor(theme.FgColor).
		SetFieldBackgroundColor(theme.BgColor)
	in.SetBorderColor(theme.BorderColor).
		SetBackgroundColor(theme.BgColor)
	return in
}

// plain escapes and sanitizes user text for a tview cell.
func plain(s string) string {
	return tview.Escape(sanitizeForTerminal(s))
}

// highlight is plain with every case-insensitive occurrence of term wrapped in
// color tags.
func highlight(s, term, color string) string {
	s = sanitizeForTerminal(s)
	lower := strings.ToLower(s)
	term = strings.ToLower(strings.TrimSpace(term))
	// Lowercasing must not shift byte offsets.
	if term == "" || len(lower) != len(s) {
		return tview.Escape(s)
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, term)
		if i < 0 {
			b.WriteString(tview.Escape(s))
			return b.String()
		}
		j := i + len(term)
		b.WriteString(tview.Escape(s[:i]))
		b.WriteString("[" + color + "::b]" + tview.Escape(s[i:j]) + "[-:-:-]")
		s, lower = s[j:], lower[j:]
	}
}

package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"github.com/matheus3301/huddle/internal/tui/ui"
	"github.com/rivo/tview"
)

var searchColumns = []column{
	{title: "CONVERSATION", maxWidth: 25},
	{title: "FROM", maxWidth: 20},
	{title: "SNIPPET", expansion: 1},
	{title: "TIME", maxWidth: 12, align: tview.AlignRight},
}

// SearchView runs message searches across the user's conversations.
type SearchView struct {
	*tview.Flex
	theme   *ui.Theme
	input   *tview.InputField
	results *tview.Table
	hits    []*rpcv1.SearchResult
	nameOf  func(conversationID string) string
	onQuery func(query string)
}

// NewSearchView creates a search view. nameOf turns conversation ids into
// display names and may be nil.
func NewSearchView(theme *ui.Theme, nameOf func(conversationID string) string) *SearchView {
	sv := &SearchView{
		theme:   theme,
		input:   newInput(theme, " Search: "),
		results: newTable(theme, " Results "),
		nameOf:  nameOf,
	}
	sv.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			sv.Submit()
		}
	})
	sv.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(sv.input, 1, 0, true).
		AddItem(sv.results, 0, 1, false)
	return sv
}

func (sv *SearchView) Name() string                 { return "Search" }
func (sv *SearchView) FocusTarget() tview.Primitive { return sv.input }

func (sv *SearchView) SetOnQuery(fn func(query string)) {
	sv.onQuery = fn
}

// SetQuery fills the input, for searches started from the command prompt.
func (sv *SearchView) SetQuery(q string) {
	sv.input.SetText(q)
}

// Submit hands the trimmed input to the query callback unless it is blank.
func (sv *SearchView) Submit() {
	q := strings.TrimSpace(sv.input.GetText())
	if q == "" || sv.onQuery == nil {
		return
	}
	sv.onQuery(q)
}

// Update shows the hits for term, with term highlighted in each snippet.
func (sv *SearchView) Update(term string, hits []*rpcv1.SearchResult) {
	sv.hits = hits
	sv.results.Clear()
	setHeader(sv.results, sv.theme, searchColumns)

	mark := ui.ColorTag(sv.theme.TitleColor)
	for i, h := range hits {
		var conv, from, ts string
		if m := h.Message; m != nil {
			conv, from, ts = sv.conversationName(m.ConversationId), m.SenderId, formatTimestamp(m.CreatedAtUnixMs)
		}
		row := i + 1
		sv.results.SetCell(row, 0, cell(sv.theme, searchColumns[0], plain(conv)))
		sv.results.SetCell(row, 1, cell(sv.theme, searchColumns[1], plain(from)))
		sv.results.SetCell(row, 2, cell(sv.theme, searchColumns[2], highlight(h.Snippet, term, mark)))
		sv.results.SetCell(row, 3, cell(sv.theme, searchColumns[3], ts))
	}

	sv.results.SetTitle(fmt.Sprintf(" Results (%d) for %q ", len(hits), tview.Escape(term)))
	if len(hits) > 0 {
		sv.results.Select(1, 0)
	}
}

func (sv *SearchView) conversationName(id string) string {
	if sv.nameOf == nil {
		return id
	}
	return sv.nameOf(id)
}

// SelectedResult returns the conversation and message ids of the highlighted
// hit, or empty strings.
func (sv *SearchView) SelectedResult() (conversationID, messageID string) {
	row, _ := sv.results.GetSelection()
	if row < 1 || row > len(sv.hits) || sv.hits[row-1].Message == nil {
		return "", ""
	}
	m := sv.hits[row-1].Message
	return m.ConversationId, m.Id
}

func (sv *SearchView) Input() *tview.InputField { return sv.input }
func (sv *SearchView) Results() *tview.Table    { return sv.results }

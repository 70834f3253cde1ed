package views

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/ui"
	"github.com/rivo/tview"
)

// SortMode orders the conversation list.
type SortMode int

const (
	SortRecent SortMode = iota
	SortName
)

func (m SortMode) String() string {
	if m == SortName {
		return "name"
	}
	return "recent"
}

// ConversationList is the main conversation table.
type ConversationList struct {
	*tview.Table
	theme   *ui.Theme
	convs   []intsync.Conversation
	visible []intsync.Conversation
	filter  string
	sort    SortMode
}

var conversationColumns = []column{
	{title: "NAME", expansion: 1},
	{title: "LAST MESSAGE", expansion: 2},
	{title: "TIME", align: tview.AlignRight},
	{title: "KIND", align: tview.AlignRight},
	{title: "MEMBERS", align: tview.AlignRight},
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	return &ConversationList{
		Table: newTable(theme, " Conversations "),
		theme: theme,
	}
}

// Name implements ui.Component.
func (cl *ConversationList) Name() string { return "Conversations" }

// FocusTarget implements ui.Component.
func (cl *ConversationList) FocusTarget() tview.Primitive { return cl }

// Update replaces the listed conversations, keeping the selection on the same
// conversation when it is still visible.
func (cl *ConversationList) Update(convs []intsync.Conversation) {
	selected := cl.SelectedConversation()
	cl.convs = convs
	cl.render()
	cl.selectID(selected)
}

// SetFilter sets the active filter text and re-renders.
func (cl *ConversationList) SetFilter(filter string) {
	cl.filter = strings.TrimSpace(filter)
	cl.render()
	cl.Select(1, 0)
}

// ClearFilter clears the active filter.
func (cl *ConversationList) ClearFilter() {
	cl.SetFilter("")
}

// Filter returns the active filter text.
func (cl *ConversationList) Filter() string { return cl.filter }

// CycleSort switches to the next sort mode.
func (cl *ConversationList) CycleSort() SortMode {
	cl.sort = (cl.sort + 1) % 2
	selected := cl.SelectedConversation()
	cl.render()
	cl.selectID(selected)
	return cl.sort
}

func (cl *ConversationList) render() {
	cl.Clear()
	setHeader(cl.Table, cl.theme, conversationColumns)

	cl.visible = cl.visible[:0]
	for _, c := range cl.convs {
		if cl.matches(c) {
			cl.visible = append(cl.visible, c)
		}
	}
	sortConversations(cl.visible, cl.sort)

	for i, c := range cl.visible {
		fields := []string{
			plain(displayName(c)),
			plain(c.LastMessagePreview),
			formatTimestamp(c.LastMessageAt),
			strings.ToUpper(c.Kind),
			strconv.Itoa(c.MemberCount),
		}
		for col, text := range fields {
			cl.SetCell(i+1, col, cell(cl.theme, conversationColumns[col], text))
		}
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d/%d) filter: %s ", len(cl.visible), len(cl.convs), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d) by %s ", len(cl.convs), cl.sort))
	}
}

func (cl *ConversationList) matches(c intsync.Conversation) bool {
	if cl.filter == "" {
		return true
	}
	f := strings.ToLower(cl.filter)
	return strings.Contains(strings.ToLower(displayName(c)), f) ||
		strings.Contains(strings.ToLower(c.LastMessagePreview), f)
}

func (cl *ConversationList) selectID(id string) {
	for i, c := range cl.visible {
		if c.ID == id {
			cl.Select(i+1, 0)
			return
		}
	}
}

// SelectedConversation returns the id of the highlighted conversation.
func (cl *ConversationList) SelectedConversation() string {
	row, _ := cl.GetSelection()
	return cl.ConversationByIndex(row)
}

// ConversationByIndex returns the id of the Nth visible conversation (1-based).
func (cl *ConversationList) ConversationByIndex(n int) string {
	if n < 1 || n > len(cl.visible) {
		return ""
	}
	return cl.visible[n-1].ID
}

// Lookup finds a listed conversation by id.
func (cl *ConversationList) Lookup(id string) (intsync.Conversation, bool) {
	for _, c := range cl.convs {
		if c.ID == id {
			return c, true
		}
	}
	return intsync.Conversation{}, false
}

// FindByName returns the first conversation whose name contains name,
// preferring an exact case-insensitive match.
func (cl *ConversationList) FindByName(name string) (intsync.Conversation, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return intsync.Conversation{}, false
	}
	for _, c := range cl.convs {
		if strings.ToLower(displayName(c)) == name || c.ID == name {
			return c, true
		}
	}
	for _, c := range cl.convs {
		if strings.Contains(strings.ToLower(displayName(c)), name) {
			return c, true
		}
	}
	return intsync.Conversation{}, false
}

func sortConversations(convs []intsync.Conversation, mode SortMode) {
	slices.SortStableFunc(convs, func(a, b intsync.Conversation) int {
		if mode == SortName {
			return cmp.Compare(strings.ToLower(displayName(a)), strings.ToLower(displayName(b)))
		}
		return cmp.Compare(b.LastMessageAt, a.LastMessageAt)
	})
}

func displayName(c intsync.Conversation) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

package views

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/ui"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeForTerminal(t *testing.T) {
	assert.Equal(t, "👍", sanitizeForTerminal("👍\U0001F3FB"))
	assert.Equal(t, "❤", sanitizeForTerminal("❤️"))
	assert.Equal(t, "👨👩", sanitizeForTerminal("👨‍👩"))
	assert.Equal(t, "plain text", sanitizeForTerminal("plain text"))
	assert.Equal(t, "line one\nline two\tx", sanitizeForTerminal("line one\nline two\tx\x1b"))
}

func sampleConversations() []intsync.Conversation {
	now := time.Now().UnixMilli()
	return []intsync.Conversation{
		{ID: "c1", Kind: "channel", Name: "general", MemberCount: 5, LastMessageAt: now - 3000, LastMessagePreview: "standup at ten"},
		{ID: "c2", Kind: "direct", Name: "Bob Stone", MemberCount: 2, LastMessageAt: now - 1000, LastMessagePreview: "lunch?"},
		{ID: "c3", Kind: "channel", Name: "announcements", MemberCount: 40, LastMessageAt: now - 2000},
	}
}

func TestConversationListSortAndIndex(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update(sampleConversations())

	// Most recent first by default.
	assert.Equal(t, "c2", cl.ConversationByIndex(1))
	assert.Equal(t, "c3", cl.ConversationByIndex(2))
	assert.Equal(t, "c1", cl.ConversationByIndex(3))
	assert.Empty(t, cl.ConversationByIndex(4))
	assert.Empty(t, cl.ConversationByIndex(0))

	assert.Equal(t, SortName, cl.CycleSort())
	assert.Equal(t, "c3", cl.ConversationByIndex(1))
	assert.Equal(t, "c2", cl.ConversationByIndex(2))
	assert.Equal(t, SortRecent, cl.CycleSort())
}

func TestConversationListFilter(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update(sampleConversations())

	cl.SetFilter("STANDUP")
	assert.Equal(t, "c1", cl.ConversationByIndex(1))
	assert.Empty(t, cl.ConversationByIndex(2))
	assert.Equal(t, "c1", cl.SelectedConversation())
	assert.Contains(t, cl.GetTitle(), "(1/3)")

	cl.ClearFilter()
	assert.Empty(t, cl.Filter())
	assert.Equal(t, "c3", cl.ConversationByIndex(2))
}

func TestConversationListKeepsSelectionAcrossUpdates(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	convs := sampleConversations()
	cl.Update(convs)
	cl.Select(3, 0)
	require.Equal(t, "c1", cl.SelectedConversation())

	// c1 becomes the most recent; the cursor follows it to the top.
	convs[0].LastMessageAt = time.Now().UnixMilli()
	cl.Update(convs)
	assert.Equal(t, "c1", cl.SelectedConversation())
	row, _ := cl.GetSelection()
	assert.Equal(t, 1, row)
}

func TestConversationListFindByName(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update(sampleConversations())

	c, ok := cl.FindByName("GENERAL")
	require.True(t, ok)
	assert.Equal(t, "c1", c.ID)

	c, ok = cl.FindByName("bob")
	require.True(t, ok)
	assert.Equal(t, "c2", c.ID)

	c, ok = cl.FindByName("c3")
	require.True(t, ok)
	assert.Equal(t, "announcements", c.Name)

	_, ok = cl.FindByName("random")
	assert.False(t, ok)
	_, ok = cl.FindByName("  ")
	assert.False(t, ok)
}

func TestMessageThreadRender(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme(), "ann")
	mt.SetConversation("c1", "general")
	assert.Equal(t, "general", mt.Name())
	assert.Equal(t, "c1", mt.ConversationID())

	mt.Update([]intsync.Message{
		{ID: "m1", SenderID: "bob", Content: "hi [red]there", CreatedAt: 1, Sender: intsync.Sender{Name: "Bob Stone", Resolved: true}},
		{ID: "m2", SenderID: "ann", Content: "hello", CreatedAt: 2, Sender: intsync.Sender{Name: "Ann Lee", Resolved: true}},
		{ID: "m3", SenderID: "ghost", Content: "boo", CreatedAt: 3, Sender: intsync.Sender{Name: intsync.UnknownSender}},
	})
	text := mt.Messages().GetText(true)
	assert.Contains(t, text, "Bob Stone")
	assert.Contains(t, text, "there", "content is escaped, not interpreted")
	assert.Contains(t, text, "You")
	assert.NotContains(t, text, "Ann Lee")
	assert.Contains(t, text, "Unknown")
	assert.Less(t, strings.Index(text, "Bob Stone"), strings.Index(text, "Unknown"))

	mt.SetConversation("", "")
	assert.Equal(t, "Messages", mt.Name())
	assert.Empty(t, mt.Messages().GetText(true))
}

func TestMessageThreadComposerKeepsTextUntilConfirmed(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme(), "ann")
	var sent []string
	mt.SetOnSend(func(text string) { sent = append(sent, text) })

	enter := func() {
		mt.Composer().InputHandler()(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(p tview.Primitive) {})
	}

	mt.Composer().SetText("   ")
	enter()
	assert.Empty(t, sent, "blank text is not submitted")

	mt.Composer().SetText("hello")
	enter()
	require.Equal(t, []string{"hello"}, sent)
	assert.Equal(t, "hello", mt.Composer().GetText(), "text stays until the send is confirmed")

	// A failed send leaves the text for a retry.
	enter()
	assert.Len(t, sent, 2)

	mt.Composer().SetText("hello again")
	mt.ConfirmSent("hello")
	assert.Equal(t, "hello again", mt.Composer().GetText(), "newer input is not cleared")

	mt.ConfirmSent("hello again")
	assert.Empty(t, mt.Composer().GetText())
}

func TestSearchViewResults(t *testing.T) {
	sv := NewSearchView(ui.DefaultTheme(), func(id string) string { return "name-" + id })
	var queries []string
	sv.SetOnQuery(func(q string) { queries = append(queries, q) })

	sv.SetQuery("  ")
	sv.Submit()
	assert.Empty(t, queries)
	sv.SetQuery(" lunch ")
	sv.Submit()
	assert.Equal(t, []string{"lunch"}, queries)

	sv.Update("lunch", []*rpcv1.SearchResult{
		{Message: &rpcv1.Message{Id: "m1", ConversationId: "c2", CreatedAtUnixMs: 1}, Snippet: "[lunch]?"},
		{Snippet: "orphan"},
	})
	conv, msg := sv.SelectedResult()
	assert.Equal(t, "c2", conv)
	assert.Equal(t, "m1", msg)
	assert.Equal(t, "name-c2", sv.Results().GetCell(1, 0).Text[1:])

	sv.Results().Select(2, 0)
	conv, msg = sv.SelectedResult()
	assert.Empty(t, conv)
	assert.Empty(t, msg)
}

func TestConversationInfo(t *testing.T) {
	ci := NewConversationInfo(ui.DefaultTheme())
	ci.Update(&ConversationDetails{
		Conversation: intsync.Conversation{ID: "c1", Kind: "channel", Name: "general", Description: "company-wide"},
		Members: []*rpcv1.Member{
			{UserId: "ann", Role: "admin", Name: "Ann Lee", Email: "ann@example.com"},
			{UserId: "bob", Role: "member"},
		},
		State:    "LIVE",
		Degraded: true,
		Loaded:   12,
	})
	text := ci.GetText(true)
	assert.Contains(t, text, "Channel")
	assert.Contains(t, text, "company-wide")
	assert.Contains(t, text, "Members (2)")
	assert.Contains(t, text, "Ann Lee")
	assert.Contains(t, text, "bob")
	assert.Contains(t, text, "12 messages")
	assert.Contains(t, text, "degraded")
	assert.Contains(t, ci.GetTitle(), "general")
}

func TestHelpViewListsCommands(t *testing.T) {
	text := NewHelpView(ui.DefaultTheme()).GetText(true)
	assert.Contains(t, text, ":resync")
	assert.Contains(t, text, "Resync the live feed")
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "see [gold::b]Lunch[-:-:-] at [gold::b]lunch[-:-:-]", highlight("see Lunch at lunch", "lunch", "gold"))
	assert.Equal(t, "no match", highlight("no match", "lunch", "gold"))
	assert.Equal(t, "plain", highlight("plain", " ", "gold"))
	assert.Equal(t, "[x[]", highlight("[x]", "", "gold"))
}

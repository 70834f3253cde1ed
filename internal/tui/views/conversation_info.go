package views

import (
	"fmt"
	"strings"

	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationDetails is what the details page shows.
type ConversationDetails struct {
	Conversation intsync.Conversation
	Members      []*rpcv1.Member
	State        string
	Degraded     bool
	Loaded       int
}

// ConversationInfo displays detailed information about a conversation.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements ui.Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// FocusTarget implements ui.Component.
func (ci *ConversationInfo) FocusTarget() tview.Primitive { return ci }

// Update renders conversation details.
func (ci *ConversationInfo) Update(d *ConversationDetails) {
	ci.Clear()
	if d == nil {
		return
	}
	c := d.Conversation

	fg := ui.ColorTag(ci.theme.FgColor)
	ct := ui.ColorTag(ci.theme.CounterColor)

	kind := "Direct"
	if c.Kind == "channel" {
		kind = "Channel"
	}
	lastActive := formatTimestamp(c.LastMessageAt)
	if lastActive == "" {
		lastActive = "-"
	}
	feed := d.State
	if d.Degraded {
		feed += " (degraded, press r in the thread to resync)"
	}

	row := func(label, value string) string {
		return fmt.Sprintf(" [%s::b]%-13s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, tview.Escape(sanitizeForTerminal(value)))
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(row("Name", displayName(c)))
	b.WriteString(row("ID", c.ID))
	b.WriteString(row("Type", kind))
	if c.Description != "" {
		b.WriteString(row("Description", c.Description))
	}
	b.WriteString(row("Last Active", lastActive))
	b.WriteString(row("Feed", feed))
	b.WriteString(row("Loaded", fmt.Sprintf("%d messages", d.Loaded)))
	fmt.Fprintf(&b, "\n [%s::b]Members (%d)[-:-:-]\n", fg, len(d.Members))
	for _, m := range d.Members {
		name := m.Name
		if name == "" {
			name = m.UserId
		}
		fmt.Fprintf(&b, "  [%s]%-24s[-] %-6s %s\n", ct,
			tview.Escape(sanitizeForTerminal(name)), m.Role, tview.Escape(m.Email))
	}

	_, _ = fmt.Fprint(ci, b.String())
	ci.SetTitle(fmt.Sprintf(" %s Details ", tview.Escape(sanitizeForTerminal(displayName(c)))))
}

package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays messages and a composer for a single conversation.
type MessageThread struct {
	*tview.Flex
	theme          *ui.Theme
	messages       *tview.TextView
	composer       *tview.InputField
	conversation   string
	conversationID string
	self           string
	count          int
	onSend         func(text string)
}

// NewMessageThread creates a new message thread view. Messages sent by self
// are labelled "You".
func NewMessageThread(theme *ui.Theme, self string) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true).
		SetTextColor(theme.FgColor)
	messages.SetBorder(true).
		SetBorderColor(theme.BorderColor).
		SetBackgroundColor(theme.BgColor).
		SetTitle(" Messages ").
		SetTitleColor(theme.TitleColor)

	composer := newInput(theme, " > ")
	composer.SetBorder(true).
		SetTitle(" Compose (i to focus) ").
		SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
		self:     self,
	}

	// The text stays in the composer until the send is confirmed.
	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || mt.onSend == nil {
			return
		}
		if text := composer.GetText(); strings.TrimSpace(text) != "" {
			mt.onSend(text)
		}
	})

	return mt
}

// Name implements ui.Component.
func (mt *MessageThread) Name() string {
	if mt.conversation != "" {
		return mt.conversation
	}
	return "Messages"
}

// FocusTarget implements ui.Component.
func (mt *MessageThread) FocusTarget() tview.Primitive { return mt.messages }

// SetConversation binds the view to a conversation and clears it.
func (mt *MessageThread) SetConversation(id, name string) {
	if name == "" {
		name = id
	}
	mt.conversationID = id
	mt.conversation = name
	mt.count = 0
	mt.messages.Clear()
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(name))))
}

// ConversationID returns the bound conversation id.
func (mt *MessageThread) ConversationID() string {
	return mt.conversationID
}

// SetOnSend sets the callback when Enter is pressed with non-blank text.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// ConfirmSent clears the composer if it still holds text.
// Anything typed after submission is left alone.
func (mt *MessageThread) ConfirmSent(text string) {
	if mt.composer.GetText() == text {
		mt.composer.SetText("")
	}
}

// Update renders the view, oldest first. New messages scroll to the end;
// otherwise the scroll position is kept.
func (mt *MessageThread) Update(msgs []intsync.Message) {
	row, _ := mt.messages.GetScrollOffset()
	grew := len(msgs) > mt.count
	mt.count = len(msgs)

	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(mt.formatMessage(m))
	}
	mt.messages.SetText(b.String())

	if grew {
		mt.messages.ScrollToEnd()
	} else {
		mt.messages.ScrollTo(row, 0)
	}
}

func (mt *MessageThread) formatMessage(m intsync.Message) string {
	sender, color, attr := m.Sender.Name, mt.theme.SenderColor, "b"
	switch {
	case mt.self != "" && m.SenderID == mt.self:
		sender, color = "You", mt.theme.SelfSenderColor
	case !m.Sender.Resolved:
		color, attr = mt.theme.UnresolvedColor, "bd"
	}
	return fmt.Sprintf("[%s::%s]%s[-:-:-] [%s]%s[-]\n%s\n\n",
		ui.ColorTag(color), attr,
		tview.Escape(sanitizeForTerminal(sender)),
		ui.ColorTag(mt.theme.TimestampColor),
		formatTimestamp(m.CreatedAt),
		tview.Escape(sanitizeForTerminal(m.Content)))
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}

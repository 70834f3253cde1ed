package platform

import (
	"github.com/matheus3301/huddle/internal/store"
	intsync "github.com/matheus3301/huddle/internal/sync"
)

func toSyncMessage(m store.Message) intsync.Message {
	return intsync.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderEmail:    m.SenderEmail,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func toSyncMessages(msgs []store.Message) []intsync.Message {
	out := make([]intsync.Message, len(msgs))
	for i, m := range msgs {
		out[i] = toSyncMessage(m)
	}
	return out
}

func toSyncConversation(c store.Conversation) intsync.Conversation {
	return intsync.Conversation{
		ID:                 c.ID,
		Kind:               string(c.Kind),
		Name:               c.Name,
		Description:        c.Description,
		MemberCount:        c.MemberCount,
		LastMessageAt:      c.LastMessageAt,
		LastMessagePreview: c.LastMessagePreview,
	}
}

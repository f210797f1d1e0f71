package message

import (
	"time"

	messageDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/message"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), true
	default:
		return "", false
	}
}

// Message is immutable once stored; edits and deletes do not exist in this
// core. A revocation after the fact does not touch rows already written.
type Message struct {
	ID             string    `json:"id"`
	ChannelID      string    `json:"channel_id"`
	SenderTenantID string    `json:"sender_tenant_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	Priority       Priority  `json:"priority"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToDataModel(m *Message) *messageDatamodel.Message {
	return &messageDatamodel.Message{
		ID:             m.ID,
		ChannelID:      m.ChannelID,
		SenderTenantID: m.SenderTenantID,
		SenderName:     m.SenderName,
		Content:        m.Content,
		Priority:       string(m.Priority),
		CreatedAt:      m.CreatedAt,
	}
}

func FromDataModel(row *messageDatamodel.Message) *Message {
	return &Message{
		ID:             row.ID,
		ChannelID:      row.ChannelID,
		SenderTenantID: row.SenderTenantID,
		SenderName:     row.SenderName,
		Content:        row.Content,
		Priority:       Priority(row.Priority),
		CreatedAt:      row.CreatedAt,
	}
}

func FromDataModelSlice(rows []*messageDatamodel.Message) []*Message {
	result := make([]*Message, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}

package message

import "time"

// Message rows are immutable once written. IDs are ULIDs, so primary key
// order matches creation order.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	ChannelID      string    `json:"channel_id" gorm:"column:channel_id;type:uuid;not null;index"`
	SenderTenantID string    `json:"sender_tenant_id" gorm:"column:sender_tenant_id;type:uuid;not null;index"`
	SenderName     string    `json:"sender_name" gorm:"column:sender_name;not null"`
	Content        string    `json:"content" gorm:"not null"`
	Priority       string    `json:"priority" gorm:"not null;default:normal"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// ChannelParticipant records which tenants have posted into a channel. Rows
// are upserted on successful posts and removed when the channel is deleted.
type ChannelParticipant struct {
	ChannelID    string    `json:"channel_id" gorm:"column:channel_id;type:uuid;primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"column:tenant_id;type:uuid;primaryKey"`
	DisplayName  string    `json:"display_name" gorm:"column:display_name"`
	LastPostedAt time.Time `json:"last_posted_at" gorm:"column:last_posted_at"`
}

func (ChannelParticipant) TableName() string {
	return "channel_participants"
}

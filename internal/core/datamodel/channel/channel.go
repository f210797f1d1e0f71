package channel

import "time"

// Channel is the persistence row for a communication scope owned by one
// pharmacy tenant.
type Channel struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerTenantID string    `json:"owner_tenant_id" gorm:"column:owner_tenant_id;type:uuid;not null;index"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description"`
	ChannelType   string    `json:"channel_type" gorm:"column:channel_type;not null"`
	Visibility    string    `json:"visibility" gorm:"not null;default:private"`
	IsSystem      bool      `json:"is_system" gorm:"column:is_system;not null;default:false"`
	Status        string    `json:"status" gorm:"not null;default:active"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Channel) TableName() string {
	return "channels"
}

package tenant

import "time"

// Tenant rows are provisioned outside this application; the chat core only
// ever reads them.
type Tenant struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"not null"`
	Status    string    `json:"status" gorm:"not null;default:active"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

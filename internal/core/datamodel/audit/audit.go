package audit

import "time"

// AuditEntry is the append-only compliance row. Nothing in the codebase
// updates or deletes these.
type AuditEntry struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	TenantID    *string   `json:"tenant_id" gorm:"column:tenant_id;type:uuid;index"`
	UserID      *string   `json:"user_id" gorm:"column:user_id"`
	Action      string    `json:"action" gorm:"not null;index"`
	TargetType  string    `json:"target_type" gorm:"column:target_type;not null"`
	TargetID    string    `json:"target_id" gorm:"column:target_id;not null"`
	DetailsJSON string    `json:"-" gorm:"column:details;type:jsonb"`
	Severity    string    `json:"severity" gorm:"not null;index"`
	IPAddress   string    `json:"ip_address" gorm:"column:ip_address"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}

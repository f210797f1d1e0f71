package grant

import "time"

// PermissionGrant is a directed authorization row. Revocation flips
// IsGranted to false instead of deleting, so permission history survives.
type PermissionGrant struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	GranterTenantID string    `json:"granter_tenant_id" gorm:"column:granter_tenant_id;type:uuid;not null;uniqueIndex:idx_grant_key"`
	GranteeTenantID string    `json:"grantee_tenant_id" gorm:"column:grantee_tenant_id;type:uuid;not null;uniqueIndex:idx_grant_key"`
	PermissionType  string    `json:"permission_type" gorm:"column:permission_type;not null;uniqueIndex:idx_grant_key"`
	IsGranted       bool      `json:"is_granted" gorm:"column:is_granted;not null;default:true"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (PermissionGrant) TableName() string {
	return "permission_grants"
}

package postgres

import (
	"time"

	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	grantDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/grant"
	"github.com/radityasurya/pharmacy-network/internal/permission"
	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) permission.RepositoryAPI {
	return &GrantRepository{db: db}
}

func (r *GrantRepository) Upsert(g *grantDatamodel.PermissionGrant, entry *auditDatamodel.AuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(g).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// Tombstone relies on the store's row-level concurrency for simultaneous
// revocations; last write wins, which is fine for an idempotent flag.
func (r *GrantRepository) Tombstone(granter, grantee, permissionType string, entry *auditDatamodel.AuditEntry) (bool, error) {
	found := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&grantDatamodel.PermissionGrant{}).
			Where("granter_tenant_id = ? AND grantee_tenant_id = ? AND permission_type = ?",
				granter, grantee, permissionType).
			Updates(map[string]interface{}{
				"is_granted": false,
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		found = true
		return tx.Create(entry).Error
	})
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return found, err
}

func (r *GrantRepository) Get(granter, grantee, permissionType string) (*grantDatamodel.PermissionGrant, error) {
	var g grantDatamodel.PermissionGrant
	err := r.db.Where("granter_tenant_id = ? AND grantee_tenant_id = ? AND permission_type = ?",
		granter, grantee, permissionType).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GrantRepository) AnyGranted(granter, grantee string, permissionTypes []string) (bool, error) {
	var count int64
	err := r.db.Model(&grantDatamodel.PermissionGrant{}).
		Where("granter_tenant_id = ? AND grantee_tenant_id = ? AND permission_type IN ? AND is_granted = ?",
			granter, grantee, permissionTypes, true).
		Count(&count).Error
	return count > 0, err
}

func (r *GrantRepository) ListByGranter(granter string) ([]*grantDatamodel.PermissionGrant, error) {
	var rows []*grantDatamodel.PermissionGrant
	err := r.db.Where("granter_tenant_id = ?", granter).
		Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

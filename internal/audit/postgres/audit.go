package postgres

import (
	"github.com/radityasurya/pharmacy-network/internal/audit"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(entry *auditDatamodel.AuditEntry) error {
	return r.db.Create(entry).Error
}

func (r *AuditRepository) Query(f audit.Filter) ([]*auditDatamodel.AuditEntry, error) {
	var rows []*auditDatamodel.AuditEntry

	q := r.db.Model(&auditDatamodel.AuditEntry{})
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.TenantID != "" {
		q = q.Where("tenant_id = ?", f.TenantID)
	}
	if f.Search != "" {
		// details is jsonb; LIKE only exists for text.
		pattern := "%" + f.Search + "%"
		q = q.Where("target_id LIKE ? OR details::text LIKE ?", pattern, pattern)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	// ULID primary keys sort by creation time, so id DESC is newest-first.
	err := q.Order("id DESC").Find(&rows).Error
	return rows, err
}

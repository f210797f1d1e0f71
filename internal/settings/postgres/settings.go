package postgres

import (
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	settingsDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/settings"
	"github.com/radityasurya/pharmacy-network/internal/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.RepositoryAPI {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Upsert(s *settingsDatamodel.NetworkSetting, entry *auditDatamodel.AuditEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_by", "updated_at"}),
		}).Create(s).Error
		if err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *SettingsRepository) All() ([]*settingsDatamodel.NetworkSetting, error) {
	var rows []*settingsDatamodel.NetworkSetting
	err := r.db.Find(&rows).Error
	return rows, err
}

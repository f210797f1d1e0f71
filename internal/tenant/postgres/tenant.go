package postgres

import (
	"errors"

	tenantDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/tenant"
	"github.com/radityasurya/pharmacy-network/internal/tenant"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) tenant.RepositoryAPI {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) GetByID(id string) (*tenantDatamodel.Tenant, error) {
	var row tenantDatamodel.Tenant
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *TenantRepository) List() ([]*tenantDatamodel.Tenant, error) {
	var rows []*tenantDatamodel.Tenant
	err := r.db.Order("name ASC").Find(&rows).Error
	return rows, err
}

package tenant

import (
	"time"

	tenantDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/tenant"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

// Tenant is a pharmacy on the network. Provisioning happens in an external
// system; this core treats the directory as read-only.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the tenant may act on the network. Maintenance
// and inactive tenants keep their channels and grants but cannot post.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

func FromDataModel(row *tenantDatamodel.Tenant) *Tenant {
	return &Tenant{
		ID:        row.ID,
		Name:      row.Name,
		Status:    Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*tenantDatamodel.Tenant) []*Tenant {
	tenants := make([]*Tenant, 0, len(rows))
	for _, row := range rows {
		tenants = append(tenants, FromDataModel(row))
	}
	return tenants
}

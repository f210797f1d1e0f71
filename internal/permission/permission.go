package permission

import (
	"time"

	grantDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/grant"
)

// Capability names what a tenant wants to do with a channel. Grants use an
// open string set (the UI today issues "chat"), so a capability maps onto
// one or more grant types that satisfy it.
type Capability string

const (
	CapabilityRead  Capability = "read"
	CapabilityWrite Capability = "write"
)

// Well-known grant types. The set is open: unknown types are stored and
// matched verbatim.
const (
	GrantTypeChat         = "chat"
	GrantTypeReadChannel  = "read_channel"
	GrantTypeWriteChannel = "write_channel"
)

// grantTypesFor lists the grant types that satisfy a capability. A blanket
// "chat" grant covers both directions of channel access.
func grantTypesFor(cap Capability) []string {
	switch cap {
	case CapabilityRead:
		return []string{GrantTypeReadChannel, GrantTypeChat}
	case CapabilityWrite:
		return []string{GrantTypeWriteChannel, GrantTypeChat}
	default:
		return []string{string(cap)}
	}
}

// Grant is a directed authorization from granter to grantee. Direction
// matters: A granting B implies nothing about B granting A.
type Grant struct {
	ID              string    `json:"id"`
	GranterTenantID string    `json:"granter_tenant_id"`
	GranteeTenantID string    `json:"grantee_tenant_id"`
	PermissionType  string    `json:"permission_type"`
	IsGranted       bool      `json:"is_granted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToDataModel(g *Grant) *grantDatamodel.PermissionGrant {
	return &grantDatamodel.PermissionGrant{
		ID:              g.ID,
		GranterTenantID: g.GranterTenantID,
		GranteeTenantID: g.GranteeTenantID,
		PermissionType:  g.PermissionType,
		IsGranted:       g.IsGranted,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func FromDataModel(row *grantDatamodel.PermissionGrant) *Grant {
	return &Grant{
		ID:              row.ID,
		GranterTenantID: row.GranterTenantID,
		GranteeTenantID: row.GranteeTenantID,
		PermissionType:  row.PermissionType,
		IsGranted:       row.IsGranted,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*grantDatamodel.PermissionGrant) []*Grant {
	result := make([]*Grant, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}

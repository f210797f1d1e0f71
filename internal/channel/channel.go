package channel

import (
	"time"

	"github.com/radityasurya/pharmacy-network/internal"
	channelDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/channel"
)

// ChannelType is a closed set: adding a type means touching every switch
// over it, which is the point.
type ChannelType string

const (
	TypeTeam          ChannelType = "team"
	TypeFunction      ChannelType = "function"
	TypeSupplier      ChannelType = "supplier"
	TypeCollaboration ChannelType = "collaboration"
	TypeAlert         ChannelType = "alert"
	TypeSystem        ChannelType = "system"
)

func ParseChannelType(s string) (ChannelType, bool) {
	switch ChannelType(s) {
	case TypeTeam, TypeFunction, TypeSupplier, TypeCollaboration, TypeAlert, TypeSystem:
		return ChannelType(s), true
	default:
		return "", false
	}
}

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), true
	default:
		return "", false
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusPaused   Status = "paused"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusArchived, StatusPaused:
		return Status(s), true
	default:
		return "", false
	}
}

type Channel struct {
	ID            string      `json:"id"`
	OwnerTenantID string      `json:"owner_tenant_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Type          ChannelType `json:"channel_type"`
	Visibility    Visibility  `json:"visibility"`
	IsSystem      bool        `json:"is_system"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsProtected reports whether ordinary edit/delete must be refused. The
// is_system flag is immutable after creation.
func (c *Channel) IsProtected() bool {
	return c.IsSystem
}

func (c *Channel) AcceptsMessages() bool {
	return c.Status == StatusActive
}

// CanBeManagedBy reports whether actor may mutate this channel: the owning
// tenant's admins, or a network super-admin. System channels require the
// super-admin.
func (c *Channel) CanBeManagedBy(actor internal.Actor) bool {
	if c.IsSystem {
		return actor.NetworkAdmin
	}
	return actor.NetworkAdmin || actor.TenantID == c.OwnerTenantID
}

func ToDataModel(c *Channel) *channelDatamodel.Channel {
	return &channelDatamodel.Channel{
		ID:            c.ID,
		OwnerTenantID: c.OwnerTenantID,
		Name:          c.Name,
		Description:   c.Description,
		ChannelType:   string(c.Type),
		Visibility:    string(c.Visibility),
		IsSystem:      c.IsSystem,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func FromDataModel(row *channelDatamodel.Channel) *Channel {
	return &Channel{
		ID:            row.ID,
		OwnerTenantID: row.OwnerTenantID,
		Name:          row.Name,
		Description:   row.Description,
		Type:          ChannelType(row.ChannelType),
		Visibility:    Visibility(row.Visibility),
		IsSystem:      row.IsSystem,
		Status:        Status(row.Status),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*channelDatamodel.Channel) []*Channel {
	result := make([]*Channel, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}

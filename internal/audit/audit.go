package audit

import (
	"encoding/json"
	"time"

	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	"github.com/radityasurya/pharmacy-network/pkg/ids"
)

type Action string

const (
	ActionChannelCreate    Action = "channel_create"
	ActionChannelUpdate    Action = "channel_update"
	ActionChannelDelete    Action = "channel_delete"
	ActionPermissionGrant  Action = "permission_grant"
	ActionPermissionRevoke Action = "permission_revoke"
	ActionPermissionDenied Action = "permission_denied"
	ActionConfigChange     Action = "config_change"
	ActionSecurityAlert    Action = "security_alert"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Entry is the domain view of one audit row. Entries are built by the
// service that performs the mutation and persisted in the same transaction
// as the mutation they describe.
type Entry struct {
	ID         string         `json:"id"`
	TenantID   *string        `json:"tenant_id"`
	UserID     *string        `json:"user_id"`
	Action     Action         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Details    map[string]any `json:"details,omitempty"`
	Severity   Severity       `json:"severity"`
	IPAddress  string         `json:"ip_address,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// SeverityFor encodes the escalation policy: destructive or
// security-relevant actions log above info, security incidents are set
// explicitly by the escalator.
func SeverityFor(action Action) Severity {
	switch action {
	case ActionChannelDelete, ActionPermissionRevoke:
		return SeverityWarning
	case ActionPermissionDenied, ActionSecurityAlert:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// NewEntry builds an entry for an action performed by a tenant actor.
// Severity follows SeverityFor; callers that need a different level set it
// afterwards.
func NewEntry(tenantID, userID, ip string, action Action, targetType, targetID string, details map[string]any) *Entry {
	e := &Entry{
		ID:         ids.New(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		Severity:   SeverityFor(action),
		IPAddress:  ip,
		CreatedAt:  time.Now().UTC(),
	}
	if tenantID != "" {
		e.TenantID = &tenantID
	}
	if userID != "" {
		e.UserID = &userID
	}
	return e
}

// NewSystemEntry builds an entry with no acting tenant, used when the
// platform itself is the actor.
func NewSystemEntry(action Action, targetType, targetID string, details map[string]any) *Entry {
	return &Entry{
		ID:         ids.New(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		Severity:   SeverityFor(action),
		CreatedAt:  time.Now().UTC(),
	}
}

func ToDataModel(e *Entry) *auditDatamodel.AuditEntry {
	detailsJSON := "{}"
	if len(e.Details) > 0 {
		if raw, err := json.Marshal(e.Details); err == nil {
			detailsJSON = string(raw)
		}
	}
	return &auditDatamodel.AuditEntry{
		ID:          e.ID,
		TenantID:    e.TenantID,
		UserID:      e.UserID,
		Action:      string(e.Action),
		TargetType:  e.TargetType,
		TargetID:    e.TargetID,
		DetailsJSON: detailsJSON,
		Severity:    string(e.Severity),
		IPAddress:   e.IPAddress,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModel(row *auditDatamodel.AuditEntry) *Entry {
	details := map[string]any{}
	if row.DetailsJSON != "" {
		_ = json.Unmarshal([]byte(row.DetailsJSON), &details)
	}
	return &Entry{
		ID:         row.ID,
		TenantID:   row.TenantID,
		UserID:     row.UserID,
		Action:     Action(row.Action),
		TargetType: row.TargetType,
		TargetID:   row.TargetID,
		Details:    details,
		Severity:   Severity(row.Severity),
		IPAddress:  row.IPAddress,
		CreatedAt:  row.CreatedAt,
	}
}

func FromDataModelSlice(rows []*auditDatamodel.AuditEntry) []*Entry {
	result := make([]*Entry, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}

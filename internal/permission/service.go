package permission

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/audit"
	"github.com/radityasurya/pharmacy-network/internal/channel"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	grantDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/grant"
)

type RepositoryAPI interface {
	// Upsert creates the grant row or re-activates an existing one, together
	// with its audit entry in one transaction.
	Upsert(g *grantDatamodel.PermissionGrant, entry *auditDatamodel.AuditEntry) error
	// Tombstone flips is_granted to false without deleting the row; returns
	// false when no grant row exists for the key.
	Tombstone(granter, grantee, permissionType string, entry *auditDatamodel.AuditEntry) (bool, error)
	Get(granter, grantee, permissionType string) (*grantDatamodel.PermissionGrant, error)
	AnyGranted(granter, grantee string, permissionTypes []string) (bool, error)
	ListByGranter(granter string) ([]*grantDatamodel.PermissionGrant, error)
}

// TenantDirectory answers whether the acting pharmacy is operational.
type TenantDirectory interface {
	IsActive(tenantID string) (bool, error)
}

// Service is the single authority on "may tenant X act on channel C with
// capability K". Everything that gates a mutation asks here.
type Service struct {
	repo    RepositoryAPI
	tenants TenantDirectory
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, tenants TenantDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		tenants: tenants,
		logger:  logger,
	}
}

// CanAccess evaluates the decision order, first match wins:
//  1. owners always have full access to their own channels;
//  2. public channels are readable by any tenant;
//  3. an explicit, still-active grant from the owner;
//  4. default deny.
//
// The tenant is an explicit argument; there is no ambient caller identity.
func (s *Service) CanAccess(tenantID string, ch *channel.Channel, cap Capability) (bool, error) {
	if ch == nil || tenantID == "" {
		return false, nil
	}

	if ch.OwnerTenantID == tenantID {
		return true, nil
	}

	if ch.Visibility == channel.VisibilityPublic && cap == CapabilityRead {
		return true, nil
	}

	granted, err := s.repo.AnyGranted(ch.OwnerTenantID, tenantID, grantTypesFor(cap))
	if err != nil {
		s.logger.Error("grant lookup failed",
			"error", err,
			"granter", ch.OwnerTenantID,
			"grantee", tenantID)
		return false, internal.NewStoreUnavailableError(err)
	}

	return granted, nil
}

// GrantAccess records a directed authorization from the actor's tenant to
// grantee. The granter is always the acting tenant; a grantee can never
// create its own access. Idempotent: repeated grants re-activate the same
// row, each call producing one audit entry.
func (s *Service) GrantAccess(actor internal.Actor, granteeTenantID, permissionType string) (*Grant, error) {
	if err := validateGrantInput(actor.TenantID, granteeTenantID, permissionType); err != nil {
		return nil, err
	}

	active, err := s.tenants.IsActive(actor.TenantID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, internal.ErrTenantInactive
	}

	now := time.Now().UTC()
	g := &Grant{
		GranterTenantID: actor.TenantID,
		GranteeTenantID: granteeTenantID,
		PermissionType:  permissionType,
		IsGranted:       true,
		UpdatedAt:       now,
	}

	existing, err := s.repo.Get(actor.TenantID, granteeTenantID, permissionType)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if existing != nil {
		g.ID = existing.ID
		g.CreatedAt = existing.CreatedAt
	} else {
		g.ID = uuid.NewString()
		g.CreatedAt = now
	}

	entry := audit.NewEntry(actor.TenantID, actor.UserID, actor.OriginIP,
		audit.ActionPermissionGrant, "permission_grant", g.ID, map[string]any{
			"grantee_tenant_id": granteeTenantID,
			"permission_type":   permissionType,
		})

	if err := s.repo.Upsert(ToDataModel(g), audit.ToDataModel(entry)); err != nil {
		s.logger.Error("failed to upsert grant",
			"error", err,
			"granter", actor.TenantID,
			"grantee", granteeTenantID)
		return nil, internal.NewStoreUnavailableError(err)
	}

	s.logger.Info("permission granted",
		"granter", actor.TenantID,
		"grantee", granteeTenantID,
		"permission_type", permissionType)

	return g, nil
}

// RevokeAccess tombstones the grant rather than deleting it, so the current
// permission state is always reconstructable from the grant table alone.
// Revoking an already-revoked grant succeeds and still audits the call.
func (s *Service) RevokeAccess(actor internal.Actor, granteeTenantID, permissionType string) error {
	if err := validateGrantInput(actor.TenantID, granteeTenantID, permissionType); err != nil {
		return err
	}

	entry := audit.NewEntry(actor.TenantID, actor.UserID, actor.OriginIP,
		audit.ActionPermissionRevoke, "permission_grant",
		actor.TenantID+":"+granteeTenantID+":"+permissionType, map[string]any{
			"grantee_tenant_id": granteeTenantID,
			"permission_type":   permissionType,
		})

	found, err := s.repo.Tombstone(actor.TenantID, granteeTenantID, permissionType, audit.ToDataModel(entry))
	if err != nil {
		s.logger.Error("failed to tombstone grant",
			"error", err,
			"granter", actor.TenantID,
			"grantee", granteeTenantID)
		return internal.NewStoreUnavailableError(err)
	}
	if !found {
		return internal.ErrGrantNotFound
	}

	s.logger.Warn("permission revoked",
		"granter", actor.TenantID,
		"grantee", granteeTenantID,
		"permission_type", permissionType)

	return nil
}

// ListGrants returns every grant the tenant has issued, tombstones
// included, for the grants admin screen.
func (s *Service) ListGrants(tenantID string) ([]*Grant, error) {
	rows, err := s.repo.ListByGranter(tenantID)
	if err != nil {
		s.logger.Error("failed to list grants", "error", err, "granter", tenantID)
		return nil, internal.NewStoreUnavailableError(err)
	}
	return FromDataModelSlice(rows), nil
}

func validateGrantInput(granter, grantee, permissionType string) *internal.AppError {
	if grantee == "" {
		return internal.NewValidationFieldError("grantee_tenant_id", "grantee_tenant_id is required", internal.ErrCodeValidationFailed)
	}
	if permissionType == "" {
		return internal.NewValidationFieldError("permission_type", "permission_type is required", internal.ErrCodeValidationFailed)
	}
	if granter == grantee {
		return internal.NewValidationError("a pharmacy cannot grant access to itself", internal.ErrCodeSelfGrant)
	}
	return nil
}

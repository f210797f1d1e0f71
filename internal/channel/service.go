package channel

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/audit"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	channelDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/channel"
)

// RepositoryAPI persists channels. Every mutating method receives the audit
// entry describing it and must commit both in one transaction, or neither.
type RepositoryAPI interface {
	Create(ch *channelDatamodel.Channel, entry *auditDatamodel.AuditEntry) error
	Update(ch *channelDatamodel.Channel, entry *auditDatamodel.AuditEntry) error
	// Delete removes the channel's messages and participants before the
	// channel row itself, all in the entry's transaction.
	Delete(channelID string, entry *auditDatamodel.AuditEntry) error
	GetByID(id string) (*channelDatamodel.Channel, error)
	List(f ListFilter) ([]*channelDatamodel.Channel, error)
}

// VisibilityDefaulter supplies the network-wide visibility applied when a
// create request leaves visibility unset; settings.Service satisfies it.
type VisibilityDefaulter interface {
	DefaultVisibility() string
}

// SecurityLog receives refusal entries. A refusal has no mutation to share
// a transaction with, so the append is best-effort; audit.Service satisfies
// it.
type SecurityLog interface {
	Record(entry *audit.Entry) error
}

type Service struct {
	repo     RepositoryAPI
	defaults VisibilityDefaulter
	security SecurityLog
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, defaults VisibilityDefaulter, security SecurityLog, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		security: security,
		logger:   logger,
	}
}

// Create registers a new channel owned by the actor's tenant. The is_system
// flag is never settable through this path.
func (s *Service) Create(actor internal.Actor, dto CreateChannelDTO) (*Channel, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("channel validation failed", "error", err, "tenant_id", actor.TenantID)
		return nil, err
	}

	visibility := VisibilityPrivate
	if dto.Visibility != "" {
		visibility, _ = ParseVisibility(dto.Visibility)
	} else if v, ok := ParseVisibility(s.defaults.DefaultVisibility()); ok {
		visibility = v
	}
	channelType, _ := ParseChannelType(dto.ChannelType)

	now := time.Now().UTC()
	ch := &Channel{
		ID:            uuid.NewString(),
		OwnerTenantID: actor.TenantID,
		Name:          dto.Name,
		Description:   dto.Description,
		Type:          channelType,
		Visibility:    visibility,
		IsSystem:      false,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	entry := audit.NewEntry(actor.TenantID, actor.UserID, actor.OriginIP,
		audit.ActionChannelCreate, "channel", ch.ID, map[string]any{
			"name":         ch.Name,
			"channel_type": string(ch.Type),
			"visibility":   string(ch.Visibility),
		})

	if err := s.repo.Create(ToDataModel(ch), audit.ToDataModel(entry)); err != nil {
		s.logger.Error("failed to create channel", "error", err, "tenant_id", actor.TenantID)
		return nil, internal.NewStoreUnavailableError(err)
	}

	s.logger.Info("channel created",
		"channel_id", ch.ID,
		"tenant_id", actor.TenantID,
		"channel_type", ch.Type)

	return ch, nil
}

func (s *Service) GetByID(id string) (*Channel, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get channel", "error", err, "channel_id", id)
		return nil, internal.NewStoreUnavailableError(err)
	}
	if row == nil {
		return nil, internal.ErrChannelNotFound
	}
	return FromDataModel(row), nil
}

// List is a pure read; reads are not audited.
func (s *Service) List(f ListFilter) ([]*Channel, error) {
	rows, err := s.repo.List(f)
	if err != nil {
		s.logger.Error("failed to list channels", "error", err)
		return nil, internal.NewStoreUnavailableError(err)
	}
	return FromDataModelSlice(rows), nil
}

// Update applies a patch to a channel the actor is allowed to manage.
func (s *Service) Update(actor internal.Actor, channelID string, dto UpdateChannelDTO) (*Channel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ch, err := s.authorizeMutation(actor, channelID)
	if err != nil {
		return nil, err
	}

	changed := map[string]any{}
	if dto.Name != nil && *dto.Name != ch.Name {
		ch.Name = *dto.Name
		changed["name"] = ch.Name
	}
	if dto.Description != nil && *dto.Description != ch.Description {
		ch.Description = *dto.Description
		changed["description"] = ch.Description
	}
	if dto.Visibility != nil && Visibility(*dto.Visibility) != ch.Visibility {
		ch.Visibility, _ = ParseVisibility(*dto.Visibility)
		changed["visibility"] = string(ch.Visibility)
	}
	if dto.Status != nil && Status(*dto.Status) != ch.Status {
		ch.Status, _ = ParseStatus(*dto.Status)
		changed["status"] = string(ch.Status)
	}

	if len(changed) == 0 {
		return ch, nil
	}
	ch.UpdatedAt = time.Now().UTC()

	entry := audit.NewEntry(actor.TenantID, actor.UserID, actor.OriginIP,
		audit.ActionChannelUpdate, "channel", ch.ID, changed)

	if err := s.repo.Update(ToDataModel(ch), audit.ToDataModel(entry)); err != nil {
		s.logger.Error("failed to update channel", "error", err, "channel_id", ch.ID)
		return nil, internal.NewStoreUnavailableError(err)
	}

	s.logger.Info("channel updated", "channel_id", ch.ID, "tenant_id", actor.TenantID)
	return ch, nil
}

// Delete removes the channel and everything scoped to it. Destructive and
// irreversible, so the audit entry lands at warning.
func (s *Service) Delete(actor internal.Actor, channelID string) error {
	ch, err := s.authorizeMutation(actor, channelID)
	if err != nil {
		return err
	}

	entry := audit.NewEntry(actor.TenantID, actor.UserID, actor.OriginIP,
		audit.ActionChannelDelete, "channel", ch.ID, map[string]any{
			"name":         ch.Name,
			"channel_type": string(ch.Type),
		})

	if err := s.repo.Delete(ch.ID, audit.ToDataModel(entry)); err != nil {
		s.logger.Error("failed to delete channel", "error", err, "channel_id", ch.ID)
		return internal.NewStoreUnavailableError(err)
	}

	s.logger.Warn("channel deleted",
		"channel_id", ch.ID,
		"tenant_id", actor.TenantID,
		"name", ch.Name)
	return nil
}

func (s *Service) Archive(actor internal.Actor, channelID string) (*Channel, error) {
	return s.setStatus(actor, channelID, StatusArchived)
}

func (s *Service) Pause(actor internal.Actor, channelID string) (*Channel, error) {
	return s.setStatus(actor, channelID, StatusPaused)
}

func (s *Service) Activate(actor internal.Actor, channelID string) (*Channel, error) {
	return s.setStatus(actor, channelID, StatusActive)
}

func (s *Service) setStatus(actor internal.Actor, channelID string, status Status) (*Channel, error) {
	value := string(status)
	return s.Update(actor, channelID, UpdateChannelDTO{Status: &value})
}

func (s *Service) authorizeMutation(actor internal.Actor, channelID string) (*Channel, error) {
	row, err := s.repo.GetByID(channelID)
	if err != nil {
		s.logger.Error("failed to load channel", "error", err, "channel_id", channelID)
		return nil, internal.NewStoreUnavailableError(err)
	}
	if row == nil {
		return nil, internal.ErrChannelNotFound
	}

	ch := FromDataModel(row)
	if ch.IsProtected() && !actor.NetworkAdmin {
		s.logger.Warn("system channel mutation refused",
			"channel_id", ch.ID,
			"tenant_id", actor.TenantID)
		s.recordRefusal(actor, ch, "protected_channel")
		return nil, internal.ErrProtectedChannel
	}
	if !ch.CanBeManagedBy(actor) {
		s.logger.Warn("channel mutation by non-owner refused",
			"channel_id", ch.ID,
			"owner_tenant_id", ch.OwnerTenantID,
			"tenant_id", actor.TenantID)
		s.recordRefusal(actor, ch, "not_owner")
		return nil, internal.ErrNotChannelOwner
	}
	return ch, nil
}

// recordRefusal lands a warning entry for a refused management mutation.
// The refusal itself already failed; a logging failure must not mask it.
func (s *Service) recordRefusal(actor internal.Actor, ch *Channel, reason string) {
	entry := audit.NewEntry(actor.TenantID, actor.UserID, actor.OriginIP,
		audit.ActionPermissionDenied, "channel", ch.ID, map[string]any{
			"reason": reason,
		})
	_ = s.security.Record(entry)
}

package message

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/channel"
	messageDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/message"
	"github.com/radityasurya/pharmacy-network/internal/permission"
	"github.com/radityasurya/pharmacy-network/pkg/ids"
)

var (
	messagesPostedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_messages_posted_total",
		Help: "Messages accepted and stored by the gateway.",
	})
	postsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_posts_rejected_total",
			Help: "Post attempts rejected by the gateway, by reason.",
		},
		[]string{"reason"},
	)
)

type RepositoryAPI interface {
	// Create stores the message and upserts the sender's participant row in
	// one transaction.
	Create(m *messageDatamodel.Message, p *messageDatamodel.ChannelParticipant) error
	ListByChannel(channelID string, limit, offset int) ([]*messageDatamodel.Message, error)
}

// ChannelProvider loads channels; channel.Service satisfies it.
type ChannelProvider interface {
	GetByID(id string) (*channel.Channel, error)
}

// AccessChecker is the permission engine's gate; permission.Service
// satisfies it.
type AccessChecker interface {
	CanAccess(tenantID string, ch *channel.Channel, cap permission.Capability) (bool, error)
}

// TenantDirectory answers whether the acting pharmacy is operational.
type TenantDirectory interface {
	IsActive(tenantID string) (bool, error)
}

// SettingsAPI exposes the network settings the gateway consults.
type SettingsAPI interface {
	MaxMessageLength() int
	RateLimitingEnabled() bool
}

// RejectionSink receives unauthorized post attempts for abuse escalation;
// audit.SecurityEscalator satisfies it.
type RejectionSink interface {
	RecordRejection(tenantID, channelID string)
}

// Service is the gateway's write path: Received, then either Authorized and
// Stored, or Rejected. A rejection is terminal and synchronous; the caller
// resubmits explicitly if it wants to retry.
type Service struct {
	repo      RepositoryAPI
	channels  ChannelProvider
	access    AccessChecker
	tenants   TenantDirectory
	settings  SettingsAPI
	escalator RejectionSink
	logger    *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	channels ChannelProvider,
	access AccessChecker,
	tenants TenantDirectory,
	settings SettingsAPI,
	escalator RejectionSink,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		channels:  channels,
		access:    access,
		tenants:   tenants,
		settings:  settings,
		escalator: escalator,
		logger:    logger,
	}
}

// Post authorizes and stores one message. Authorization happens at write
// time only; revoking a grant later never hides messages already stored.
func (s *Service) Post(actor internal.Actor, channelID string, dto PostMessageDTO) (*Message, error) {
	if err := dto.Validate(s.settings.MaxMessageLength()); err != nil {
		postsRejectedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	active, err := s.tenants.IsActive(actor.TenantID)
	if err != nil {
		return nil, err
	}
	if !active {
		postsRejectedTotal.WithLabelValues("tenant_inactive").Inc()
		s.logger.Warn("post refused: tenant not active", "tenant_id", actor.TenantID)
		return nil, internal.ErrTenantInactive
	}

	ch, err := s.channels.GetByID(channelID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeChannelNotFound {
			postsRejectedTotal.WithLabelValues("channel_not_found").Inc()
		}
		return nil, err
	}

	if !ch.AcceptsMessages() {
		postsRejectedTotal.WithLabelValues("channel_not_active").Inc()
		return nil, internal.ErrChannelNotActive
	}

	allowed, err := s.access.CanAccess(actor.TenantID, ch, permission.CapabilityWrite)
	if err != nil {
		return nil, err
	}
	if !allowed {
		postsRejectedTotal.WithLabelValues("unauthorized").Inc()
		s.logger.Info("post rejected: no write access",
			"tenant_id", actor.TenantID,
			"channel_id", ch.ID)
		// Ordinary denials are not audited; the escalator raises an alert
		// only when one tenant's rejection rate crosses the threshold.
		if s.settings.RateLimitingEnabled() {
			s.escalator.RecordRejection(actor.TenantID, ch.ID)
		}
		return nil, internal.ErrNoChannelAccess
	}

	priority := PriorityNormal
	if dto.Priority != "" {
		priority, _ = ParsePriority(dto.Priority)
	}

	now := time.Now().UTC()
	m := &Message{
		ID:             ids.New(),
		ChannelID:      ch.ID,
		SenderTenantID: actor.TenantID,
		SenderName:     actor.DisplayName,
		Content:        dto.Content,
		Priority:       priority,
		CreatedAt:      now,
	}

	participant := &messageDatamodel.ChannelParticipant{
		ChannelID:    ch.ID,
		TenantID:     actor.TenantID,
		DisplayName:  actor.DisplayName,
		LastPostedAt: now,
	}

	if err := s.repo.Create(ToDataModel(m), participant); err != nil {
		s.logger.Error("failed to store message",
			"error", err,
			"channel_id", ch.ID,
			"tenant_id", actor.TenantID)
		return nil, internal.NewStoreUnavailableError(err)
	}

	messagesPostedTotal.Inc()
	s.logger.Info("message stored",
		"message_id", m.ID,
		"channel_id", ch.ID,
		"tenant_id", actor.TenantID,
		"priority", priority)

	return m, nil
}

// List returns channel messages newest-first. Read access is evaluated
// against the channel now; rows written before a revocation stay visible
// to anyone who can still read the channel.
func (s *Service) List(actor internal.Actor, channelID string, limit, offset int) ([]*Message, error) {
	ch, err := s.channels.GetByID(channelID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.CanAccess(actor.TenantID, ch, permission.CapabilityRead)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrNoChannelAccess
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.ListByChannel(channelID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list messages", "error", err, "channel_id", channelID)
		return nil, internal.NewStoreUnavailableError(err)
	}

	return FromDataModelSlice(rows), nil
}

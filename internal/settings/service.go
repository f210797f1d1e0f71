package settings

import (
	"log/slog"
	"sync"
	"time"

	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/audit"
	auditDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/audit"
	settingsDatamodel "github.com/radityasurya/pharmacy-network/internal/core/datamodel/settings"
)

type RepositoryAPI interface {
	// Upsert writes the setting row and its audit entry in one transaction.
	Upsert(s *settingsDatamodel.NetworkSetting, entry *auditDatamodel.AuditEntry) error
	All() ([]*settingsDatamodel.NetworkSetting, error)
}

// Service resolves network settings with a short-lived cache so the message
// gateway does not hit the store on every post. Updates invalidate the
// cache immediately; other replicas converge when their cache expires.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger

	mu       sync.RWMutex
	cached   Settings
	cachedAt time.Time
	ttl      time.Duration
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		ttl:    30 * time.Second,
	}
}

// All returns the resolved settings: stored values where present, defaults
// everywhere else. Storage trouble falls back to defaults so the gateway
// keeps running on a degraded store.
func (s *Service) All() Settings {
	s.mu.RLock()
	if time.Since(s.cachedAt) < s.ttl {
		cached := s.cached
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	resolved := defaults()
	rows, err := s.repo.All()
	if err != nil {
		s.logger.Error("failed to load network settings, using defaults", "error", err)
		return resolved
	}
	for _, row := range rows {
		resolved.apply(row.Key, row.Value)
	}

	s.mu.Lock()
	s.cached = resolved
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return resolved
}

// Update validates and stores one setting. The config_change audit entry is
// written in the same transaction as the row, so no setting flips without a
// trace of who flipped it.
func (s *Service) Update(actor internal.Actor, key, value string) (Settings, error) {
	canonical, err := ValidateValue(key, value)
	if err != nil {
		return Settings{}, err
	}

	previous := s.All()

	row := &settingsDatamodel.NetworkSetting{
		Key:       key,
		Value:     canonical,
		UpdatedBy: &actor.UserID,
		UpdatedAt: time.Now().UTC(),
	}

	entry := audit.NewEntry(actor.TenantID, actor.UserID, actor.OriginIP,
		audit.ActionConfigChange, "setting", key, map[string]any{
			"key":       key,
			"new_value": canonical,
		})

	if err := s.repo.Upsert(row, audit.ToDataModel(entry)); err != nil {
		s.logger.Error("failed to store setting", "error", err, "key", key)
		return Settings{}, internal.NewStoreUnavailableError(err)
	}

	s.mu.Lock()
	previous.apply(key, canonical)
	s.cached = previous
	s.cachedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("network setting changed",
		"key", key,
		"value", canonical,
		"updated_by", actor.UserID)

	return previous, nil
}

// MaxMessageLength satisfies the gateway's settings dependency.
func (s *Service) MaxMessageLength() int {
	return s.All().MaxMessageLength
}

// RateLimitingEnabled satisfies the gateway's settings dependency.
func (s *Service) RateLimitingEnabled() bool {
	return s.All().RateLimiting
}

// DefaultVisibility is consulted by channel creation when the request
// leaves visibility unset.
func (s *Service) DefaultVisibility() string {
	return s.All().DefaultChannelVisibility
}

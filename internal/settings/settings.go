package settings

import (
	"strconv"

	"github.com/radityasurya/pharmacy-network/internal"
)

// The settings store is schemaless key/value, but the chat core only
// understands a fixed set of keys. Unknown keys and malformed values are
// rejected on write so reads never have to guess.
const (
	KeyRequire2FA               = "require_2fa"
	KeyRateLimiting             = "rate_limiting"
	KeyAuditRetentionDays       = "audit_retention_days"
	KeyMaxMessageLength         = "max_message_length"
	KeyDefaultChannelVisibility = "default_channel_visibility"
)

const (
	DefaultRequire2FA         = true
	DefaultRateLimiting       = true
	DefaultAuditRetentionDays = 365
	DefaultMaxMessageLength   = 4000
	DefaultChannelVisibility  = "private"
)

// Settings is the resolved network configuration: stored values where
// present, defaults everywhere else.
type Settings struct {
	Require2FA               bool   `json:"require_2fa"`
	RateLimiting             bool   `json:"rate_limiting"`
	AuditRetentionDays       int    `json:"audit_retention_days"`
	MaxMessageLength         int    `json:"max_message_length"`
	DefaultChannelVisibility string `json:"default_channel_visibility"`
}

func defaults() Settings {
	return Settings{
		Require2FA:               DefaultRequire2FA,
		RateLimiting:             DefaultRateLimiting,
		AuditRetentionDays:       DefaultAuditRetentionDays,
		MaxMessageLength:         DefaultMaxMessageLength,
		DefaultChannelVisibility: DefaultChannelVisibility,
	}
}

// ValidateValue checks a raw stored value against the key's schema and
// returns the canonical string form.
func ValidateValue(key, value string) (string, error) {
	switch key {
	case KeyRequire2FA, KeyRateLimiting:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", internal.NewValidationFieldError(key, "value must be a boolean", internal.ErrCodeInvalidSetting)
		}
		return strconv.FormatBool(b), nil
	case KeyAuditRetentionDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return "", internal.NewValidationFieldError(key, "value must be a positive integer", internal.ErrCodeInvalidSetting)
		}
		return strconv.Itoa(n), nil
	case KeyMaxMessageLength:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 65535 {
			return "", internal.NewValidationFieldError(key, "value must be an integer between 1 and 65535", internal.ErrCodeInvalidSetting)
		}
		return strconv.Itoa(n), nil
	case KeyDefaultChannelVisibility:
		if value != "public" && value != "private" {
			return "", internal.NewValidationFieldError(key, "value must be public or private", internal.ErrCodeInvalidSetting)
		}
		return value, nil
	default:
		return "", internal.NewValidationFieldError(key, "unknown setting key", internal.ErrCodeInvalidSetting)
	}
}

func (s *Settings) apply(key, value string) {
	switch key {
	case KeyRequire2FA:
		s.Require2FA, _ = strconv.ParseBool(value)
	case KeyRateLimiting:
		s.RateLimiting, _ = strconv.ParseBool(value)
	case KeyAuditRetentionDays:
		s.AuditRetentionDays, _ = strconv.Atoi(value)
	case KeyMaxMessageLength:
		s.MaxMessageLength, _ = strconv.Atoi(value)
	case KeyDefaultChannelVisibility:
		s.DefaultChannelVisibility = value
	}
}

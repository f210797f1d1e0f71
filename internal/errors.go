package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden        ErrorType = "FORBIDDEN"
	ErrorTypeConflict         ErrorType = "CONFLICT"
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"
	ErrorTypeInternal         ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidChannelType ErrorCode = "INVALID_CHANNEL_TYPE"
	ErrCodeInvalidVisibility  ErrorCode = "INVALID_VISIBILITY"
	ErrCodeInvalidPriority    ErrorCode = "INVALID_PRIORITY"
	ErrCodeInvalidSetting     ErrorCode = "INVALID_SETTING"
	ErrCodeEmptyContent       ErrorCode = "EMPTY_CONTENT"
	ErrCodeContentTooLong     ErrorCode = "CONTENT_TOO_LONG"
	ErrCodeSelfGrant          ErrorCode = "SELF_GRANT"

	ErrCodeChannelNotFound ErrorCode = "CHANNEL_NOT_FOUND"
	ErrCodeGrantNotFound   ErrorCode = "GRANT_NOT_FOUND"
	ErrCodeTenantNotFound  ErrorCode = "TENANT_NOT_FOUND"

	ErrCodeProtectedChannel  ErrorCode = "PROTECTED_CHANNEL"
	ErrCodeNotChannelOwner   ErrorCode = "NOT_CHANNEL_OWNER"
	ErrCodeNoChannelAccess   ErrorCode = "NO_CHANNEL_ACCESS"
	ErrCodeTenantInactive    ErrorCode = "TENANT_INACTIVE"
	ErrCodeChannelNotActive  ErrorCode = "CHANNEL_NOT_ACTIVE"
	ErrCodeStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeInvalidSession    ErrorCode = "INVALID_SESSION"
	ErrCodeNotNetworkAdmin   ErrorCode = "NOT_NETWORK_ADMIN"
	ErrCodeAuditExportFailed ErrorCode = "AUDIT_EXPORT_FAILED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError is for expected, user-facing denials: a tenant that
// simply has no messaging rights on a channel. The UI renders these inline
// rather than as a failure.
func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError is for administrative misuse: mutating a protected
// channel, granting on behalf of another tenant.
func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewStoreUnavailableError aborts the whole logical transaction: no partial
// mutation, no partial audit entry. Surfaced to callers as retryable.
func NewStoreUnavailableError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStoreUnavailable,
		Code:       ErrCodeStoreUnavailable,
		Message:    "persistence layer unavailable, retry later",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrChannelNotFound  = NewNotFoundError("channel not found", ErrCodeChannelNotFound)
	ErrGrantNotFound    = NewNotFoundError("permission grant not found", ErrCodeGrantNotFound)
	ErrTenantNotFound   = NewNotFoundError("tenant not found", ErrCodeTenantNotFound)
	ErrProtectedChannel = NewForbiddenError("system channels cannot be modified", ErrCodeProtectedChannel)
	ErrNotChannelOwner  = NewForbiddenError("channel belongs to another pharmacy", ErrCodeNotChannelOwner)
	ErrNoChannelAccess  = NewUnauthorizedError("no permission to post in this channel", ErrCodeNoChannelAccess)
	ErrTenantInactive   = NewForbiddenError("pharmacy account is not active", ErrCodeTenantInactive)
	ErrChannelNotActive = NewConflictError("channel does not accept messages in its current status", ErrCodeChannelNotActive)
	ErrInvalidSession   = NewUnauthorizedError("invalid session token", ErrCodeInvalidSession)
	ErrNotNetworkAdmin  = NewForbiddenError("network administrator rights required", ErrCodeNotNetworkAdmin)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

package message

import (
	"strings"

	errors "github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/core/common/validation"
)

type PostMessageDTO struct {
	Content  string `json:"content"`
	Priority string `json:"priority"`
}

func (dto PostMessageDTO) Validate(maxContentLength int) *errors.AppError {
	v := validation.NewValidator()
	v.Field("content", dto.Content).
		Custom(func(value interface{}) *errors.AppError {
			if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
				return errors.NewValidationFieldError("content", "content must not be empty", errors.ErrCodeEmptyContent)
			}
			return nil
		}).
		MaxLength(maxContentLength)
	if dto.Priority != "" {
		v.Field("priority", dto.Priority).
			OneOf(errors.ErrCodeInvalidPriority,
				string(PriorityNormal), string(PriorityHigh), string(PriorityUrgent))
	}
	return v.Validate()
}

type MessagesResponse struct {
	Messages []*Message `json:"messages"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

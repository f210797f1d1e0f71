package channel

import (
	errors "github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/core/common/validation"
)

type CreateChannelDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ChannelType string `json:"channel_type"`
	Visibility  string `json:"visibility"`
}

func (dto CreateChannelDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(120)
	v.Field("description", dto.Description).MaxLength(500)
	v.Field("channel_type", dto.ChannelType).Required().
		OneOf(errors.ErrCodeInvalidChannelType,
			string(TypeTeam), string(TypeFunction), string(TypeSupplier),
			string(TypeCollaboration), string(TypeAlert), string(TypeSystem))
	v.Field("visibility", dto.Visibility).
		OneOf(errors.ErrCodeInvalidVisibility, string(VisibilityPublic), string(VisibilityPrivate))
	return v.Validate()
}

// UpdateChannelDTO is a patch: nil fields are left untouched.
type UpdateChannelDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (dto UpdateChannelDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(120)
	}
	if dto.Description != nil {
		v.Field("description", *dto.Description).MaxLength(500)
	}
	if dto.Visibility != nil {
		v.Field("visibility", *dto.Visibility).Required().
			OneOf(errors.ErrCodeInvalidVisibility, string(VisibilityPublic), string(VisibilityPrivate))
	}
	if dto.Status != nil {
		v.Field("status", *dto.Status).Required().
			OneOf(errors.ErrCodeValidationFailed, string(StatusActive), string(StatusArchived), string(StatusPaused))
	}
	return v.Validate()
}

// ListFilter narrows channel listings; zero values mean no restriction.
type ListFilter struct {
	TenantID string
	Type     string
	Search   string
}

type ChannelsResponse struct {
	Channels []*Channel `json:"channels"`
}

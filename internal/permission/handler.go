package permission

import (
	"encoding/json"
	"net/http"

	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/channel"
	"github.com/radityasurya/pharmacy-network/internal/transport"
)

type ServiceAPI interface {
	CanAccess(tenantID string, ch *channel.Channel, cap Capability) (bool, error)
	GrantAccess(actor internal.Actor, granteeTenantID, permissionType string) (*Grant, error)
	RevokeAccess(actor internal.Actor, granteeTenantID, permissionType string) error
	ListGrants(tenantID string) ([]*Grant, error)
}

// ChannelGetter resolves channels for the access-check predicate.
type ChannelGetter interface {
	GetByID(id string) (*channel.Channel, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Channels ChannelGetter
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, channels ChannelGetter) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Channels:    channels,
	}
}

type GrantRequestDTO struct {
	GranteeTenantID string `json:"grantee_tenant_id"`
	PermissionType  string `json:"permission_type"`
}

func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto GrantRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Grant: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.Service.GrantAccess(actor, dto.GranteeTenantID, dto.PermissionType)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto GrantRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Revoke: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.RevokeAccess(actor, dto.GranteeTenantID, dto.PermissionType); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	grants, err := h.Service.ListGrants(actor.TenantID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"grants": grants})
}

// Check is the boolean predicate the UI uses to gray out affordances. It
// never errors on a denied capability, it just answers no.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	channelID := r.URL.Query().Get("channel_id")
	capability := r.URL.Query().Get("capability")
	if channelID == "" || capability == "" {
		h.WriteError(w, http.StatusBadRequest, "channel_id and capability are required")
		return
	}

	ch, err := h.Channels.GetByID(channelID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	allowed, err := h.Service.CanAccess(actor.TenantID, ch, Capability(capability))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"channel_id": channelID,
		"capability": capability,
		"allowed":    allowed,
	})
}

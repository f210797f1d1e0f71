package settings

import (
	"encoding/json"
	"net/http"

	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/transport"
)

type ServiceAPI interface {
	All() Settings
	Update(actor internal.Actor, key, value string) (Settings, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok || !actor.NetworkAdmin {
		h.HandleServiceError(w, internal.ErrNotNetworkAdmin)
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.All())
}

type UpdateSettingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok || !actor.NetworkAdmin {
		h.HandleServiceError(w, internal.ErrNotNetworkAdmin)
		return
	}

	var dto UpdateSettingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateSetting: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolved, err := h.Service.Update(actor, dto.Key, dto.Value)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resolved)
}

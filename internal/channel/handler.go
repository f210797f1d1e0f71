package channel

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/transport"
)

type ServiceAPI interface {
	Create(actor internal.Actor, dto CreateChannelDTO) (*Channel, error)
	GetByID(id string) (*Channel, error)
	List(f ListFilter) ([]*Channel, error)
	Update(actor internal.Actor, channelID string, dto UpdateChannelDTO) (*Channel, error)
	Delete(actor internal.Actor, channelID string) error
	Archive(actor internal.Actor, channelID string) (*Channel, error)
	Pause(actor internal.Actor, channelID string) (*Channel, error)
	Activate(actor internal.Actor, channelID string) (*Channel, error)
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

func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateChannelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateChannel: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.Service.Create(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ch)
}

func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := h.Service.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ch)
}

func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		TenantID: q.Get("tenant_id"),
		Type:     q.Get("type"),
		Search:   q.Get("search"),
	}

	channels, err := h.Service.List(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ChannelsResponse{Channels: channels})
}

func (h *Handler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateChannelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateChannel: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.Service.Update(actor, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ch)
}

func (h *Handler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.Delete(actor, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ArchiveChannel(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Archive)
}

func (h *Handler) PauseChannel(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Pause)
}

func (h *Handler) ActivateChannel(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.Activate)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, op func(internal.Actor, string) (*Channel, error)) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ch, err := op(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ch)
}

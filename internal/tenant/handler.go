package tenant

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/radityasurya/pharmacy-network/internal/transport"
)

type ServiceAPI interface {
	GetByID(id string) (*Tenant, error)
	List() ([]*Tenant, error)
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

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"tenants": tenants})
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

package audit

import (
	"io"
	"net/http"
	"strconv"

	"github.com/radityasurya/pharmacy-network/internal"
	"github.com/radityasurya/pharmacy-network/internal/transport"
)

type ServiceAPI interface {
	Query(f Filter) ([]*Entry, error)
	ExportCSV(w io.Writer, f Filter) error
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

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	f := Filter{
		Severity: q.Get("severity"),
		Action:   q.Get("action"),
		TenantID: q.Get("tenant_id"),
		Search:   q.Get("search"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			f.Limit = l
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			f.Offset = o
		}
	}
	return f
}

// Query serves the security console. Only network administrators see the
// compliance record.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !actor.NetworkAdmin {
		h.HandleServiceError(w, internal.ErrNotNetworkAdmin)
		return
	}

	entries, err := h.Service.Query(filterFromQuery(r))
	if err != nil {
		h.Logger.Error("Query: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !actor.NetworkAdmin {
		h.HandleServiceError(w, internal.ErrNotNetworkAdmin)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="audit_log.csv"`)

	if err := h.Service.ExportCSV(w, filterFromQuery(r)); err != nil {
		// Headers may already be out; log instead of writing a second body.
		h.Logger.Error("Export: csv export failed", "error", err)
	}
}

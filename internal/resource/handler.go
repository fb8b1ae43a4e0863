package resource

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/internal/catalog"
	"github.com/hrmspro/hrms/internal/transport"
	"github.com/hrmspro/hrms/pkg/logger"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Routes mounts list, get, create, update and delete for every catalog tab.
func (h *Handler) Routes(r chi.Router) {
	for _, tab := range catalog.Tabs() {
		res := tab.Resource
		r.Get("/"+res, h.list(res))
		r.Post("/"+res, h.create(res))
		r.Get("/"+res+"/{id}", h.get(res))
		r.Put("/"+res+"/{id}", h.update(res))
		r.Delete("/"+res+"/{id}", h.delete(res))
	}
}

func (h *Handler) list(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.Service.List(r.Context(), resource, r.URL.Query())
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, records)
	}
}

func (h *Handler) get(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.Service.Get(r.Context(), resource, chi.URLParam(r, "id"))
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, rec)
	}
}

func (h *Handler) create(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}

		rec, err := h.Service.Create(r.Context(), resource, body)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusCreated, rec)
	}
}

func (h *Handler) update(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}

		rec, err := h.Service.Update(r.Context(), resource, chi.URLParam(r, "id"), body)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, rec)
	}
}

func (h *Handler) delete(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.Service.Delete(r.Context(), resource, chi.URLParam(r, "id"))
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, DeleteResponse{Message: "Deleted", Deleted: n})
	}
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, internal.NewValidationError("Request body is required", internal.ErrCodeInvalidBody)
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, internal.NewValidationError("Invalid request body", internal.ErrCodeInvalidBody).WithCause(err)
	}
	if len(body) > maxBodyBytes {
		return nil, internal.NewValidationError("Request body too large", internal.ErrCodeInvalidBody)
	}
	return body, nil
}

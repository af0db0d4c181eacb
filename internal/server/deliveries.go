package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tjfontaine/githubbot-connect/internal/storage"
)

// DeliveryHandler exposes recorded deliveries read-only.
type DeliveryHandler struct {
	store storage.DeliveryStore
}

func NewDeliveryHandler(store storage.DeliveryStore) *DeliveryHandler {
	return &DeliveryHandler{store: store}
}

// Routes mounts the list and get endpoints.
func (h *DeliveryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// List handles GET /?event=push&limit=20.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{Event: r.URL.Query().Get("event")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "invalid limit", RequestID: GetRequestID(r.Context())})
			return
		}
		opts.Limit = limit
	}

	deliveries, err := h.store.ListDeliveries(r.Context(), opts)
	if err != nil {
		RenderError(w, r, err)
		return
	}
	if deliveries == nil {
		deliveries = []*storage.Delivery{}
	}

	render.JSON(w, r, map[string]any{"deliveries": deliveries})
}

// Get handles GET /{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.GetDelivery(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Error: err.Error(), RequestID: GetRequestID(r.Context())})
		return
	}
	if err != nil {
		RenderError(w, r, err)
		return
	}

	render.JSON(w, r, d)
}

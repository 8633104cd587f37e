package history

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/HerbHall/fleetpulse/internal/server"
	"go.uber.org/zap"
)

// Handler serves the transition log over HTTP.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates the history API handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers history routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/status/devices/{id}/history", h.handleDeviceHistory)
}

// handleDeviceHistory returns the recorded online/offline transitions for one
// device, newest first.
//
//	@Summary		Device status history
//	@Description	Returns recorded online/offline transitions for a device.
//	@Tags			history
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Device ID"
//	@Param			limit	query		int		false	"Maximum rows (default 100, cap 500)"
//	@Success		200		{array}		Transition
//	@Failure		500		{object}	server.Problem
//	@Router			/status/devices/{id}/history [get]
func (h *Handler) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	deviceID := r.PathValue("id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	transitions, err := h.store.ListByDevice(r.Context(), deviceID, limit)
	if err != nil {
		h.logger.Error("list device history", zap.String("device_id", deviceID), zap.Error(err))
		server.InternalError(w, "failed to read device history", r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(transitions)
}

package status

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/HerbHall/fleetpulse/internal/server"
	"go.uber.org/zap"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Handler exposes the status cache and scheduler over HTTP.
type Handler struct {
	cache     *Cache
	scheduler *Scheduler
	ownerID   string
	contacts  []string
	logger    *zap.Logger
}

// NewHandler creates the status API handler. ownerID and contacts are the
// deployment's configured account and tracked contact list, used for manual
// refresh requests that do not name their targets.
func NewHandler(cache *Cache, scheduler *Scheduler, ownerID string, contacts []string, logger *zap.Logger) *Handler {
	return &Handler{
		cache:     cache,
		scheduler: scheduler,
		ownerID:   ownerID,
		contacts:  contacts,
		logger:    logger,
	}
}

// RegisterRoutes registers status routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/status/devices", h.handleOwnDevices)
	mux.HandleFunc("GET /api/v1/status/devices/{id}", h.handleOwnDevice)
	mux.HandleFunc("GET /api/v1/status/contacts/{contactID}/devices", h.handleContactDevices)
	mux.HandleFunc("GET /api/v1/status/contacts/{contactID}/devices/{id}", h.handleContactDevice)
	mux.HandleFunc("POST /api/v1/status/refresh", h.handleRefresh)
	mux.HandleFunc("GET /api/v1/status/scheduler", h.handleScheduler)
	mux.HandleFunc("POST /api/v1/status/clear", h.handleClear)
}

// handleOwnDevices returns the reconciled status of all own devices.
//
//	@Summary		Own device statuses
//	@Description	Returns the cached reconciled status for every device the account owns.
//	@Tags			status
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	models.DeviceStatusInfo
//	@Router			/status/devices [get]
func (h *Handler) handleOwnDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.OwnDevices())
}

// handleOwnDevice returns the reconciled status of one own device.
//
//	@Summary		Own device status
//	@Tags			status
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Device ID"
//	@Success		200	{object}	models.DeviceStatusInfo
//	@Failure		404	{object}	server.Problem
//	@Router			/status/devices/{id} [get]
func (h *Handler) handleOwnDevice(w http.ResponseWriter, r *http.Request) {
	info, ok := h.cache.OwnDevice(r.PathValue("id"))
	if !ok {
		server.NotFound(w, "no cached status for device", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleContactDevices returns the reconciled statuses for one contact.
//
//	@Summary		Contact device statuses
//	@Tags			status
//	@Produce		json
//	@Security		BearerAuth
//	@Param			contactID	path	string	true	"Contact account ID"
//	@Success		200			{array}	models.DeviceStatusInfo
//	@Router			/status/contacts/{contactID}/devices [get]
func (h *Handler) handleContactDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.ContactDevices(r.PathValue("contactID")))
}

// handleContactDevice returns one device status of one contact.
//
//	@Summary		Contact device status
//	@Tags			status
//	@Produce		json
//	@Security		BearerAuth
//	@Param			contactID	path		string	true	"Contact account ID"
//	@Param			id			path		string	true	"Device ID"
//	@Success		200			{object}	models.DeviceStatusInfo
//	@Failure		404			{object}	server.Problem
//	@Router			/status/contacts/{contactID}/devices/{id} [get]
func (h *Handler) handleContactDevice(w http.ResponseWriter, r *http.Request) {
	info, ok := h.cache.ContactDevice(r.PathValue("contactID"), r.PathValue("id"))
	if !ok {
		server.NotFound(w, "no cached status for device", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RefreshRequest is the request body for POST /status/refresh.
type RefreshRequest struct {
	// ContactIDs overrides the configured contact list for this pass.
	ContactIDs []string `json:"contact_ids,omitempty"`
}

// RefreshResponse is the response for POST /status/refresh.
type RefreshResponse struct {
	Owner    *RefreshResult            `json:"owner,omitempty"`
	OwnerErr string                    `json:"owner_error,omitempty"`
	Contacts map[string]*RefreshResult `json:"contacts,omitempty"`
}

// handleRefresh runs one manual refresh pass. Per-device probe cooldowns
// still apply, so repeated triggers cannot stack cloud calls.
//
//	@Summary		Manual refresh
//	@Description	Refreshes the owner's and contacts' device statuses immediately.
//	@Tags			status
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		RefreshRequest	false	"Refresh options"
//	@Success		200		{object}	RefreshResponse
//	@Router			/status/refresh [post]
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			server.BadRequest(w, "invalid request body", r.URL.Path)
			return
		}
	}

	contacts := req.ContactIDs
	if contacts == nil {
		contacts = h.contacts
	}

	resp := RefreshResponse{Contacts: make(map[string]*RefreshResult, len(contacts))}
	res, err := h.cache.RefreshOwnDevices(r.Context(), h.ownerID)
	if err != nil {
		h.logger.Warn("manual own-device refresh failed", zap.Error(err))
		resp.OwnerErr = err.Error()
	} else {
		resp.Owner = res
	}

	for _, contactID := range contacts {
		cres, cerr := h.cache.RefreshContactDevices(r.Context(), contactID)
		if cerr != nil {
			h.logger.Warn("manual contact refresh failed",
				zap.String("contact", contactID), zap.Error(cerr))
			continue
		}
		resp.Contacts[contactID] = cres
	}

	writeJSON(w, http.StatusOK, resp)
}

// SchedulerResponse is the response for GET /status/scheduler.
type SchedulerResponse struct {
	Running     bool      `json:"running"`
	Interval    string    `json:"interval" example:"30s"`
	LastRefresh time.Time `json:"last_refresh"`
}

// handleScheduler reports the refresh loop state.
//
//	@Summary		Scheduler state
//	@Tags			status
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	SchedulerResponse
//	@Router			/status/scheduler [get]
func (h *Handler) handleScheduler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SchedulerResponse{
		Running:     h.scheduler.Running(),
		Interval:    h.scheduler.Interval().String(),
		LastRefresh: h.cache.LastRefresh(),
	})
}

// handleClear drops all cached statuses (logout).
//
//	@Summary		Clear cache
//	@Tags			status
//	@Security		BearerAuth
//	@Success		204	"cache cleared"
//	@Router			/status/clear [post]
func (h *Handler) handleClear(w http.ResponseWriter, _ *http.Request) {
	h.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

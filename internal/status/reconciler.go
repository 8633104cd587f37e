// Package status implements the device-status aggregation engine: it merges
// canonical registry records with live IoT-cloud probes into one reconciled
// view per device, cached for the local account and each tracked contact.
package status

import (
	"time"

	"github.com/HerbHall/fleetpulse/pkg/models"
)

// Reconciler merges one registry record with zero-or-one live probe result
// into a reconciled DeviceStatusInfo. It is pure: no I/O, no failure mode
// beyond the absent-probe branch.
type Reconciler struct {
	productID string
	now       func() time.Time
}

// NewReconciler creates a Reconciler. productID identifies this deployment's
// cloud product; device records carry no usable product field of their own.
func NewReconciler(productID string) *Reconciler {
	return &Reconciler{productID: productID, now: time.Now}
}

// ProductID returns the configured cloud product identifier.
func (r *Reconciler) ProductID() string {
	return r.productID
}

// Reconcile derives the unified status for one device.
//
// With a live result, its online flag decides both IsOnline and
// MQTTConnected: the probe outranks the registry's stored status. Without
// one, IsOnline falls back to the registry classification and MQTTConnected
// is false -- a missing live signal is never reported as a broker session.
// LastUpdated is stamped unconditionally; it measures cache freshness, not
// live-data freshness.
func (r *Reconciler) Reconcile(rec *models.DeviceRecord, live *models.LiveStatus) models.DeviceStatusInfo {
	info := models.DeviceStatusInfo{
		DeviceID:    rec.ID,
		Name:        rec.Name,
		ProductID:   r.productID,
		Owner:       rec.Owner,
		Status:      rec.Status,
		LastSeen:    rec.LastSeen,
		LastUpdated: r.now(),
	}

	if live != nil {
		info.IsOnline = live.Online
		info.MQTTConnected = live.Online
		info.ClientIP = live.ClientIP
		if live.LastOnlineTime != 0 {
			info.LastSeen = live.LastOnlineTime
		}
		return info
	}

	info.IsOnline = rec.Status == models.DeviceStatusOnline
	info.MQTTConnected = false
	return info
}

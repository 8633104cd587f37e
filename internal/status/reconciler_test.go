package status

import (
	"testing"
	"time"

	"github.com/HerbHall/fleetpulse/internal/testutil"
	"github.com/HerbHall/fleetpulse/pkg/models"
)

func TestReconcile_NoProbeFallsBackToRecord(t *testing.T) {
	r := NewReconciler("prod-1")

	rec := testutil.NewDeviceRecord(testutil.WithID("d1"), testutil.WithLastSeen(100))
	info := r.Reconcile(&rec, nil)

	if !info.IsOnline {
		t.Error("IsOnline = false, want record-derived true")
	}
	if info.MQTTConnected {
		t.Error("MQTTConnected = true without a live signal")
	}
	if info.LastSeen != 100 {
		t.Errorf("LastSeen = %d, want 100", info.LastSeen)
	}

	rec.Status = models.DeviceStatusOffline
	if r.Reconcile(&rec, nil).IsOnline {
		t.Error("IsOnline = true for offline record without probe")
	}
	rec.Status = models.DeviceStatusMaintenance
	if r.Reconcile(&rec, nil).IsOnline {
		t.Error("IsOnline = true for maintenance record without probe")
	}
}

func TestReconcile_ProbeOutranksRecord(t *testing.T) {
	r := NewReconciler("prod-1")

	// Registry says offline, probe says online.
	rec := testutil.NewDeviceRecord(testutil.WithID("d1"),
		testutil.WithStatus(models.DeviceStatusOffline), testutil.WithLastSeen(100))
	info := r.Reconcile(&rec, &models.LiveStatus{Online: true, LastOnlineTime: 500, ClientIP: "10.0.0.9"})

	if !info.IsOnline || !info.MQTTConnected {
		t.Errorf("probe online=true should set both flags: %+v", info)
	}
	if info.LastSeen != 500 {
		t.Errorf("LastSeen = %d, want probe value 500", info.LastSeen)
	}
	if info.ClientIP != "10.0.0.9" {
		t.Errorf("ClientIP = %q", info.ClientIP)
	}

	// Registry says online, probe says offline.
	rec.Status = models.DeviceStatusOnline
	info = r.Reconcile(&rec, &models.LiveStatus{Online: false, LastOnlineTime: 500})
	if info.IsOnline || info.MQTTConnected {
		t.Errorf("probe online=false should clear both flags: %+v", info)
	}
	if info.LastSeen != 500 {
		t.Errorf("LastSeen = %d, want 500", info.LastSeen)
	}
}

func TestReconcile_ZeroLastOnlineTimeKeepsRecordLastSeen(t *testing.T) {
	r := NewReconciler("prod-1")

	rec := testutil.NewDeviceRecord(testutil.WithID("d1"), testutil.WithLastSeen(100))
	info := r.Reconcile(&rec, &models.LiveStatus{Online: true, LastOnlineTime: 0})

	if info.LastSeen != 100 {
		t.Errorf("LastSeen = %d, want record value 100", info.LastSeen)
	}
}

func TestReconcile_ProductIDFromConfigNotRecord(t *testing.T) {
	r := NewReconciler("prod-1")

	rec := testutil.NewDeviceRecord(testutil.WithID("d1"))
	rec.Metadata = map[string]string{"product_id": "rogue-product"}
	if got := r.Reconcile(&rec, nil).ProductID; got != "prod-1" {
		t.Errorf("ProductID = %q, want configured prod-1", got)
	}
}

func TestReconcile_LastUpdatedAdvances(t *testing.T) {
	r := NewReconciler("prod-1")
	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	calls := 0
	r.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	rec := testutil.NewDeviceRecord(testutil.WithID("d1"))
	first := r.Reconcile(&rec, nil)
	second := r.Reconcile(&rec, testutil.NewLiveStatus(testutil.Offline()))

	if !second.LastUpdated.After(first.LastUpdated) {
		t.Errorf("LastUpdated did not advance: %v then %v", first.LastUpdated, second.LastUpdated)
	}
}

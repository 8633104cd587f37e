package status

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HerbHall/fleetpulse/internal/server"
	"github.com/HerbHall/fleetpulse/internal/testutil"
	"github.com/HerbHall/fleetpulse/pkg/models"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, records RecordSource, probe LiveProbe) (*Handler, *Cache) {
	t.Helper()
	cache := NewCache(records, probe, NewReconciler("prod-1"), Config{}, zap.NewNop())
	scheduler := NewScheduler(cache, time.Minute, zap.NewNop())
	t.Cleanup(scheduler.Stop)
	return NewHandler(cache, scheduler, "acct-1", []string{"friend-1"}, zap.NewNop()), cache
}

func serveStatus(t *testing.T, h *Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleOwnDevices(t *testing.T) {
	h, cache := newTestHandler(t, &fakeRecords{}, newFakeProbe())
	d1 := testutil.NewDeviceRecord(testutil.WithID("d1"))
	cache.UpdateOwnDevice(&d1, nil)

	rec := serveStatus(t, h, http.MethodGet, "/api/v1/status/devices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []models.DeviceStatusInfo
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].DeviceID != "d1" || !got[0].IsOnline {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestHandleOwnDevice_NotFound(t *testing.T) {
	h, _ := newTestHandler(t, &fakeRecords{}, newFakeProbe())

	rec := serveStatus(t, h, http.MethodGet, "/api/v1/status/devices/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want problem+json", ct)
	}

	var p server.Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Type != server.ProblemTypeNotFound {
		t.Errorf("problem type = %q, want %q", p.Type, server.ProblemTypeNotFound)
	}
	if p.Instance != "/api/v1/status/devices/ghost" {
		t.Errorf("problem instance = %q", p.Instance)
	}
}

func TestHandleContactDevice(t *testing.T) {
	h, cache := newTestHandler(t, &fakeRecords{}, newFakeProbe())
	d2 := testutil.NewDeviceRecord(testutil.WithID("d2"), testutil.WithOwner("friend-1"), testutil.WithStatus(models.DeviceStatusOffline))
	cache.UpdateContactDevice("friend-1", &d2, testutil.NewLiveStatus())

	rec := serveStatus(t, h, http.MethodGet, "/api/v1/status/contacts/friend-1/devices/d2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.DeviceStatusInfo
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.IsOnline || !got.MQTTConnected {
		t.Errorf("probe result not reflected: %+v", got)
	}
}

func TestHandleRefresh(t *testing.T) {
	records := &fakeRecords{devices: []models.DeviceRecord{
		testutil.NewDeviceRecord(testutil.WithID("d1"), testutil.WithDeviceName("dev-1")),
	}}
	probe := newFakeProbe()
	probe.results["dev-1"] = testutil.NewLiveStatus()
	h, _ := newTestHandler(t, records, probe)

	rec := serveStatus(t, h, http.MethodPost, "/api/v1/status/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got RefreshResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Owner == nil || got.Owner.Fetched != 1 || got.Owner.Probed != 1 {
		t.Errorf("owner result = %+v", got.Owner)
	}
	if _, ok := got.Contacts["friend-1"]; !ok {
		t.Errorf("configured contact missing from response: %+v", got.Contacts)
	}
}

func TestHandleRefresh_ContactOverride(t *testing.T) {
	h, _ := newTestHandler(t, &fakeRecords{}, newFakeProbe())

	body, _ := json.Marshal(RefreshRequest{ContactIDs: []string{"friend-9"}})
	rec := serveStatus(t, h, http.MethodPost, "/api/v1/status/refresh", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got RefreshResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := got.Contacts["friend-9"]; !ok {
		t.Errorf("override contact missing: %+v", got.Contacts)
	}
	if _, ok := got.Contacts["friend-1"]; ok {
		t.Error("configured contact refreshed despite override")
	}
}

func TestHandleRefresh_BadBody(t *testing.T) {
	h, _ := newTestHandler(t, &fakeRecords{}, newFakeProbe())

	rec := serveStatus(t, h, http.MethodPost, "/api/v1/status/refresh", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var p server.Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Type != server.ProblemTypeBadRequest {
		t.Errorf("problem type = %q, want %q", p.Type, server.ProblemTypeBadRequest)
	}
}

func TestHandleScheduler(t *testing.T) {
	h, _ := newTestHandler(t, &fakeRecords{}, newFakeProbe())

	rec := serveStatus(t, h, http.MethodGet, "/api/v1/status/scheduler", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got SchedulerResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Running {
		t.Error("Running = true for a never-started scheduler")
	}
	if got.Interval != "1m0s" {
		t.Errorf("Interval = %q, want 1m0s", got.Interval)
	}
}

func TestHandleClear(t *testing.T) {
	h, cache := newTestHandler(t, &fakeRecords{}, newFakeProbe())
	d1 := testutil.NewDeviceRecord(testutil.WithID("d1"))
	cache.UpdateOwnDevice(&d1, nil)

	rec := serveStatus(t, h, http.MethodPost, "/api/v1/status/clear", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(cache.OwnDevices()) != 0 {
		t.Error("cache not cleared")
	}
}

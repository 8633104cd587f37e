package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HerbHall/fleetpulse/internal/event"
	"github.com/HerbHall/fleetpulse/internal/registry"
	"github.com/HerbHall/fleetpulse/pkg/models"
	"go.uber.org/zap"
)

// RecordSource provides paged access to canonical device records
// (consumer-side interface, satisfied by registry.Client).
type RecordSource interface {
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) (*registry.ListResult, error)
}

// LiveProbe queries live connectivity for one device
// (consumer-side interface, satisfied by cloud.Client).
type LiveProbe interface {
	DeviceStatus(ctx context.Context, productID, deviceName string) (*models.LiveStatus, error)
}

// ReachabilityProbe checks plain IP reachability, used as an optional
// fallback when the cloud probe fails (satisfied by cloud.LANProbe).
type ReachabilityProbe interface {
	Reachable(ctx context.Context, ip string) bool
}

// NameResolver maps a record's device name to the name the cloud expects
// (satisfied by cloud.AliasTable).
type NameResolver interface {
	Resolve(deviceName string) string
}

// Listener receives cache snapshots: once on subscription, then after every
// mutation. Listeners must not mutate the snapshot they receive.
type Listener func(snap Snapshot)

// Snapshot is a read-only copy of the cache state.
type Snapshot struct {
	OwnDevices  []models.DeviceStatusInfo            `json:"own_devices"`
	Contacts    map[string][]models.DeviceStatusInfo `json:"contacts"`
	LastRefresh time.Time                            `json:"last_refresh"`
}

// RefreshResult summarises one owner or contact refresh pass.
type RefreshResult struct {
	Fetched       int `json:"fetched"`
	Probed        int `json:"probed"`
	ProbeFailures int `json:"probe_failures"`
	Skipped       int `json:"skipped"`
}

// Config tunes the cache's probing discipline.
type Config struct {
	ProbeCooldown time.Duration // minimum spacing between probes of one device
	ProbeTimeout  time.Duration // bound on each cloud probe call
	PageLimit     int           // records fetched per owner per pass
}

// Cache holds the latest reconciled status for the local account's devices
// and each tracked contact's devices. One instance is created at startup and
// shared by every consumer; it is safe for concurrent use. Entries are only
// overwritten by newer reconciliations or dropped wholesale by Clear --
// never evicted by age.
type Cache struct {
	records   RecordSource
	probe     LiveProbe
	reconcile *Reconciler
	cooldown  time.Duration
	timeout   time.Duration
	pageLimit int
	logger    *zap.Logger

	resolver NameResolver      // optional
	lan      ReachabilityProbe // optional
	bus      *event.Bus        // optional

	mu          sync.RWMutex
	own         map[string]models.DeviceStatusInfo
	contacts    map[string]map[string]models.DeviceStatusInfo
	lastProbe   map[string]time.Time
	lastRefresh time.Time
	listeners   map[uint64]Listener
	nextID      uint64
}

// NewCache creates the shared status cache.
func NewCache(records RecordSource, probe LiveProbe, reconcile *Reconciler, cfg Config, logger *zap.Logger) *Cache {
	if cfg.ProbeCooldown == 0 {
		cfg.ProbeCooldown = 30 * time.Second
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	if cfg.PageLimit <= 0 || cfg.PageLimit > registry.MaxPageLimit {
		cfg.PageLimit = registry.MaxPageLimit
	}
	return &Cache{
		records:   records,
		probe:     probe,
		reconcile: reconcile,
		cooldown:  cfg.ProbeCooldown,
		timeout:   cfg.ProbeTimeout,
		pageLimit: cfg.PageLimit,
		logger:    logger,
		own:       make(map[string]models.DeviceStatusInfo),
		contacts:  make(map[string]map[string]models.DeviceStatusInfo),
		lastProbe: make(map[string]time.Time),
		listeners: make(map[uint64]Listener),
	}
}

// SetNameResolver installs the device-name alias resolver.
func (c *Cache) SetNameResolver(r NameResolver) { c.resolver = r }

// SetLANFallback installs the optional LAN reachability fallback probe.
func (c *Cache) SetLANFallback(p ReachabilityProbe) { c.lan = p }

// SetBus installs the event bus for device-updated/cleared notifications.
func (c *Cache) SetBus(b *event.Bus) { c.bus = b }

// OwnDevice returns the cached status for one of the account's own devices.
func (c *Cache) OwnDevice(deviceID string) (models.DeviceStatusInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.own[deviceID]
	return info, ok
}

// OwnDevices returns the cached status of all own devices (unordered).
func (c *Cache) OwnDevices() []models.DeviceStatusInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.DeviceStatusInfo, 0, len(c.own))
	for _, info := range c.own {
		out = append(out, info)
	}
	return out
}

// ContactDevice returns the cached status for one device of a contact.
func (c *Cache) ContactDevice(contactID, deviceID string) (models.DeviceStatusInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.contacts[contactID][deviceID]
	return info, ok
}

// ContactDevices returns the cached status of all devices of a contact (unordered).
func (c *Cache) ContactDevices(contactID string) []models.DeviceStatusInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	devices := c.contacts[contactID]
	out := make([]models.DeviceStatusInfo, 0, len(devices))
	for _, info := range devices {
		out = append(out, info)
	}
	return out
}

// Snapshot returns a read-only copy of the full cache state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// LastRefresh returns when the cache was last mutated.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}

// UpdateOwnDevice reconciles one own-device record with an optional live
// result, writes it to the cache, and notifies subscribers.
func (c *Cache) UpdateOwnDevice(rec *models.DeviceRecord, live *models.LiveStatus) {
	c.apply(context.Background(), "", rec, live, false, false)
}

// UpdateContactDevice is UpdateOwnDevice nested under a contact identifier.
func (c *Cache) UpdateContactDevice(contactID string, rec *models.DeviceRecord, live *models.LiveStatus) {
	c.apply(context.Background(), contactID, rec, live, false, false)
}

// Subscribe registers a listener. The listener is invoked immediately with
// the current snapshot, then after every mutation. A panicking listener is
// logged and does not affect other listeners. Returns an unsubscribe function.
func (c *Cache) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.safeNotify(l, snap)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Clear empties both maps, resets the refresh timestamp and probe cooldowns,
// and notifies subscribers with the empty state. Called on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.own = make(map[string]models.DeviceStatusInfo)
	c.contacts = make(map[string]map[string]models.DeviceStatusInfo)
	c.lastProbe = make(map[string]time.Time)
	c.lastRefresh = time.Time{}
	cachedDevices.Set(0)
	snap := c.snapshotLocked()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	for _, l := range listeners {
		c.safeNotify(l, snap)
	}
	if c.bus != nil {
		c.bus.Publish(context.Background(), event.Event{
			Topic:     TopicCleared,
			Source:    "status",
			Timestamp: time.Now(),
		})
	}
}

// RefreshOwnDevices fetches the account's device records and reconciles each
// with a best-effort live probe. Probes run concurrently with all-settle
// semantics: one device's failure never blocks or cancels the others.
func (c *Cache) RefreshOwnDevices(ctx context.Context, ownerID string) (*RefreshResult, error) {
	return c.refresh(ctx, "", ownerID)
}

// RefreshContactDevices is RefreshOwnDevices for one tracked contact.
func (c *Cache) RefreshContactDevices(ctx context.Context, contactID string) (*RefreshResult, error) {
	return c.refresh(ctx, contactID, contactID)
}

// probeOutcome classifies what happened to one device's probe attempt.
type probeOutcome int

const (
	probeSucceeded probeOutcome = iota
	probeFailed
	probeSkippedNoName
	probeSkippedCooldown
)

func (c *Cache) refresh(ctx context.Context, contactID, ownerID string) (*RefreshResult, error) {
	start := time.Now()
	defer func() { refreshDuration.Observe(time.Since(start).Seconds()) }()

	page, err := c.records.ListByOwner(ctx, ownerID, 0, c.pageLimit)
	if err != nil {
		// No data this cycle; prior cached entries are retained untouched.
		return nil, fmt.Errorf("list devices for %q: %w", ownerID, err)
	}

	res := &RefreshResult{Fetched: len(page.Devices)}
	var resMu sync.Mutex
	var wg sync.WaitGroup

	for i := range page.Devices {
		rec := page.Devices[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			live, lanUp, outcome := c.probeDevice(ctx, contactID, &rec)
			c.apply(ctx, contactID, &rec, live, outcome == probeSkippedCooldown, lanUp)

			resMu.Lock()
			switch outcome {
			case probeSucceeded:
				res.Probed++
			case probeFailed:
				res.Probed++
				res.ProbeFailures++
			case probeSkippedNoName, probeSkippedCooldown:
				res.Skipped++
			}
			resMu.Unlock()
		}()
	}

	wg.Wait()
	return res, nil
}

// probeDevice resolves the device name and issues at most one bounded cloud
// probe. An empty resolved name or an active cooldown skips the probe
// entirely; a failed or timed-out probe optionally falls through to the LAN
// reachability check.
func (c *Cache) probeDevice(ctx context.Context, contactID string, rec *models.DeviceRecord) (live *models.LiveStatus, lanUp bool, outcome probeOutcome) {
	name := rec.DeviceName
	if c.resolver != nil {
		name = c.resolver.Resolve(name)
	}
	if name == "" {
		return nil, false, probeSkippedNoName
	}

	c.mu.Lock()
	if last, ok := c.lastProbe[rec.ID]; ok && time.Since(last) < c.cooldown {
		c.mu.Unlock()
		return nil, false, probeSkippedCooldown
	}
	c.lastProbe[rec.ID] = time.Now()
	c.mu.Unlock()

	probesTotal.Inc()
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	live, err := c.probe.DeviceStatus(probeCtx, c.reconcile.ProductID(), name)
	cancel()
	if err == nil {
		return live, false, probeSucceeded
	}

	probeFailuresTotal.Inc()
	c.logger.Warn("live probe failed",
		zap.String("device_id", rec.ID),
		zap.String("device_name", name),
		zap.Error(err),
	)

	// A LAN reply proves the device is up even when the cloud API is down;
	// the broker verdict stays unknown.
	if c.lan != nil {
		if ip := c.lastKnownIP(contactID, rec.ID); ip != "" && c.lan.Reachable(ctx, ip) {
			lanUp = true
		}
	}
	return nil, lanUp, probeFailed
}

// lastKnownIP returns the cached client IP for a device, if any.
func (c *Cache) lastKnownIP(contactID, deviceID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if contactID == "" {
		return c.own[deviceID].ClientIP
	}
	return c.contacts[contactID][deviceID].ClientIP
}

// apply reconciles and writes one device's status, then notifies listeners
// and the event bus. carry holds the previous probe verdict through a
// cooldown-skipped pass so a suppressed probe cannot downgrade the entry.
func (c *Cache) apply(ctx context.Context, contactID string, rec *models.DeviceRecord, live *models.LiveStatus, carry, lanUp bool) {
	info := c.reconcile.Reconcile(rec, live)

	c.mu.Lock()
	prev, existed := c.entryLocked(contactID, rec.ID)
	if live == nil && existed {
		switch {
		case carry:
			info.IsOnline = prev.IsOnline
			info.MQTTConnected = prev.MQTTConnected
			info.ClientIP = prev.ClientIP
		case lanUp:
			info.IsOnline = true
			info.ClientIP = prev.ClientIP
		}
	} else if live == nil && lanUp {
		info.IsOnline = true
	}

	flipped := existed && prev.IsOnline != info.IsOnline

	if contactID == "" {
		c.own[rec.ID] = info
	} else {
		if c.contacts[contactID] == nil {
			c.contacts[contactID] = make(map[string]models.DeviceStatusInfo)
		}
		c.contacts[contactID][rec.ID] = info
	}
	c.lastRefresh = time.Now()
	cachedDevices.Set(float64(c.sizeLocked()))
	snap := c.snapshotLocked()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	for _, l := range listeners {
		c.safeNotify(l, snap)
	}
	if c.bus != nil {
		c.bus.Publish(ctx, event.Event{
			Topic:     TopicDeviceUpdated,
			Source:    "status",
			Timestamp: time.Now(),
			Payload: &DeviceUpdatedEvent{
				ContactID: contactID,
				Info:      info,
				Flipped:   flipped,
				WasOnline: prev.IsOnline,
			},
		})
	}
}

// entryLocked looks up a cached entry. Caller must hold c.mu.
func (c *Cache) entryLocked(contactID, deviceID string) (models.DeviceStatusInfo, bool) {
	if contactID == "" {
		info, ok := c.own[deviceID]
		return info, ok
	}
	info, ok := c.contacts[contactID][deviceID]
	return info, ok
}

// sizeLocked counts cached entries. Caller must hold c.mu.
func (c *Cache) sizeLocked() int {
	n := len(c.own)
	for _, devices := range c.contacts {
		n += len(devices)
	}
	return n
}

// snapshotLocked copies the cache state. Caller must hold c.mu.
func (c *Cache) snapshotLocked() Snapshot {
	snap := Snapshot{
		OwnDevices:  make([]models.DeviceStatusInfo, 0, len(c.own)),
		Contacts:    make(map[string][]models.DeviceStatusInfo, len(c.contacts)),
		LastRefresh: c.lastRefresh,
	}
	for _, info := range c.own {
		snap.OwnDevices = append(snap.OwnDevices, info)
	}
	for contactID, devices := range c.contacts {
		list := make([]models.DeviceStatusInfo, 0, len(devices))
		for _, info := range devices {
			list = append(list, info)
		}
		snap.Contacts[contactID] = list
	}
	return snap
}

// listenersLocked copies the listener set. Caller must hold c.mu.
func (c *Cache) listenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

func (c *Cache) safeNotify(l Listener, snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("status listener panicked", zap.Any("panic", r))
		}
	}()
	l(snap)
}

package history

import (
	"context"
	"time"

	"github.com/HerbHall/fleetpulse/internal/event"
	"github.com/HerbHall/fleetpulse/internal/status"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder listens on the event bus and appends a transition row whenever a
// device's reconciled online state flips. It also prunes expired rows on a
// slow ticker.
type Recorder struct {
	store     *Store
	retention time.Duration
	logger    *zap.Logger

	unsubscribe func()
	cancel      context.CancelFunc
}

// NewRecorder wires the recorder to the bus. retention bounds how long
// transitions are kept; zero disables pruning.
func NewRecorder(store *Store, bus *event.Bus, retention time.Duration, logger *zap.Logger) *Recorder {
	r := &Recorder{
		store:     store,
		retention: retention,
		logger:    logger,
	}
	r.unsubscribe = bus.Subscribe(status.TopicDeviceUpdated, r.onDeviceUpdated)

	if retention > 0 {
		pruneCtx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		go r.pruneLoop(pruneCtx)
	}
	return r
}

// Close detaches the recorder from the bus and stops the prune loop.
func (r *Recorder) Close() {
	r.unsubscribe()
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Recorder) onDeviceUpdated(ctx context.Context, ev event.Event) {
	upd, ok := ev.Payload.(*status.DeviceUpdatedEvent)
	if !ok || !upd.Flipped {
		return
	}

	t := &Transition{
		ID:            uuid.NewString(),
		DeviceID:      upd.Info.DeviceID,
		ContactID:     upd.ContactID,
		DeviceName:    upd.Info.Name,
		WasOnline:     upd.WasOnline,
		IsOnline:      upd.Info.IsOnline,
		MQTTConnected: upd.Info.MQTTConnected,
		OccurredAt:    ev.Timestamp,
	}
	if err := r.store.Insert(ctx, t); err != nil {
		r.logger.Warn("record status transition",
			zap.String("device_id", t.DeviceID), zap.Error(err))
	}
}

func (r *Recorder) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.store.Prune(ctx, r.retention)
			if err != nil {
				r.logger.Warn("prune status transitions", zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Debug("pruned status transitions", zap.Int64("rows", n))
			}
		}
	}
}

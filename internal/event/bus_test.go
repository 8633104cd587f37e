package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPublish_DeliversToTopicHandlers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got []string
	bus.Subscribe("status.device_updated", func(_ context.Context, ev Event) {
		got = append(got, ev.Topic)
	})
	bus.Subscribe("status.cleared", func(_ context.Context, _ Event) {
		t.Error("handler for other topic invoked")
	})

	bus.Publish(context.Background(), Event{Topic: "status.device_updated", Source: "test"})

	if len(got) != 1 || got[0] != "status.device_updated" {
		t.Errorf("got %v", got)
	}
}

func TestPublish_MultipleHandlers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe("t", func(_ context.Context, _ Event) { calls++ })
	}

	bus.Publish(context.Background(), Event{Topic: "t"})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())

	calls := 0
	unsubscribe := bus.Subscribe("t", func(_ context.Context, _ Event) { calls++ })

	bus.Publish(context.Background(), Event{Topic: "t"})
	unsubscribe()
	bus.Publish(context.Background(), Event{Topic: "t"})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPublish_PanickingHandlerIsolated(t *testing.T) {
	bus := NewBus(zap.NewNop())

	bus.Subscribe("t", func(_ context.Context, _ Event) { panic("bad handler") })
	calls := 0
	bus.Subscribe("t", func(_ context.Context, _ Event) { calls++ })

	bus.Publish(context.Background(), Event{Topic: "t"})

	if calls != 1 {
		t.Errorf("healthy handler calls = %d, want 1", calls)
	}
}

func TestPublishAsync(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	var mu sync.Mutex
	var got Event
	bus.Subscribe("t", func(_ context.Context, ev Event) {
		mu.Lock()
		got = ev
		mu.Unlock()
		wg.Done()
	})

	bus.PublishAsync(context.Background(), Event{Topic: "t", Timestamp: time.Now()})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.Topic != "t" {
		t.Errorf("Topic = %q", got.Topic)
	}
}

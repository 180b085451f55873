package subboxer

import (
	"context"
	"sync"

	"github.com/aretw0/subboxer/pkg/domain"
)

// Event is a notification delivered to subscribers.
type Event struct {
	Type domain.EventType `json:"type"`
	Data any              `json:"data"`
}

type broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan Event]struct{})}
}

func (b *broadcaster) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *broadcaster) publish(t domain.EventType, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- Event{Type: t, Data: data}:
		default:
		}
	}
}

func (b *broadcaster) hooks() domain.Hooks {
	return domain.Hooks{
		OnModeChanged:      func(_ context.Context, e *domain.ModeEvent) { b.publish(e.Type, e) },
		OnActiveChanged:    func(_ context.Context, e *domain.ActiveEvent) { b.publish(e.Type, e) },
		OnThicknessChanged: func(_ context.Context, e *domain.PlaneEvent) { b.publish(e.Type, e) },
		OnPlaneChanged:     func(_ context.Context, e *domain.PlaneEvent) { b.publish(e.Type, e) },
		OnCameraChanged:    func(_ context.Context, e *domain.CameraEvent) { b.publish(e.Type, e) },
		OnLayersChanged:    func(_ context.Context, e *domain.LayersEvent) { b.publish(e.Type, e) },
		OnSubparticleAdded: func(_ context.Context, e *domain.SubparticleEvent) { b.publish(e.Type, e) },
		OnGestureStarted:   func(_ context.Context, e *domain.GestureEvent) { b.publish(e.Type, e) },
		OnGestureEnded:     func(_ context.Context, e *domain.GestureEvent) { b.publish(e.Type, e) },
	}
}

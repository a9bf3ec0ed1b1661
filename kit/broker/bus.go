package broker

import (
	"context"
	"log"
	"sync"
)

type Event interface {
	Name() string
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) []error
}

type Handler func(ctx context.Context, evt Event) error

type subscriber struct {
	id int
	h  Handler
}

// Bus is the in-process dispatch fabric between the push channel and the
// session view. Handlers run inline on the publisher's goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string][]subscriber
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]subscriber)}
}

// Subscription identifies one handler registration. The creator owns it and
// releases it on teardown.
type Subscription struct {
	bus   *Bus
	event string
	id    int
}

func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	subs := s.bus.handlers[s.event]
	for i, sub := range subs {
		if sub.id == s.id {
			s.bus.handlers[s.event] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	s.bus = nil
}

func (b *Bus) Subscribe(eventName string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[eventName] = append(b.handlers[eventName], subscriber{id: b.nextID, h: h})
	return &Subscription{bus: b, event: eventName, id: b.nextID}
}

func (b *Bus) Publish(ctx context.Context, evt Event) []error {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.handlers[evt.Name()]...)
	b.mu.RUnlock()

	var errs []error
	for i, sub := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("broker handler panic event=%s handler_index=%d panic=%v", evt.Name(), i, r)
					errs = append(errs, context.Canceled)
				}
			}()
			if err := sub.h(ctx, evt); err != nil {
				log.Printf("broker handler error event=%s handler_index=%d error=%v", evt.Name(), i, err)
				errs = append(errs, err)
			}
		}()
	}
	return errs
}

package push

import "sync"

// Loopback is an in-process transport for tests and local development: what
// you publish is what subscribers get, same delivery semantics as the real
// channel (no buffering, no replay).
type Loopback struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]func(data []byte)
	closed   bool
}

func NewLoopback() *Loopback {
	return &Loopback{handlers: make(map[string]map[int]func(data []byte))}
}

type loopbackSub struct {
	t       *Loopback
	subject string
	id      int
}

func (s *loopbackSub) Unsubscribe() error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	if hs, ok := s.t.handlers[s.subject]; ok {
		delete(hs, s.id)
	}
	return nil
}

func (t *Loopback) Subscribe(subject string, handler func(data []byte)) (Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	if t.handlers[subject] == nil {
		t.handlers[subject] = make(map[int]func(data []byte))
	}
	t.handlers[subject][t.nextID] = handler
	return &loopbackSub{t: t, subject: subject, id: t.nextID}, nil
}

func (t *Loopback) Publish(subject string, data []byte) {
	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return
	}
	hs := make([]func(data []byte), 0, len(t.handlers[subject]))
	for _, h := range t.handlers[subject] {
		hs = append(hs, h)
	}
	t.mu.RUnlock()

	for _, h := range hs {
		h(data)
	}
}

func (t *Loopback) SubscriberCount(subject string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers[subject])
}

func (t *Loopback) Close() {
	t.mu.Lock()
	t.closed = true
	t.handlers = make(map[string]map[int]func(data []byte))
	t.mu.Unlock()
}

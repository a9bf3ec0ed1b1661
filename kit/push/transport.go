package push

// Transport is the persistent push connection. Delivery is at-least-once and
// unbuffered: a dropped connection loses events until the next pull, which is
// why every screen also pulls on mount. Reconnection is the transport's job
// and is invisible to subscribers.
type Transport interface {
	Subscribe(subject string, handler func(data []byte)) (Subscription, error)
	Close()
}

// Subscription is owned by whoever created it and must be released on
// teardown to avoid leaking channel capacity.
type Subscription interface {
	Unsubscribe() error
}

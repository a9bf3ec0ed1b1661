package backend

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("backend: circuit open")

// Puller is the read side of the backend. Only pulls go through the breaker;
// ExecutePayment is never wrapped so a settle attempt is never short-circuited.
type Puller interface {
	GetWallet(ctx context.Context) (*WalletSnapshot, error)
	GetTransactionHistory(ctx context.Context) ([]Transaction, error)
	GetBorrowRequestsByUser(ctx context.Context, userID string) ([]BorrowRequest, error)
	GetNotifications(ctx context.Context) ([]Notification, error)
}

type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	IsFailure        func(error) bool
}

type CircuitBreakerPuller struct {
	next Puller
	cfg  CircuitBreakerConfig

	mu           sync.Mutex
	state        int
	failures     int
	successes    int
	openedAt     time.Time
	halfInFlight bool
}

const (
	cbClosed = iota
	cbOpen
	cbHalfOpen
)

func NewCircuitBreakerPuller(next Puller, cfg CircuitBreakerConfig) *CircuitBreakerPuller {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 2 * time.Second
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status >= 500
			}
			// transport-level failures trip the breaker, a caller cancel does not
			return !errors.Is(err, context.Canceled)
		}
	}
	return &CircuitBreakerPuller{next: next, cfg: cfg, state: cbClosed}
}

func (b *CircuitBreakerPuller) GetWallet(ctx context.Context) (*WalletSnapshot, error) {
	if err := b.beforeCall(); err != nil {
		return nil, err
	}
	out, err := b.next.GetWallet(ctx)
	b.afterCall(err)
	return out, err
}

func (b *CircuitBreakerPuller) GetTransactionHistory(ctx context.Context) ([]Transaction, error) {
	if err := b.beforeCall(); err != nil {
		return nil, err
	}
	out, err := b.next.GetTransactionHistory(ctx)
	b.afterCall(err)
	return out, err
}

func (b *CircuitBreakerPuller) GetBorrowRequestsByUser(ctx context.Context, userID string) ([]BorrowRequest, error) {
	if err := b.beforeCall(); err != nil {
		return nil, err
	}
	out, err := b.next.GetBorrowRequestsByUser(ctx, userID)
	b.afterCall(err)
	return out, err
}

func (b *CircuitBreakerPuller) GetNotifications(ctx context.Context) ([]Notification, error) {
	if err := b.beforeCall(); err != nil {
		return nil, err
	}
	out, err := b.next.GetNotifications(ctx)
	b.afterCall(err)
	return out, err
}

func (b *CircuitBreakerPuller) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case cbClosed:
		return nil
	case cbOpen:
		if time.Since(b.openedAt) >= b.cfg.OpenTimeout {
			b.state = cbHalfOpen
			b.successes = 0
			b.halfInFlight = false
		} else {
			return ErrCircuitOpen
		}
		fallthrough
	case cbHalfOpen:
		if b.halfInFlight {
			return ErrCircuitOpen
		}
		b.halfInFlight = true
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (b *CircuitBreakerPuller) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == cbHalfOpen {
		b.halfInFlight = false
	}

	if err == nil {
		switch b.state {
		case cbClosed:
			b.failures = 0
		case cbHalfOpen:
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.state = cbClosed
				b.failures = 0
				b.successes = 0
			}
		}
		return
	}

	if !b.cfg.IsFailure(err) {
		return
	}

	switch b.state {
	case cbClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.state = cbOpen
			b.openedAt = time.Now().UTC()
			b.successes = 0
			b.halfInFlight = false
		}
	case cbHalfOpen:
		b.state = cbOpen
		b.openedAt = time.Now().UTC()
		b.failures = b.cfg.FailureThreshold
		b.successes = 0
		b.halfInFlight = false
	}
}

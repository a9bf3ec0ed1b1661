package intent

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"labrent/kit/sessionstore"
)

var ErrNoPendingIntent = errors.New("intent: no pending payment intent")

const (
	pendingKey  = "payment:intent"
	deferredKey = "payment:deferred"
)

// PaymentIntent is owned by the client from top-up initiation until the
// outcome (success, cancel, duplicate) is resolved.
type PaymentIntent struct {
	PaymentID     string    `json:"payment_id"`
	CorrelationID string    `json:"correlation_id"`
	QuotedAmount  int64     `json:"quoted_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeferredIntent remembers what the user was doing when the top-up
// interrupted them. Tagged variant; RESUME_RENTAL is the only kind today.
type DeferredIntent struct {
	Kind  string `json:"kind"`
	KitID string `json:"kit_id,omitempty"`
}

const KindResumeRental = "RESUME_RENTAL"

// Store persists the in-flight intent and the deferred user action in the
// session store so both survive a reload within the browsing session.
type Store struct {
	store sessionstore.Store
}

func New(store sessionstore.Store) *Store {
	return &Store{store: store}
}

func (s *Store) SavePaymentIntent(ctx context.Context, pi PaymentIntent) error {
	b, err := json.Marshal(pi)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, pendingKey, b); err != nil {
		log.Printf("layer=service component=intent method=SavePaymentIntent payment_id=%s err=%v", pi.PaymentID, err)
		return err
	}
	return nil
}

// PaymentIntent returns ErrNoPendingIntent when the correlation was lost,
// e.g. the session storage was cleared. Callers fail fast instead of
// guessing a correlation id.
func (s *Store) PaymentIntent(ctx context.Context) (*PaymentIntent, error) {
	b, err := s.store.Get(ctx, pendingKey)
	if err != nil {
		if sessionstore.IsNotFound(err) {
			return nil, ErrNoPendingIntent
		}
		log.Printf("layer=service component=intent method=PaymentIntent err=%v", err)
		return nil, err
	}
	var pi PaymentIntent
	if err := json.Unmarshal(b, &pi); err != nil {
		log.Printf("layer=service component=intent method=PaymentIntent err=%v", err)
		return nil, errors.Join(ErrNoPendingIntent, err)
	}
	return &pi, nil
}

func (s *Store) ClearPaymentIntent(ctx context.Context) error {
	return s.store.Delete(ctx, pendingKey)
}

func (s *Store) SaveDeferred(ctx context.Context, di DeferredIntent) error {
	b, err := json.Marshal(di)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, deferredKey, b); err != nil {
		log.Printf("layer=service component=intent method=SaveDeferred kind=%s err=%v", di.Kind, err)
		return err
	}
	return nil
}

// TakeDeferred consumes the deferred intent: at most one caller ever gets
// it. Returns nil without error when there is nothing deferred.
func (s *Store) TakeDeferred(ctx context.Context) (*DeferredIntent, error) {
	b, err := s.store.Get(ctx, deferredKey)
	if err != nil {
		if sessionstore.IsNotFound(err) {
			return nil, nil
		}
		log.Printf("layer=service component=intent method=TakeDeferred err=%v", err)
		return nil, err
	}
	if err := s.store.Delete(ctx, deferredKey); err != nil {
		log.Printf("layer=service component=intent method=TakeDeferred err=%v", err)
		return nil, err
	}
	var di DeferredIntent
	if err := json.Unmarshal(b, &di); err != nil {
		log.Printf("layer=service component=intent method=TakeDeferred err=%v", err)
		return nil, err
	}
	return &di, nil
}

// ClearDeferred discards the deferred intent, used on gateway cancel.
func (s *Store) ClearDeferred(ctx context.Context) error {
	return s.store.Delete(ctx, deferredKey)
}

package sessionstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("sessionstore: not found")
	ErrInternal = errors.New("sessionstore: internal")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store holds the ephemeral per-session markers: the pending payment intent,
// the processing and announced markers per payment id, and the deferred
// intent blob. It is best-effort only; the backend's own idempotency is the
// real guarantee. Business logic never reaches past this interface to the
// backing store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetNX stores the value only if the key is absent and reports whether it
	// did. This is the check-and-set the idempotency ledger gates on.
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error
}

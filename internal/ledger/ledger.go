package ledger

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"labrent/kit/sessionstore"
)

const (
	processingKeyPrefix = "payment:processing:"
	announcedKeyPrefix  = "payment:announced:"
)

// CompletionMarker is written the instant processing begins, before any
// network call, which is what closes the duplicate-return race window.
type CompletionMarker struct {
	PaymentID   string    `json:"payment_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Ledger gates payment completion to a single execution per payment id for
// the lifetime of the session. It only protects the user-visible effects;
// the backend's own idempotency is the real guarantee.
type Ledger struct {
	store sessionstore.Store
}

func New(store sessionstore.Store) *Ledger {
	return &Ledger{store: store}
}

// TryBeginProcessing records a CompletionMarker atomically and reports
// whether this caller won. Every later call for the same id returns false,
// second mounts and duplicate pushes of the return URL included. A store
// failure counts as a denial: losing one legitimate completion to a broken
// store beats double-processing.
func (l *Ledger) TryBeginProcessing(ctx context.Context, paymentID string) bool {
	marker, err := json.Marshal(CompletionMarker{PaymentID: paymentID, CompletedAt: time.Now().UTC()})
	if err != nil {
		log.Printf("layer=service component=ledger method=TryBeginProcessing payment_id=%s err=%v", paymentID, err)
		return false
	}
	ok, err := l.store.SetNX(ctx, processingKeyPrefix+paymentID, marker)
	if err != nil {
		log.Printf("layer=service component=ledger method=TryBeginProcessing payment_id=%s err=%v", paymentID, err)
		return false
	}
	return ok
}

// ClearAfter releases the marker once the outcome is durably reflected
// server-side. The cooldown bounds how long duplicate-return protection is
// honored without reopening the race immediately after completion.
func (l *Ledger) ClearAfter(paymentID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := l.store.Delete(context.Background(), processingKeyPrefix+paymentID); err != nil {
			log.Printf("layer=service component=ledger method=ClearAfter payment_id=%s err=%v", paymentID, err)
		}
	})
}

// TryAnnounce reports whether the success notice for this payment id has
// not been shown yet, and marks it shown. Guards against duplicate toasts
// across tabs when the backend answers ALREADY_DONE.
func (l *Ledger) TryAnnounce(ctx context.Context, paymentID string) bool {
	ok, err := l.store.SetNX(ctx, announcedKeyPrefix+paymentID, []byte(`{"announced":true}`))
	if err != nil {
		log.Printf("layer=service component=ledger method=TryAnnounce payment_id=%s err=%v", paymentID, err)
		return false
	}
	return ok
}

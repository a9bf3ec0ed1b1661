package completion

import (
	"context"
	"errors"
	"log"
	"time"

	"labrent/internal/intent"
	"labrent/kit/backend"
	"labrent/kit/observability"
)

type State string

const (
	// StateSkipped is terminal and a no-op: the ledger denied this caller,
	// someone else already processed (or is processing) the payment.
	StateSkipped     State = "skipped"
	StateSucceeded   State = "succeeded"
	StateAlreadyDone State = "already_done"
	StateFailed      State = "failed"
	StateCancelled   State = "cancelled"
)

var (
	// ErrMissingIntent means the correlation id was lost, e.g. the tab or
	// its storage was cleared. Completion fails fast instead of guessing;
	// the user must re-initiate the top-up.
	ErrMissingIntent = errors.New("completion: payment correlation lost")

	ErrExecutionFailed = errors.New("completion: execution failed")
)

// BackendContract define the execute operation. No retries, no client-side
// timeout beyond the transport's own.
type BackendContract interface {
	ExecutePayment(ctx context.Context, paymentID, payerID, correlationID string) (*backend.WalletSnapshot, error)
}

// LedgerContract define the exactly-once gate.
type LedgerContract interface {
	TryBeginProcessing(ctx context.Context, paymentID string) bool
	ClearAfter(paymentID string, delay time.Duration)
	TryAnnounce(ctx context.Context, paymentID string) bool
}

// IntentContract define access to the pending and deferred intents.
type IntentContract interface {
	PaymentIntent(ctx context.Context) (*intent.PaymentIntent, error)
	ClearPaymentIntent(ctx context.Context) error
	ClearDeferred(ctx context.Context) error
}

// ReconcilerContract define the post-completion pull and deferred resume.
type ReconcilerContract interface {
	ReconcileAndResume(ctx context.Context) (string, error)
}

// NotifierContract define user-visible notices.
type NotifierContract interface {
	Notify(ctx context.Context, userID string, msg string)
	Warn(ctx context.Context, userID string, msg string)
}

// AuditContract define the completion trail.
type AuditContract interface {
	RecordCompletion(ctx context.Context, paymentID, outcome string)
}

type Result struct {
	State State
	// ResumeKitID is set when a deferred RESUME_RENTAL intent should be
	// picked back up after the wallet is authoritative again.
	ResumeKitID string
	// Message carries the backend's error verbatim on failure.
	Message string
}

// Service drives one returned payment to its terminal state. Steps within
// one payment id run strictly sequentially because the ledger gate is
// checked-and-set before the first await; independent payment ids are fully
// concurrent.
type Service struct {
	backend    BackendContract
	ledger     LedgerContract
	intents    IntentContract
	reconciler ReconcilerContract
	notifier   NotifierContract
	trail      AuditContract
	metrics    *observability.Metrics

	userID string
	// settleDelay absorbs backend eventual consistency between "payment
	// executed" and "wallet balance updated" before reconciling.
	settleDelay time.Duration
	// markerCooldown bounds how long the duplicate-return protection is
	// honored after a completed payment.
	markerCooldown time.Duration
}

func NewService(b BackendContract, l LedgerContract, i IntentContract, r ReconcilerContract, n NotifierContract, trail AuditContract, metrics *observability.Metrics, userID string, settleDelay, markerCooldown time.Duration) *Service {
	if settleDelay <= 0 {
		settleDelay = 1200 * time.Millisecond
	}
	if markerCooldown <= 0 {
		markerCooldown = 5 * time.Minute
	}
	return &Service{
		backend:        b,
		ledger:         l,
		intents:        i,
		reconciler:     r,
		notifier:       n,
		trail:          trail,
		metrics:        metrics,
		userID:         userID,
		settleDelay:    settleDelay,
		markerCooldown: markerCooldown,
	}
}

// Complete executes a successful gateway return exactly once per payment id
// per session. Calling it again for the same id, from a remount or a
// duplicate push of the return URL, is a SKIPPED no-op.
func (s *Service) Complete(ctx context.Context, paymentID, payerID string) (Result, error) {
	if !s.ledger.TryBeginProcessing(ctx, paymentID) {
		log.Printf("layer=service component=completion method=Complete payment_id=%s state=skipped", paymentID)
		if s.metrics != nil {
			s.metrics.DuplicateReturns.Inc()
		}
		return Result{State: StateSkipped}, nil
	}

	pi, err := s.intents.PaymentIntent(ctx)
	if err != nil || pi == nil || pi.PaymentID != paymentID {
		// the marker stays: retrying without a correlation id cannot succeed
		log.Printf("layer=service component=completion method=Complete payment_id=%s state=failed err=missing_intent", paymentID)
		s.countOutcome(StateFailed)
		s.record(ctx, paymentID, StateFailed)
		return Result{State: StateFailed, Message: "payment reference was lost, please start a new top-up"}, ErrMissingIntent
	}

	snapshot, execErr := s.backend.ExecutePayment(ctx, paymentID, payerID, pi.CorrelationID)
	_ = snapshot // the reconciling pull below is the authoritative source

	switch {
	case execErr == nil:
		return s.finishSuccess(ctx, paymentID, StateSucceeded)
	case backend.IsAlreadyCompleted(execErr):
		// legitimate when the in-memory marker was lost (new tab): treat as
		// success, announce at most once per payment id
		log.Printf("layer=service component=completion method=Complete payment_id=%s state=already_done", paymentID)
		return s.finishSuccess(ctx, paymentID, StateAlreadyDone)
	default:
		if cerr := s.intents.ClearPaymentIntent(ctx); cerr != nil {
			log.Printf("layer=service component=completion method=Complete payment_id=%s err=%v", paymentID, cerr)
		}
		// marker intentionally not cleared early: prevents a tight retry
		// loop against a likely-non-transient failure
		log.Printf("layer=service component=completion method=Complete payment_id=%s state=failed err=%v", paymentID, execErr)
		s.countOutcome(StateFailed)
		s.record(ctx, paymentID, StateFailed)
		return Result{State: StateFailed, Message: execErr.Error()}, errors.Join(ErrExecutionFailed, execErr)
	}
}

func (s *Service) finishSuccess(ctx context.Context, paymentID string, state State) (Result, error) {
	if err := s.intents.ClearPaymentIntent(ctx); err != nil {
		log.Printf("layer=service component=completion method=finishSuccess payment_id=%s err=%v", paymentID, err)
	}
	s.ledger.ClearAfter(paymentID, s.markerCooldown)
	s.countOutcome(state)
	s.record(ctx, paymentID, state)

	if s.ledger.TryAnnounce(ctx, paymentID) && s.notifier != nil {
		s.notifier.Notify(ctx, s.userID, "wallet top-up completed")
	}

	if err := s.settle(ctx); err != nil {
		return Result{State: state}, err
	}

	resumeKitID, err := s.reconciler.ReconcileAndResume(ctx)
	if err != nil {
		// the view was recovered by a full resync already; the completion
		// itself still succeeded
		return Result{State: state}, err
	}
	return Result{State: state, ResumeKitID: resumeKitID}, nil
}

func (s *Service) settle(ctx context.Context) error {
	t := time.NewTimer(s.settleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Cancel handles a user-cancelled gateway return: clear the pending intent
// and the deferred intent, warn, done. In-flight completions of other
// payment ids are untouched.
func (s *Service) Cancel(ctx context.Context) (Result, error) {
	cancelledID := ""
	if pi, err := s.intents.PaymentIntent(ctx); err == nil && pi != nil {
		cancelledID = pi.PaymentID
	}
	if err := s.intents.ClearPaymentIntent(ctx); err != nil {
		log.Printf("layer=service component=completion method=Cancel err=%v", err)
	}
	if err := s.intents.ClearDeferred(ctx); err != nil {
		log.Printf("layer=service component=completion method=Cancel err=%v", err)
	}
	s.countOutcome(StateCancelled)
	s.record(ctx, cancelledID, StateCancelled)
	if s.notifier != nil {
		s.notifier.Warn(ctx, s.userID, "wallet top-up was cancelled")
	}
	return Result{State: StateCancelled}, nil
}

func (s *Service) countOutcome(state State) {
	if s.metrics != nil {
		s.metrics.CompletionsTotal.WithLabelValues(string(state)).Inc()
	}
}

func (s *Service) record(ctx context.Context, paymentID string, state State) {
	if s.trail != nil {
		s.trail.RecordCompletion(ctx, paymentID, string(state))
	}
}

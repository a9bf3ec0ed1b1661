package reconcile

import (
	"context"
	"errors"
	"log"

	"labrent/internal/intent"
	"labrent/internal/readmodels"
	"labrent/kit/backend"
	"labrent/kit/observability"
)

// ErrReconciliationFailed means the authoritative pull after a completion
// did not land. The session view is recovered through a full resync instead
// of being left stale.
var ErrReconciliationFailed = errors.New("reconcile: reconciliation failed")

// BackendContract define the pull side used for reconciliation.
type BackendContract interface {
	GetWallet(ctx context.Context) (*backend.WalletSnapshot, error)
	GetTransactionHistory(ctx context.Context) ([]backend.Transaction, error)
}

// ViewContract define the replace entry point of the session view.
type ViewContract interface {
	ReplaceWallet(balance int64, txs []readmodels.TransactionRecord)
}

// IntentContract define deferred-intent consumption.
type IntentContract interface {
	TakeDeferred(ctx context.Context) (*intent.DeferredIntent, error)
}

// ResyncContract define the full-reload fallback.
type ResyncContract interface {
	Resync(ctx context.Context) error
}

type Service struct {
	backend BackendContract
	view    ViewContract
	intents IntentContract
	resync  ResyncContract
	metrics *observability.Metrics
}

func NewService(b BackendContract, view ViewContract, intents IntentContract, resync ResyncContract, metrics *observability.Metrics) *Service {
	return &Service{backend: b, view: view, intents: intents, resync: resync, metrics: metrics}
}

// Reconcile pulls wallet balance and the full transaction history and
// replaces the local view. Pull is authoritative: it reflects the backend's
// truth after a completion, so nothing is merged, the view is swapped.
func (s *Service) Reconcile(ctx context.Context) error {
	w, err := s.backend.GetWallet(ctx)
	if err != nil {
		return s.fail(ctx, "GetWallet", err)
	}
	txs, err := s.backend.GetTransactionHistory(ctx)
	if err != nil {
		return s.fail(ctx, "GetTransactionHistory", err)
	}

	s.view.ReplaceWallet(w.Balance, readmodels.FromBackendTransactions(txs))
	if s.metrics != nil {
		s.metrics.Reconciliations.Inc()
	}
	return nil
}

// ReconcileAndResume additionally consumes the deferred intent after the
// view is authoritative again. A RESUME_RENTAL intent hands the remembered
// kit id back to the caller, which re-enters the rental flow; the intent is
// gone after this regardless.
func (s *Service) ReconcileAndResume(ctx context.Context) (string, error) {
	if err := s.Reconcile(ctx); err != nil {
		return "", err
	}

	di, err := s.intents.TakeDeferred(ctx)
	if err != nil {
		log.Printf("layer=service component=reconcile method=ReconcileAndResume err=%v", err)
		return "", nil
	}
	if di != nil && di.Kind == intent.KindResumeRental {
		return di.KitID, nil
	}
	return "", nil
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	log.Printf("layer=service component=reconcile method=Reconcile op=%s err=%v", op, err)
	if s.resync != nil {
		if rerr := s.resync.Resync(ctx); rerr != nil {
			log.Printf("layer=service component=reconcile method=Reconcile op=resync err=%v", rerr)
		}
	}
	return errors.Join(ErrReconciliationFailed, err)
}

package recovery

import (
	"context"
	"errors"

	"labrent/internal/readmodels"
	"labrent/kit/backend"
	"labrent/kit/observability"
)

// BackendContract define the pulls a full resync performs.
type BackendContract interface {
	GetWallet(ctx context.Context) (*backend.WalletSnapshot, error)
	GetTransactionHistory(ctx context.Context) ([]backend.Transaction, error)
	GetBorrowRequestsByUser(ctx context.Context, userID string) ([]backend.BorrowRequest, error)
	GetNotifications(ctx context.Context) ([]backend.Notification, error)
}

// ViewContract define the replace surface of the session view.
type ViewContract interface {
	ReplaceWallet(balance int64, txs []readmodels.TransactionRecord)
	ReplaceBorrowRequests(list []readmodels.BorrowRequestRecord)
	ReplaceNotifications(list []readmodels.NotificationRecord)
}

// Service is the full-page-reload analog: re-pull every collection so the
// view is authoritative again. Used at session start and as the fallback
// when a targeted reconciliation fails.
type Service struct {
	backend BackendContract
	view    ViewContract
	userID  string
	logger  *observability.Logger
	metrics *observability.Metrics
}

func NewService(b BackendContract, view ViewContract, userID string, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{backend: b, view: view, userID: userID, logger: logger, metrics: metrics}
}

// Resync pulls everything it can and replaces what it got; partial failures
// are joined and reported, not swallowed.
func (s *Service) Resync(ctx context.Context) error {
	if s.metrics != nil {
		s.metrics.Resyncs.Inc()
	}

	var errs []error

	w, werr := s.backend.GetWallet(ctx)
	txs, terr := s.backend.GetTransactionHistory(ctx)
	if werr == nil && terr == nil {
		s.view.ReplaceWallet(w.Balance, readmodels.FromBackendTransactions(txs))
	} else {
		errs = append(errs, werr, terr)
	}

	if reqs, err := s.backend.GetBorrowRequestsByUser(ctx, s.userID); err == nil {
		s.view.ReplaceBorrowRequests(readmodels.FromBackendBorrowRequests(reqs))
	} else {
		errs = append(errs, err)
	}

	if list, err := s.backend.GetNotifications(ctx); err == nil {
		s.view.ReplaceNotifications(readmodels.FromBackendNotifications(list))
	} else {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil && s.logger != nil {
		s.logger.Error("resync incomplete", "user_id", s.userID, "error", err.Error())
	}
	return err
}

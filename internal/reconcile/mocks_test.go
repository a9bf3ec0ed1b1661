package reconcile

import (
	"context"

	"labrent/internal/intent"
	"labrent/internal/readmodels"
	"labrent/kit/backend"

	"github.com/stretchr/testify/mock"
)

type BackendMock struct {
	mock.Mock
	BackendContract
}

func (m *BackendMock) GetWallet(ctx context.Context) (*backend.WalletSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.WalletSnapshot), args.Error(1)
}

func (m *BackendMock) GetTransactionHistory(ctx context.Context) ([]backend.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.Transaction), args.Error(1)
}

type ViewMock struct {
	mock.Mock
	ViewContract
}

func (m *ViewMock) ReplaceWallet(balance int64, txs []readmodels.TransactionRecord) {
	m.Called(balance, txs)
}

type IntentMock struct {
	mock.Mock
	IntentContract
}

func (m *IntentMock) TakeDeferred(ctx context.Context) (*intent.DeferredIntent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intent.DeferredIntent), args.Error(1)
}

type ResyncMock struct {
	mock.Mock
	ResyncContract
}

func (m *ResyncMock) Resync(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

package completion

import (
	"context"
	"time"

	"labrent/internal/intent"
	"labrent/kit/backend"

	"github.com/stretchr/testify/mock"
)

type BackendMock struct {
	mock.Mock
	BackendContract
}

func (m *BackendMock) ExecutePayment(ctx context.Context, paymentID, payerID, correlationID string) (*backend.WalletSnapshot, error) {
	args := m.Called(ctx, paymentID, payerID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.WalletSnapshot), args.Error(1)
}

type LedgerMock struct {
	mock.Mock
	LedgerContract
}

func (m *LedgerMock) TryBeginProcessing(ctx context.Context, paymentID string) bool {
	args := m.Called(ctx, paymentID)
	return args.Bool(0)
}

func (m *LedgerMock) ClearAfter(paymentID string, delay time.Duration) {
	m.Called(paymentID, delay)
}

func (m *LedgerMock) TryAnnounce(ctx context.Context, paymentID string) bool {
	args := m.Called(ctx, paymentID)
	return args.Bool(0)
}

type IntentMock struct {
	mock.Mock
	IntentContract
}

func (m *IntentMock) PaymentIntent(ctx context.Context) (*intent.PaymentIntent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intent.PaymentIntent), args.Error(1)
}

func (m *IntentMock) ClearPaymentIntent(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *IntentMock) ClearDeferred(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type ReconcilerMock struct {
	mock.Mock
	ReconcilerContract
}

func (m *ReconcilerMock) ReconcileAndResume(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type NotifierMock struct {
	mock.Mock
	NotifierContract
}

func (m *NotifierMock) Notify(ctx context.Context, userID string, msg string) {
	m.Called(ctx, userID, msg)
}

func (m *NotifierMock) Warn(ctx context.Context, userID string, msg string) {
	m.Called(ctx, userID, msg)
}

type AuditMock struct {
	mock.Mock
	AuditContract
}

func (m *AuditMock) RecordCompletion(ctx context.Context, paymentID, outcome string) {
	m.Called(ctx, paymentID, outcome)
}

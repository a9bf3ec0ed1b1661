package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"labrent/internal/intent"
	"labrent/kit/backend"
	"labrent/kit/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReconcileService_Reconcile(t *testing.T) {
	ctx := context.Background()
	pullErr := errors.New("backend down")

	snapshot := &backend.WalletSnapshot{Balance: 4200}
	history := []backend.Transaction{
		{ID: "tx-2", Type: "CREDIT", Amount: 2500, CreatedAt: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "tx-1", Type: "DEBIT", Amount: 800, CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	var tests = []struct {
		name        string
		service     func() (*Service, *ViewMock, *ResyncMock)
		expectedErr error
		assertMocks func(t *testing.T, view *ViewMock, resync *ResyncMock)
	}{
		{
			name: "replaces the view from the pull",
			service: func() (*Service, *ViewMock, *ResyncMock) {
				b := new(BackendMock)
				b.On("GetWallet", ctx).Return(snapshot, nil)
				b.On("GetTransactionHistory", ctx).Return(history, nil)
				view := new(ViewMock)
				view.On("ReplaceWallet", int64(4200), mock.Anything).Return()
				resync := new(ResyncMock)
				return NewService(b, view, new(IntentMock), resync, testMetrics()), view, resync
			},
			assertMocks: func(t *testing.T, view *ViewMock, resync *ResyncMock) {
				view.AssertNumberOfCalls(t, "ReplaceWallet", 1)
				resync.AssertNotCalled(t, "Resync", mock.Anything)
			},
		},
		{
			name: "wallet pull failure triggers a full resync",
			service: func() (*Service, *ViewMock, *ResyncMock) {
				b := new(BackendMock)
				b.On("GetWallet", ctx).Return(nil, pullErr)
				view := new(ViewMock)
				resync := new(ResyncMock)
				resync.On("Resync", ctx).Return(nil)
				return NewService(b, view, new(IntentMock), resync, testMetrics()), view, resync
			},
			expectedErr: ErrReconciliationFailed,
			assertMocks: func(t *testing.T, view *ViewMock, resync *ResyncMock) {
				view.AssertNotCalled(t, "ReplaceWallet", mock.Anything, mock.Anything)
				resync.AssertNumberOfCalls(t, "Resync", 1)
			},
		},
		{
			name: "history pull failure triggers a full resync",
			service: func() (*Service, *ViewMock, *ResyncMock) {
				b := new(BackendMock)
				b.On("GetWallet", ctx).Return(snapshot, nil)
				b.On("GetTransactionHistory", ctx).Return(nil, pullErr)
				view := new(ViewMock)
				resync := new(ResyncMock)
				resync.On("Resync", ctx).Return(nil)
				return NewService(b, view, new(IntentMock), resync, testMetrics()), view, resync
			},
			expectedErr: ErrReconciliationFailed,
			assertMocks: func(t *testing.T, view *ViewMock, resync *ResyncMock) {
				view.AssertNotCalled(t, "ReplaceWallet", mock.Anything, mock.Anything)
				resync.AssertNumberOfCalls(t, "Resync", 1)
			},
		},
		{
			name: "a failing resync does not mask the pull error",
			service: func() (*Service, *ViewMock, *ResyncMock) {
				b := new(BackendMock)
				b.On("GetWallet", ctx).Return(nil, pullErr)
				view := new(ViewMock)
				resync := new(ResyncMock)
				resync.On("Resync", ctx).Return(errors.New("resync down too"))
				return NewService(b, view, new(IntentMock), resync, testMetrics()), view, resync
			},
			expectedErr: ErrReconciliationFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, view, resync := tt.service()
			err := svc.Reconcile(ctx)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				require.ErrorIs(t, err, pullErr)
			} else {
				require.NoError(t, err)
			}
			if tt.assertMocks != nil {
				tt.assertMocks(t, view, resync)
			}
		})
	}
}

func TestReconcileService_ReconcileAndResume(t *testing.T) {
	ctx := context.Background()

	pulls := func() *BackendMock {
		b := new(BackendMock)
		b.On("GetWallet", ctx).Return(&backend.WalletSnapshot{Balance: 100}, nil)
		b.On("GetTransactionHistory", ctx).Return([]backend.Transaction{}, nil)
		return b
	}

	var tests = []struct {
		name     string
		intents  func() *IntentMock
		expected string
	}{
		{
			name: "nothing deferred",
			intents: func() *IntentMock {
				im := new(IntentMock)
				im.On("TakeDeferred", ctx).Return(nil, nil)
				return im
			},
			expected: "",
		},
		{
			name: "resume rental hands back the kit id",
			intents: func() *IntentMock {
				im := new(IntentMock)
				im.On("TakeDeferred", ctx).Return(&intent.DeferredIntent{Kind: intent.KindResumeRental, KitID: "kit-7"}, nil)
				return im
			},
			expected: "kit-7",
		},
		{
			name: "unknown deferred kind is ignored",
			intents: func() *IntentMock {
				im := new(IntentMock)
				im.On("TakeDeferred", ctx).Return(&intent.DeferredIntent{Kind: "SOMETHING_ELSE", KitID: "kit-7"}, nil)
				return im
			},
			expected: "",
		},
		{
			name: "deferred lookup failure does not fail the reconcile",
			intents: func() *IntentMock {
				im := new(IntentMock)
				im.On("TakeDeferred", ctx).Return(nil, errors.New("store down"))
				return im
			},
			expected: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			view := new(ViewMock)
			view.On("ReplaceWallet", int64(100), mock.Anything).Return()
			svc := NewService(pulls(), view, tt.intents(), new(ResyncMock), testMetrics())

			kitID, err := svc.ReconcileAndResume(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.expected, kitID)
		})
	}
}

func TestReconcileService_ReconcileAndResume_PullFailureSkipsDeferred(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := new(BackendMock)
	b.On("GetWallet", ctx).Return(nil, errors.New("backend down"))
	im := new(IntentMock)
	resync := new(ResyncMock)
	resync.On("Resync", ctx).Return(nil)
	svc := NewService(b, new(ViewMock), im, resync, testMetrics())

	kitID, err := svc.ReconcileAndResume(ctx)
	require.ErrorIs(t, err, ErrReconciliationFailed)
	require.Empty(t, kitID)
	im.AssertNotCalled(t, "TakeDeferred", mock.Anything)
}

func testMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.NewRegistry())
}

package borrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"labrent/internal/readmodels"
	"labrent/kit/backend"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type backendMock struct {
	mock.Mock
	BackendContract
}

func (m *backendMock) GetBorrowRequestsByUser(ctx context.Context, userID string) ([]backend.BorrowRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.BorrowRequest), args.Error(1)
}

func (m *backendMock) CreateBorrowRequest(ctx context.Context, kitID string) (*backend.BorrowRequest, error) {
	args := m.Called(ctx, kitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.BorrowRequest), args.Error(1)
}

type viewMock struct {
	mock.Mock
	ViewContract
}

func (m *viewMock) ReplaceBorrowRequests(list []readmodels.BorrowRequestRecord) {
	m.Called(list)
}

func TestBorrowService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pullErr := errors.New("backend down")

	existing := func(status string) []backend.BorrowRequest {
		return []backend.BorrowRequest{{ID: "br-1", KitID: "kit-7", Status: status, CreatedAt: now}}
	}
	created := &backend.BorrowRequest{ID: "br-2", KitID: "kit-7", Status: readmodels.BorrowStatusPending, CreatedAt: now, UpdatedAt: now}

	var tests = []struct {
		name        string
		service     func() (*Service, *backendMock)
		expected    *readmodels.BorrowRequestRecord
		expectedErr error
		assertMocks func(t *testing.T, b *backendMock)
	}{
		{
			name: "pull failure blocks the attempt",
			service: func() (*Service, *backendMock) {
				b := new(backendMock)
				b.On("GetBorrowRequestsByUser", ctx, "u1").Return(nil, pullErr)
				return NewService(b, nil, "u1"), b
			},
			expectedErr: pullErr,
			assertMocks: func(t *testing.T, b *backendMock) {
				b.AssertNotCalled(t, "CreateBorrowRequest", mock.Anything, mock.Anything)
			},
		},
		{
			name: "open request for the same kit is rejected before any write",
			service: func() (*Service, *backendMock) {
				b := new(backendMock)
				b.On("GetBorrowRequestsByUser", ctx, "u1").Return(existing(readmodels.BorrowStatusPending), nil)
				view := new(viewMock)
				view.On("ReplaceBorrowRequests", mock.Anything).Return()
				return NewService(b, view, "u1"), b
			},
			expectedErr: ErrDuplicateRequest,
			assertMocks: func(t *testing.T, b *backendMock) {
				b.AssertNotCalled(t, "CreateBorrowRequest", mock.Anything, mock.Anything)
			},
		},
		{
			name: "in-progress rental of the same kit is rejected",
			service: func() (*Service, *backendMock) {
				b := new(backendMock)
				b.On("GetBorrowRequestsByUser", ctx, "u1").Return(existing(readmodels.BorrowStatusInProgress), nil)
				view := new(viewMock)
				view.On("ReplaceBorrowRequests", mock.Anything).Return()
				return NewService(b, view, "u1"), b
			},
			expectedErr: ErrDuplicateRequest,
		},
		{
			name: "returned request for the same kit does not block",
			service: func() (*Service, *backendMock) {
				b := new(backendMock)
				b.On("GetBorrowRequestsByUser", ctx, "u1").Return(existing(readmodels.BorrowStatusReturned), nil)
				b.On("CreateBorrowRequest", ctx, "kit-7").Return(created, nil)
				view := new(viewMock)
				view.On("ReplaceBorrowRequests", mock.Anything).Return()
				return NewService(b, view, "u1"), b
			},
			expected: &readmodels.BorrowRequestRecord{ID: "br-2", KitID: "kit-7", Status: readmodels.BorrowStatusPending, CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "open request for another kit does not block",
			service: func() (*Service, *backendMock) {
				b := new(backendMock)
				b.On("GetBorrowRequestsByUser", ctx, "u1").
					Return([]backend.BorrowRequest{{ID: "br-1", KitID: "kit-other", Status: readmodels.BorrowStatusPending, CreatedAt: now}}, nil)
				b.On("CreateBorrowRequest", ctx, "kit-7").Return(created, nil)
				view := new(viewMock)
				view.On("ReplaceBorrowRequests", mock.Anything).Return()
				return NewService(b, view, "u1"), b
			},
			expected: &readmodels.BorrowRequestRecord{ID: "br-2", KitID: "kit-7", Status: readmodels.BorrowStatusPending, CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "write failure is surfaced",
			service: func() (*Service, *backendMock) {
				b := new(backendMock)
				b.On("GetBorrowRequestsByUser", ctx, "u1").Return([]backend.BorrowRequest{}, nil)
				b.On("CreateBorrowRequest", ctx, "kit-7").Return(nil, pullErr)
				view := new(viewMock)
				view.On("ReplaceBorrowRequests", mock.Anything).Return()
				return NewService(b, view, "u1"), b
			},
			expectedErr: pullErr,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, b := tt.service()
			rec, err := svc.Create(ctx, "kit-7")
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				require.Nil(t, rec)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.expected, rec)
			}
			if tt.assertMocks != nil {
				tt.assertMocks(t, b)
			}
		})
	}
}

func TestDuplicateError_NamesTheConflict(t *testing.T) {
	t.Parallel()
	err := &DuplicateError{KitID: "kit-7", Status: readmodels.BorrowStatusBorrowed}
	require.ErrorIs(t, err, ErrDuplicateRequest)
	require.Contains(t, err.Error(), "kit-7")
	require.Contains(t, err.Error(), readmodels.BorrowStatusBorrowed)
}

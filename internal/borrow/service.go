package borrow

import (
	"context"
	"errors"
	"fmt"
	"log"

	"labrent/internal/readmodels"
	"labrent/kit/backend"
)

// ErrDuplicateRequest rejects a rental attempt for a kit the user already
// has an open request for. The check is optimistic: the backend remains the
// final authority.
var ErrDuplicateRequest = errors.New("borrow: duplicate rental request")

// DuplicateError names the conflicting request's status so the warning
// shown to the user is specific.
type DuplicateError struct {
	KitID  string
	Status string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("a rental request for kit %s already exists with status %s", e.KitID, e.Status)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateRequest }

// BackendContract define the borrow-request operations.
type BackendContract interface {
	GetBorrowRequestsByUser(ctx context.Context, userID string) ([]backend.BorrowRequest, error)
	CreateBorrowRequest(ctx context.Context, kitID string) (*backend.BorrowRequest, error)
}

// ViewContract define the replace entry point for the request collection.
type ViewContract interface {
	ReplaceBorrowRequests(list []readmodels.BorrowRequestRecord)
}

type Service struct {
	backend BackendContract
	view    ViewContract
	userID  string
}

func NewService(b BackendContract, view ViewContract, userID string) *Service {
	return &Service{backend: b, view: view, userID: userID}
}

// Create re-pulls the user's current requests first and rejects client-side
// before any network write when one for the same kit is still non-terminal.
func (s *Service) Create(ctx context.Context, kitID string) (*readmodels.BorrowRequestRecord, error) {
	reqs, err := s.backend.GetBorrowRequestsByUser(ctx, s.userID)
	if err != nil {
		log.Printf("layer=service component=borrow method=Create kit_id=%s err=%v", kitID, err)
		return nil, err
	}
	if s.view != nil {
		s.view.ReplaceBorrowRequests(readmodels.FromBackendBorrowRequests(reqs))
	}

	for _, r := range reqs {
		if r.KitID == kitID && readmodels.IsNonTerminalBorrowStatus(r.Status) {
			return nil, &DuplicateError{KitID: kitID, Status: r.Status}
		}
	}

	created, err := s.backend.CreateBorrowRequest(ctx, kitID)
	if err != nil {
		log.Printf("layer=service component=borrow method=Create kit_id=%s err=%v", kitID, err)
		return nil, err
	}
	rec := readmodels.BorrowRequestRecord{
		ID:        created.ID,
		KitID:     created.KitID,
		Status:    created.Status,
		CreatedAt: created.CreatedAt,
		UpdatedAt: created.UpdatedAt,
	}
	return &rec, nil
}

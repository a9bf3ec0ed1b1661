package readmodels

import "time"

type TransactionRecord struct {
	ID              string
	Type            string
	Amount          int64
	PreviousBalance *int64
	Status          string
	Description     string
	CreatedAt       time.Time
}

type NotificationRecord struct {
	ID        string
	Type      string
	SubType   string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

type PenaltyRecord struct {
	ID        string
	KitID     string
	Amount    int64
	Status    string
	Reason    string
	CreatedAt time.Time
}

type BorrowRequestRecord struct {
	ID        string
	KitID     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GroupMemberRecord struct {
	ID        string
	UserID    string
	Role      string
	Status    string
	CreatedAt time.Time
}

type WalletView struct {
	Balance   int64
	UpdatedAt time.Time
}

// Borrow request statuses. A request in a non-terminal status blocks a new
// rental of the same kit.
const (
	BorrowStatusPending    = "PENDING"
	BorrowStatusApproved   = "APPROVED"
	BorrowStatusBorrowed   = "BORROWED"
	BorrowStatusInProgress = "IN_PROGRESS"
	BorrowStatusRejected   = "REJECTED"
	BorrowStatusReturned   = "RETURNED"
)

func IsNonTerminalBorrowStatus(status string) bool {
	switch status {
	case BorrowStatusPending, BorrowStatusApproved, BorrowStatusBorrowed, BorrowStatusInProgress:
		return true
	}
	return false
}

package events

import "time"

// Push events, one per resource change. Names double as broker topics; the
// per-user wire subjects live in internal/live.

type NotificationCreated struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SubType   string    `json:"sub_type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (NotificationCreated) Name() string { return "notification.created" }

func (e NotificationCreated) PartitionKey() string { return e.ID }

type TransactionCreated struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Amount          int64     `json:"amount"`
	PreviousBalance *int64    `json:"previous_balance,omitempty"`
	Status          string    `json:"status"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

func (TransactionCreated) Name() string { return "wallet.transaction_created" }

func (e TransactionCreated) PartitionKey() string { return e.ID }

// BalanceUpdated carries only the number, not the composition of the change,
// so applying it is provisional until the next authoritative pull.
type BalanceUpdated struct {
	Balance int64     `json:"balance"`
	At      time.Time `json:"at"`
}

func (BalanceUpdated) Name() string { return "wallet.balance_updated" }

func (e BalanceUpdated) PartitionKey() string { return "wallet" }

type PenaltyUpserted struct {
	ID        string    `json:"id"`
	KitID     string    `json:"kit_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (PenaltyUpserted) Name() string { return "penalty.upserted" }

func (e PenaltyUpserted) PartitionKey() string { return e.ID }

type BorrowRequestUpserted struct {
	ID        string    `json:"id"`
	KitID     string    `json:"kit_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BorrowRequestUpserted) Name() string { return "borrow_request.upserted" }

func (e BorrowRequestUpserted) PartitionKey() string { return e.ID }

type GroupMemberUpserted struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (GroupMemberUpserted) Name() string { return "group.member_upserted" }

func (e GroupMemberUpserted) PartitionKey() string { return e.ID }

package backend

import "time"

// CreatePaymentResult is the gateway hand-off: the user's browser is sent to
// ApprovalURL and returns through the configured return/cancel URLs.
type CreatePaymentResult struct {
	ApprovalURL   string `json:"approval_url"`
	PaymentID     string `json:"payment_id"`
	CorrelationID string `json:"correlation_id"`
}

type WalletSnapshot struct {
	Balance      int64         `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Amount          int64     `json:"amount"`
	PreviousBalance *int64    `json:"previous_balance,omitempty"`
	Status          string    `json:"status"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

type BorrowRequest struct {
	ID        string    `json:"id"`
	KitID     string    `json:"kit_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SubType   string    `json:"sub_type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

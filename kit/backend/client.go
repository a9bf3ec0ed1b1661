package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the rental platform's REST backend. It carries no retry
// logic: a failed execution requires a new user-initiated top-up, and the
// only timeout on ExecutePayment is the transport's own.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Client{http: c}
}

type createPaymentReq struct {
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	ReturnURL   string `json:"return_url"`
	CancelURL   string `json:"cancel_url"`
}

func (c *Client) CreatePayment(ctx context.Context, amountMinor int64, description, returnURL, cancelURL string) (*CreatePaymentResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createPaymentReq{AmountMinor: amountMinor, Description: description, ReturnURL: returnURL, CancelURL: cancelURL}).
		Post("/payments")
	if err != nil {
		log.Printf("layer=client component=backend method=CreatePayment amount=%d err=%v", amountMinor, err)
		return nil, err
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Body())
	}

	body, err := unwrapObject(resp.Body())
	if err != nil {
		return nil, err
	}
	var out CreatePaymentResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	if out.PaymentID == "" || out.ApprovalURL == "" {
		return nil, fmt.Errorf("%w: create payment response missing payment_id or approval_url", ErrUnrecognizedPayload)
	}
	return &out, nil
}

type executePaymentReq struct {
	PaymentID     string `json:"payment_id"`
	PayerID       string `json:"payer_id"`
	CorrelationID string `json:"correlation_id"`
}

// ExecutePayment settles a returned payment. ErrAlreadyCompleted is a
// success path for the caller, not a failure.
func (c *Client) ExecutePayment(ctx context.Context, paymentID, payerID, correlationID string) (*WalletSnapshot, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(executePaymentReq{PaymentID: paymentID, PayerID: payerID, CorrelationID: correlationID}).
		Post("/payments/execute")
	if err != nil {
		log.Printf("layer=client component=backend method=ExecutePayment payment_id=%s err=%v", paymentID, err)
		return nil, err
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Body())
	}
	return parseWalletSnapshot(resp.Body())
}

func (c *Client) GetWallet(ctx context.Context) (*WalletSnapshot, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/wallet")
	if err != nil {
		log.Printf("layer=client component=backend method=GetWallet err=%v", err)
		return nil, err
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Body())
	}
	return parseWalletSnapshot(resp.Body())
}

func (c *Client) GetTransactionHistory(ctx context.Context) ([]Transaction, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/wallet/transactions")
	if err != nil {
		log.Printf("layer=client component=backend method=GetTransactionHistory err=%v", err)
		return nil, err
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Body())
	}
	body, err := unwrapArray(resp.Body())
	if err != nil {
		return nil, err
	}
	var out []Transaction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	return out, nil
}

func (c *Client) GetBorrowRequestsByUser(ctx context.Context, userID string) ([]BorrowRequest, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		Get("/borrow-requests")
	if err != nil {
		log.Printf("layer=client component=backend method=GetBorrowRequestsByUser user_id=%s err=%v", userID, err)
		return nil, err
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Body())
	}
	body, err := unwrapArray(resp.Body())
	if err != nil {
		return nil, err
	}
	var out []BorrowRequest
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	return out, nil
}

type createBorrowReq struct {
	KitID string `json:"kit_id"`
}

func (c *Client) CreateBorrowRequest(ctx context.Context, kitID string) (*BorrowRequest, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createBorrowReq{KitID: kitID}).
		Post("/borrow-requests")
	if err != nil {
		log.Printf("layer=client component=backend method=CreateBorrowRequest kit_id=%s err=%v", kitID, err)
		return nil, err
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Body())
	}
	body, err := unwrapObject(resp.Body())
	if err != nil {
		return nil, err
	}
	var out BorrowRequest
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	return &out, nil
}

func (c *Client) GetNotifications(ctx context.Context) ([]Notification, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/notifications")
	if err != nil {
		log.Printf("layer=client component=backend method=GetNotifications err=%v", err)
		return nil, err
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Body())
	}
	body, err := unwrapArray(resp.Body())
	if err != nil {
		return nil, err
	}
	var out []Notification
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	return out, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Post("/notifications/" + id + "/read")
	if err != nil {
		log.Printf("layer=client component=backend method=MarkNotificationRead id=%s err=%v", id, err)
		return err
	}
	if resp.IsError() {
		return parseAPIError(resp.StatusCode(), resp.Body())
	}
	return nil
}

func parseWalletSnapshot(raw []byte) (*WalletSnapshot, error) {
	body, err := unwrapObject(raw)
	if err != nil {
		return nil, err
	}
	var out WalletSnapshot
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	return &out, nil
}

// Ping is the health probe: any reachable response counts, backend errors
// included, since the check is about connectivity.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/wallet")
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 500 {
		return parseAPIError(resp.StatusCode(), resp.Body())
	}
	return nil
}

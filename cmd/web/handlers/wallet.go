package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"labrent/cmd/web/validator"
	"labrent/internal/completion"
	"labrent/internal/gatewayreturn"
	"labrent/internal/health"
	"labrent/internal/intent"
	"labrent/internal/readmodels"
	"labrent/kit/backend"
)

type WalletBackendContract interface {
	CreatePayment(ctx context.Context, amountMinor int64, description, returnURL, cancelURL string) (*backend.CreatePaymentResult, error)
}

type WalletIntentContract interface {
	SavePaymentIntent(ctx context.Context, pi intent.PaymentIntent) error
	SaveDeferred(ctx context.Context, di intent.DeferredIntent) error
}

type WalletCompletionContract interface {
	Complete(ctx context.Context, paymentID, payerID string) (completion.Result, error)
	Cancel(ctx context.Context) (completion.Result, error)
}

type WalletViewContract interface {
	Wallet() readmodels.WalletView
	Transactions() []readmodels.TransactionRecord
}

type WalletHealthContract interface {
	Check(ctx context.Context) health.Result
}

type Wallet struct {
	json       *validator.JSON
	backend    WalletBackendContract
	intents    WalletIntentContract
	completion WalletCompletionContract
	view       WalletViewContract
	health     WalletHealthContract
	returnURL  string
	cancelURL  string
}

func NewWallet(jsonV *validator.JSON, b WalletBackendContract, intents WalletIntentContract, c WalletCompletionContract, view WalletViewContract, healthSvc WalletHealthContract, returnURL, cancelURL string) *Wallet {
	return &Wallet{json: jsonV, backend: b, intents: intents, completion: c, view: view, health: healthSvc, returnURL: returnURL, cancelURL: cancelURL}
}

type topUpReq struct {
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	// ResumeKitID is set when the top-up was triggered from inside the
	// rental flow; that flow resumes after the payment completes.
	ResumeKitID string `json:"resume_kit_id"`
}

func (h *Wallet) TopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpReq
	if err := h.json.Decode(w, r, &req); err != nil {
		log.Printf("layer=handler component=wallet method=TopUp err=%v", err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.AmountMinor <= 0 {
		http.Error(w, "amount_minor must be positive", http.StatusBadRequest)
		return
	}
	if h.health != nil {
		res := h.health.Check(r.Context())
		if !res.OK {
			log.Printf("layer=handler component=wallet method=TopUp err=service_unavailable checks=%v", res.Checks)
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "down", "checks": res.Checks})
			return
		}
	}

	created, err := h.backend.CreatePayment(r.Context(), req.AmountMinor, req.Description, h.returnURL, h.cancelURL)
	if err != nil {
		log.Printf("layer=handler component=wallet method=TopUp amount=%d err=%v", req.AmountMinor, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	pi := intent.PaymentIntent{
		PaymentID:     created.PaymentID,
		CorrelationID: created.CorrelationID,
		QuotedAmount:  req.AmountMinor,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.intents.SavePaymentIntent(r.Context(), pi); err != nil {
		log.Printf("layer=handler component=wallet method=TopUp payment_id=%s err=%v", created.PaymentID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if req.ResumeKitID != "" {
		if err := h.intents.SaveDeferred(r.Context(), intent.DeferredIntent{Kind: intent.KindResumeRental, KitID: req.ResumeKitID}); err != nil {
			log.Printf("layer=handler component=wallet method=TopUp payment_id=%s err=%v", created.PaymentID, err)
		}
	}

	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"payment_id":   created.PaymentID,
		"approval_url": created.ApprovalURL,
	}); err != nil {
		log.Printf("layer=handler component=wallet method=TopUp payment_id=%s err=%v", created.PaymentID, err)
	}
}

// GatewayReturn lands the browser redirect coming back from the payment
// gateway. Serves both the return and the cancel paths; classification is
// the parser's job.
func (h *Wallet) GatewayReturn(w http.ResponseWriter, r *http.Request) {
	outcome := gatewayreturn.Parse(r.URL.Path, r.URL.Query())

	switch outcome.Kind {
	case gatewayreturn.KindNone:
		if err := json.NewEncoder(w).Encode(map[string]any{"status": "noop"}); err != nil {
			log.Printf("layer=handler component=wallet method=GatewayReturn err=%v", err)
		}
	case gatewayreturn.KindCancelled:
		res, _ := h.completion.Cancel(r.Context())
		if err := json.NewEncoder(w).Encode(map[string]any{"status": string(res.State)}); err != nil {
			log.Printf("layer=handler component=wallet method=GatewayReturn err=%v", err)
		}
	case gatewayreturn.KindSuccess:
		h.completeReturn(w, r, outcome)
	}
}

func (h *Wallet) completeReturn(w http.ResponseWriter, r *http.Request, outcome gatewayreturn.Outcome) {
	res, err := h.completion.Complete(r.Context(), outcome.PaymentID, outcome.PayerID)

	switch res.State {
	case completion.StateSkipped:
		if err := json.NewEncoder(w).Encode(map[string]any{"status": "skipped"}); err != nil {
			log.Printf("layer=handler component=wallet method=completeReturn payment_id=%s err=%v", outcome.PaymentID, err)
		}
	case completion.StateSucceeded, completion.StateAlreadyDone:
		if err != nil {
			// completion landed but the reconciling pull did not; the view
			// was already recovered by a resync
			log.Printf("layer=handler component=wallet method=completeReturn payment_id=%s err=%v", outcome.PaymentID, err)
		}
		if res.ResumeKitID != "" {
			http.Redirect(w, r, "/kits/"+res.ResumeKitID+"/rent", http.StatusSeeOther)
			return
		}
		wallet := h.view.Wallet()
		if encErr := json.NewEncoder(w).Encode(map[string]any{
			"status":  string(res.State),
			"balance": wallet.Balance,
		}); encErr != nil {
			log.Printf("layer=handler component=wallet method=completeReturn payment_id=%s err=%v", outcome.PaymentID, encErr)
		}
	case completion.StateFailed:
		log.Printf("layer=handler component=wallet method=completeReturn payment_id=%s err=%v", outcome.PaymentID, err)
		status := http.StatusBadGateway
		if errors.Is(err, completion.ErrMissingIntent) {
			status = http.StatusConflict
		}
		w.WriteHeader(status)
		if encErr := json.NewEncoder(w).Encode(map[string]any{
			"status":  "failed",
			"message": res.Message,
		}); encErr != nil {
			log.Printf("layer=handler component=wallet method=completeReturn payment_id=%s err=%v", outcome.PaymentID, encErr)
		}
	}
}

func (h *Wallet) Get(w http.ResponseWriter, r *http.Request) {
	wallet := h.view.Wallet()
	txs := h.view.Transactions()
	out := make([]map[string]any, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionJSON(t))
	}
	if err := json.NewEncoder(w).Encode(map[string]any{
		"balance":      wallet.Balance,
		"updated_at":   wallet.UpdatedAt,
		"transactions": out,
	}); err != nil {
		log.Printf("layer=handler component=wallet method=Get err=%v", err)
	}
}

func (h *Wallet) Transactions(w http.ResponseWriter, r *http.Request) {
	txs := h.view.Transactions()
	out := make([]map[string]any, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionJSON(t))
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("layer=handler component=wallet method=Transactions err=%v", err)
	}
}

func transactionJSON(t readmodels.TransactionRecord) map[string]any {
	m := map[string]any{
		"id":          t.ID,
		"type":        t.Type,
		"amount":      t.Amount,
		"status":      t.Status,
		"description": t.Description,
		"created_at":  t.CreatedAt,
	}
	if t.PreviousBalance != nil {
		m["previous_balance"] = *t.PreviousBalance
	}
	return m
}

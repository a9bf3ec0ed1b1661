package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"labrent/cmd/web/validator"
	"labrent/internal/borrow"
	"labrent/internal/readmodels"
)

type BorrowServiceContract interface {
	Create(ctx context.Context, kitID string) (*readmodels.BorrowRequestRecord, error)
}

type BorrowViewContract interface {
	BorrowRequests() []readmodels.BorrowRequestRecord
}

type Borrow struct {
	json    *validator.JSON
	service BorrowServiceContract
	view    BorrowViewContract
}

func NewBorrow(jsonV *validator.JSON, service BorrowServiceContract, view BorrowViewContract) *Borrow {
	return &Borrow{json: jsonV, service: service, view: view}
}

type createBorrowReq struct {
	KitID string `json:"kit_id"`
}

func (h *Borrow) Create(w http.ResponseWriter, r *http.Request) {
	var req createBorrowReq
	if err := h.json.Decode(w, r, &req); err != nil {
		log.Printf("layer=handler component=borrow method=Create err=%v", err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.KitID == "" {
		http.Error(w, "missing kit_id", http.StatusBadRequest)
		return
	}

	rec, err := h.service.Create(r.Context(), req.KitID)
	if err != nil {
		log.Printf("layer=handler component=borrow method=Create kit_id=%s err=%v", req.KitID, err)
		if errors.Is(err, borrow.ErrDuplicateRequest) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{"warning": err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(borrowRequestJSON(*rec)); err != nil {
		log.Printf("layer=handler component=borrow method=Create kit_id=%s err=%v", req.KitID, err)
	}
}

func (h *Borrow) List(w http.ResponseWriter, r *http.Request) {
	reqs := h.view.BorrowRequests()
	out := make([]map[string]any, 0, len(reqs))
	for _, rec := range reqs {
		out = append(out, borrowRequestJSON(rec))
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("layer=handler component=borrow method=List err=%v", err)
	}
}

func borrowRequestJSON(rec readmodels.BorrowRequestRecord) map[string]any {
	return map[string]any{
		"id":         rec.ID,
		"kit_id":     rec.KitID,
		"status":     rec.Status,
		"created_at": rec.CreatedAt,
		"updated_at": rec.UpdatedAt,
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"labrent/internal/readmodels"
)

type NotificationBackendContract interface {
	MarkNotificationRead(ctx context.Context, id string) error
}

type NotificationViewContract interface {
	Notifications() []readmodels.NotificationRecord
	MarkNotificationRead(id string) bool
}

type Notifications struct {
	backend NotificationBackendContract
	view    NotificationViewContract
}

func NewNotifications(b NotificationBackendContract, view NotificationViewContract) *Notifications {
	return &Notifications{backend: b, view: view}
}

func (h *Notifications) List(w http.ResponseWriter, r *http.Request) {
	list := h.view.Notifications()
	out := make([]map[string]any, 0, len(list))
	for _, n := range list {
		out = append(out, map[string]any{
			"id":         n.ID,
			"type":       n.Type,
			"sub_type":   n.SubType,
			"title":      n.Title,
			"message":    n.Message,
			"is_read":    n.IsRead,
			"created_at": n.CreatedAt,
		})
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("layer=handler component=notifications method=List err=%v", err)
	}
}

// MarkRead acknowledges one notification: isRead goes false to true, never
// back.
func (h *Notifications) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "missing notification id", http.StatusBadRequest)
		return
	}

	if err := h.backend.MarkNotificationRead(r.Context(), id); err != nil {
		log.Printf("layer=handler component=notifications method=MarkRead id=%s err=%v", id, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if !h.view.MarkNotificationRead(id) {
		// the push or pull path has not delivered it yet; the backend ack
		// stands and the next pull will carry the read flag
		log.Printf("layer=handler component=notifications method=MarkRead id=%s err=not_in_view", id)
	}

	w.WriteHeader(http.StatusNoContent)
}

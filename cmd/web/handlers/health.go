package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"labrent/internal/health"
)

type HealthServiceContract interface {
	Check(ctx context.Context) health.Result
}

type Health struct {
	service HealthServiceContract
}

func NewHealth(service HealthServiceContract) *Health {
	return &Health{service: service}
}

func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	res := h.service.Check(r.Context())
	status := "up"
	code := http.StatusOK
	if !res.OK {
		status = "down"
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]any{"status": status, "checks": res.Checks, "at": res.At}); err != nil {
		log.Printf("layer=handler component=health method=Check err=%v", err)
	}
}

package live

import (
	"context"
	"fmt"

	"labrent/internal/events"
	"labrent/kit/broker"
	"labrent/kit/observability"
)

// ReconcilerContract define the background pull triggered by a balance push.
type ReconcilerContract interface {
	Reconcile(ctx context.Context) error
}

// Handlers holds the bus handlers that do more than merge. The projector
// subscribes separately for the merge itself.
type Handlers struct {
	logger     *observability.Logger
	reconciler ReconcilerContract
}

func NewHandlers(logger *observability.Logger, reconciler ReconcilerContract) *Handlers {
	return &Handlers{logger: logger, reconciler: reconciler}
}

// HandleBalanceUpdated follows a pushed balance with an authoritative pull:
// the push payload carries only the number, so composite server-side
// updates (fee deductions alongside the credit) are not in it.
func (h *Handlers) HandleBalanceUpdated(ctx context.Context, evt broker.Event) error {
	e, ok := evt.(events.BalanceUpdated)
	if !ok {
		return fmt.Errorf("unexpected event type: %T", evt)
	}

	go func() {
		if err := h.reconciler.Reconcile(context.Background()); err != nil && h.logger != nil {
			h.logger.Error("balance follow-up pull failed", "balance", e.Balance, "error", err.Error())
		}
	}()
	return nil
}

package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"labrent/internal/events"
	"labrent/kit/broker"
	"labrent/kit/observability"
	"labrent/kit/push"
)

// Resource kinds carried by the push channel, one subscription each.
const (
	KindNotifications      = "notifications"
	KindWallet             = "wallet"
	KindWalletTransactions = "wallet-transactions"
	KindPenalties          = "penalties"
	KindBorrowRequests     = "borrow-requests"
	KindGroup              = "group"
)

// Channel owns the per-session push subscriptions. Each delivered message
// is decoded into its typed event and published on the in-process bus; the
// channel itself never buffers or replays, which is why every dependent
// screen also pulls on mount.
type Channel struct {
	transport push.Transport
	bus       *broker.Bus
	logger    *observability.Logger
	userID    string
	// groupID is empty for users without a group-scoped role; no group
	// subscription is opened then.
	groupID string

	mu   sync.Mutex
	subs []push.Subscription
}

func NewChannel(transport push.Transport, bus *broker.Bus, logger *observability.Logger, userID, groupID string) *Channel {
	return &Channel{transport: transport, bus: bus, logger: logger, userID: userID, groupID: groupID}
}

func userSubject(kind, userID string) string {
	return fmt.Sprintf("labrent.user.%s.%s", userID, kind)
}

func groupSubject(groupID string) string {
	return fmt.Sprintf("labrent.group.%s.members", groupID)
}

// Open subscribes every resource kind scoped to the user. Handles are owned
// by this channel and released on Close.
func (c *Channel) Open(ctx context.Context) error {
	type binding struct {
		subject string
		decode  func(data []byte) (broker.Event, error)
	}

	bindings := []binding{
		{userSubject(KindNotifications, c.userID), decodeInto[events.NotificationCreated]},
		{userSubject(KindWallet, c.userID), decodeInto[events.BalanceUpdated]},
		{userSubject(KindWalletTransactions, c.userID), decodeInto[events.TransactionCreated]},
		{userSubject(KindPenalties, c.userID), decodeInto[events.PenaltyUpserted]},
		{userSubject(KindBorrowRequests, c.userID), decodeInto[events.BorrowRequestUpserted]},
	}
	if c.groupID != "" {
		bindings = append(bindings, binding{groupSubject(c.groupID), decodeInto[events.GroupMemberUpserted]})
	}

	for _, b := range bindings {
		b := b
		sub, err := c.transport.Subscribe(b.subject, func(data []byte) {
			evt, err := b.decode(data)
			if err != nil {
				if c.logger != nil {
					c.logger.Error("push decode error", "subject", b.subject, "error", err.Error())
				}
				return
			}
			c.bus.Publish(context.Background(), evt)
		})
		if err != nil {
			c.Close()
			return fmt.Errorf("open subscription %s: %w", b.subject, err)
		}
		c.mu.Lock()
		c.subs = append(c.subs, sub)
		c.mu.Unlock()
	}
	return nil
}

// Close releases every subscription handle. The transport connection itself
// belongs to the caller and is torn down on logout.
func (c *Channel) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, s := range subs {
		if err := s.Unsubscribe(); err != nil && c.logger != nil {
			c.logger.Error("push unsubscribe error", "error", err.Error())
		}
	}
}

func decodeInto[E broker.Event](data []byte) (broker.Event, error) {
	var e E
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return e, nil
}

package readmodels

import (
	"context"
	"sort"
	"sync"
	"time"

	"labrent/internal/events"
	"labrent/kit/broker"
	"labrent/kit/observability"
)

// Projector is the single owner of the session view. Both delivery paths
// feed it: push events go through Apply, authoritative pulls go through the
// Replace methods. Screens only ever read copies. Merge rules keep every
// collection unique by id and sorted by creation time descending, and make
// Apply idempotent under event redelivery.
type Projector struct {
	mu sync.RWMutex

	wallet         WalletView
	transactions   []TransactionRecord
	notifications  []NotificationRecord
	penalties      []PenaltyRecord
	borrowRequests []BorrowRequestRecord
	groupMembers   []GroupMemberRecord

	metrics *observability.Metrics
}

func NewProjector(metrics *observability.Metrics) *Projector {
	return &Projector{metrics: metrics}
}

// Apply merges one push event. It is a broker.Handler so the live channel
// can subscribe it directly.
func (p *Projector) Apply(ctx context.Context, evt broker.Event) error {
	switch e := evt.(type) {
	case events.NotificationCreated:
		p.applyNotificationCreated(e)
	case events.TransactionCreated:
		p.applyTransactionCreated(e)
	case events.BalanceUpdated:
		p.applyBalanceUpdated(e)
	case events.PenaltyUpserted:
		p.applyPenaltyUpserted(e)
	case events.BorrowRequestUpserted:
		p.applyBorrowRequestUpserted(e)
	case events.GroupMemberUpserted:
		p.applyGroupMemberUpserted(e)
	default:
		return nil
	}
	return nil
}

func (p *Projector) applied(resource string) {
	if p.metrics != nil {
		p.metrics.PushEventsApplied.WithLabelValues(resource).Inc()
	}
}

func (p *Projector) deduped(resource string) {
	if p.metrics != nil {
		p.metrics.PushEventsDeduped.WithLabelValues(resource).Inc()
	}
}

// Append-only resources: a duplicate id is a no-op (the pull path may have
// captured the row first); a new row is inserted at the position that keeps
// newest-first order, not necessarily at index 0.
func (p *Projector) applyNotificationCreated(e events.NotificationCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.notifications {
		if n.ID == e.ID {
			p.deduped("notifications")
			return
		}
	}
	rec := NotificationRecord{ID: e.ID, Type: e.Type, SubType: e.SubType, Title: e.Title, Message: e.Message, IsRead: e.IsRead, CreatedAt: e.CreatedAt}
	p.notifications = insertNewestFirst(p.notifications, rec, func(r NotificationRecord) time.Time { return r.CreatedAt })
	p.applied("notifications")
}

func (p *Projector) applyTransactionCreated(e events.TransactionCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.transactions {
		if t.ID == e.ID {
			p.deduped("transactions")
			return
		}
	}
	rec := TransactionRecord{ID: e.ID, Type: e.Type, Amount: e.Amount, PreviousBalance: e.PreviousBalance, Status: e.Status, Description: e.Description, CreatedAt: e.CreatedAt}
	p.transactions = insertNewestFirst(p.transactions, rec, func(r TransactionRecord) time.Time { return r.CreatedAt })
	p.applied("transactions")
}

// The pushed balance is set immediately for responsiveness; the caller is
// expected to follow up with an authoritative pull, since the payload does
// not include composite server-side changes.
func (p *Projector) applyBalanceUpdated(e events.BalanceUpdated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wallet.Balance = e.Balance
	p.wallet.UpdatedAt = e.At
	p.applied("wallet")
}

// Upsert resources: an existing id is replaced in place (position preserved),
// a new entry is prepended and the collection re-sorted newest-first.
func (p *Projector) applyPenaltyUpserted(e events.PenaltyUpserted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := PenaltyRecord{ID: e.ID, KitID: e.KitID, Amount: e.Amount, Status: e.Status, Reason: e.Reason, CreatedAt: e.CreatedAt}
	for i, cur := range p.penalties {
		if cur.ID == e.ID {
			p.penalties[i] = rec
			p.applied("penalties")
			return
		}
	}
	p.penalties = append([]PenaltyRecord{rec}, p.penalties...)
	sort.SliceStable(p.penalties, func(i, j int) bool { return p.penalties[i].CreatedAt.After(p.penalties[j].CreatedAt) })
	p.applied("penalties")
}

func (p *Projector) applyBorrowRequestUpserted(e events.BorrowRequestUpserted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := BorrowRequestRecord{ID: e.ID, KitID: e.KitID, Status: e.Status, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
	for i, cur := range p.borrowRequests {
		if cur.ID == e.ID {
			p.borrowRequests[i] = rec
			p.applied("borrow_requests")
			return
		}
	}
	p.borrowRequests = append([]BorrowRequestRecord{rec}, p.borrowRequests...)
	sort.SliceStable(p.borrowRequests, func(i, j int) bool { return p.borrowRequests[i].CreatedAt.After(p.borrowRequests[j].CreatedAt) })
	p.applied("borrow_requests")
}

func (p *Projector) applyGroupMemberUpserted(e events.GroupMemberUpserted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := GroupMemberRecord{ID: e.ID, UserID: e.UserID, Role: e.Role, Status: e.Status, CreatedAt: e.CreatedAt}
	for i, cur := range p.groupMembers {
		if cur.ID == e.ID {
			p.groupMembers[i] = rec
			p.applied("group")
			return
		}
	}
	p.groupMembers = append([]GroupMemberRecord{rec}, p.groupMembers...)
	sort.SliceStable(p.groupMembers, func(i, j int) bool { return p.groupMembers[i].CreatedAt.After(p.groupMembers[j].CreatedAt) })
	p.applied("group")
}

// insertNewestFirst places rec before the first strictly older entry, which
// keeps existing relative order intact.
func insertNewestFirst[T any](list []T, rec T, createdAt func(T) time.Time) []T {
	at := createdAt(rec)
	idx := len(list)
	for i := range list {
		if createdAt(list[i]).Before(at) {
			idx = i
			break
		}
	}
	list = append(list, rec)
	copy(list[idx+1:], list[idx:])
	list[idx] = rec
	return list
}

// Replace operations: the pull path is authoritative and swaps the whole
// collection, normalized to newest-first.

func (p *Projector) ReplaceWallet(balance int64, txs []TransactionRecord) {
	sorted := append([]TransactionRecord(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	p.mu.Lock()
	p.wallet = WalletView{Balance: balance, UpdatedAt: time.Now().UTC()}
	p.transactions = sorted
	p.mu.Unlock()
}

func (p *Projector) ReplaceNotifications(list []NotificationRecord) {
	sorted := append([]NotificationRecord(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	p.mu.Lock()
	p.notifications = sorted
	p.mu.Unlock()
}

func (p *Projector) ReplaceBorrowRequests(list []BorrowRequestRecord) {
	sorted := append([]BorrowRequestRecord(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	p.mu.Lock()
	p.borrowRequests = sorted
	p.mu.Unlock()
}

func (p *Projector) ReplacePenalties(list []PenaltyRecord) {
	sorted := append([]PenaltyRecord(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	p.mu.Lock()
	p.penalties = sorted
	p.mu.Unlock()
}

func (p *Projector) ReplaceGroupMembers(list []GroupMemberRecord) {
	sorted := append([]GroupMemberRecord(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	p.mu.Lock()
	p.groupMembers = sorted
	p.mu.Unlock()
}

// MarkNotificationRead transitions isRead false to true; it never goes back.
func (p *Projector) MarkNotificationRead(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.notifications {
		if p.notifications[i].ID == id {
			p.notifications[i].IsRead = true
			return true
		}
	}
	return false
}

func (p *Projector) Wallet() WalletView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.wallet
}

func (p *Projector) Transactions() []TransactionRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]TransactionRecord(nil), p.transactions...)
}

func (p *Projector) Notifications() []NotificationRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]NotificationRecord(nil), p.notifications...)
}

func (p *Projector) Penalties() []PenaltyRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]PenaltyRecord(nil), p.penalties...)
}

func (p *Projector) BorrowRequests() []BorrowRequestRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]BorrowRequestRecord(nil), p.borrowRequests...)
}

func (p *Projector) GroupMembers() []GroupMemberRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]GroupMemberRecord(nil), p.groupMembers...)
}

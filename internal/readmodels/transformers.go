package readmodels

import "labrent/kit/backend"

func FromBackendTransactions(txs []backend.Transaction) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionRecord{
			ID:              t.ID,
			Type:            t.Type,
			Amount:          t.Amount,
			PreviousBalance: t.PreviousBalance,
			Status:          t.Status,
			Description:     t.Description,
			CreatedAt:       t.CreatedAt,
		})
	}
	return out
}

func FromBackendBorrowRequests(reqs []backend.BorrowRequest) []BorrowRequestRecord {
	out := make([]BorrowRequestRecord, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, BorrowRequestRecord{
			ID:        r.ID,
			KitID:     r.KitID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out
}

func FromBackendNotifications(list []backend.Notification) []NotificationRecord {
	out := make([]NotificationRecord, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationRecord{
			ID:        n.ID,
			Type:      n.Type,
			SubType:   n.SubType,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventNames(t *testing.T) {
	var tests = []struct {
		name     string
		evt      interface{ Name() string }
		expected string
	}{
		{name: "notification.created", evt: NotificationCreated{}, expected: "notification.created"},
		{name: "wallet.transaction_created", evt: TransactionCreated{}, expected: "wallet.transaction_created"},
		{name: "wallet.balance_updated", evt: BalanceUpdated{}, expected: "wallet.balance_updated"},
		{name: "penalty.upserted", evt: PenaltyUpserted{}, expected: "penalty.upserted"},
		{name: "borrow_request.upserted", evt: BorrowRequestUpserted{}, expected: "borrow_request.upserted"},
		{name: "group.member_upserted", evt: GroupMemberUpserted{}, expected: "group.member_upserted"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, tt.evt.Name())
		})
	}
}

func TestPartitionKeys(t *testing.T) {
	t.Parallel()
	require.Equal(t, "n1", NotificationCreated{ID: "n1"}.PartitionKey())
	require.Equal(t, "tx1", TransactionCreated{ID: "tx1"}.PartitionKey())
	require.Equal(t, "wallet", BalanceUpdated{}.PartitionKey())
}

package gatewayreturn

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	var tests = []struct {
		name     string
		path     string
		query    string
		expected Outcome
	}{
		{
			name:     "plain navigation is not a return",
			path:     "/wallet",
			query:    "",
			expected: Outcome{Kind: KindNone},
		},
		{
			name:     "success needs both params",
			path:     "/wallet/return",
			query:    "paymentId=PAY-1",
			expected: Outcome{Kind: KindNone},
		},
		{
			name:     "payer id alone is not a return",
			path:     "/wallet/return",
			query:    "PayerID=PL-1",
			expected: Outcome{Kind: KindNone},
		},
		{
			name:     "successful return",
			path:     "/wallet/return",
			query:    "paymentId=PAY-1&PayerID=PL-1&token=EC-9",
			expected: Outcome{Kind: KindSuccess, PaymentID: "PAY-1", PayerID: "PL-1"},
		},
		{
			name:     "cancel flag",
			path:     "/wallet/return",
			query:    "cancel=true",
			expected: Outcome{Kind: KindCancelled},
		},
		{
			name:     "cancel flag is case insensitive",
			path:     "/wallet/return",
			query:    "cancel=TRUE",
			expected: Outcome{Kind: KindCancelled},
		},
		{
			name:     "cancel path without flag",
			path:     "/wallet/cancel",
			query:    "token=EC-9",
			expected: Outcome{Kind: KindCancelled},
		},
		{
			name:     "cancel path with trailing slash",
			path:     "/wallet/cancel/",
			query:    "",
			expected: Outcome{Kind: KindCancelled},
		},
		{
			name:     "cancel wins over success params",
			path:     "/wallet/return",
			query:    "cancel=true&paymentId=PAY-1&PayerID=PL-1",
			expected: Outcome{Kind: KindCancelled},
		},
		{
			name:     "cancel false does not cancel",
			path:     "/wallet/return",
			query:    "cancel=false&paymentId=PAY-1&PayerID=PL-1",
			expected: Outcome{Kind: KindSuccess, PaymentID: "PAY-1", PayerID: "PL-1"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			require.Equal(t, tt.expected, Parse(tt.path, q))
		})
	}
}

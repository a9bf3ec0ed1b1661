package gatewayreturn

import (
	"net/url"
	"strings"
)

// Kind classifies a navigation: not a gateway return at all, a successful
// return, or a user cancel.
type Kind int

const (
	KindNone Kind = iota
	KindSuccess
	KindCancelled
)

type Outcome struct {
	Kind      Kind
	PaymentID string
	PayerID   string
}

const cancelPathMarker = "/wallet/cancel"

// Parse is pure classification of the current navigation; it never touches
// state. Cancellation takes priority over success parsing: an explicit
// cancel flag or the well-known cancel path wins even when success params
// are also present.
func Parse(path string, query url.Values) Outcome {
	if strings.EqualFold(query.Get("cancel"), "true") || hasCancelPath(path) {
		return Outcome{Kind: KindCancelled}
	}

	paymentID := query.Get("paymentId")
	payerID := query.Get("PayerID")
	if paymentID != "" && payerID != "" {
		return Outcome{Kind: KindSuccess, PaymentID: paymentID, PayerID: payerID}
	}

	return Outcome{Kind: KindNone}
}

func hasCancelPath(path string) bool {
	return strings.HasSuffix(strings.TrimSuffix(path, "/"), cancelPathMarker)
}

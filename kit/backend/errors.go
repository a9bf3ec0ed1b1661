package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyCompleted marks the legitimate "payment was already settled"
	// outcome. Detection prefers the structured code; the message match is
	// kept as the observed backend contract.
	ErrAlreadyCompleted = errors.New("backend: payment already completed")

	ErrUnrecognizedPayload = errors.New("backend: unrecognized payload shape")
)

func IsAlreadyCompleted(err error) bool { return errors.Is(err, ErrAlreadyCompleted) }

// APIError carries the backend's own context for a rejected call. Message is
// surfaced to the user verbatim, so it is extracted from the structured
// payload first and only falls back to raw text.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

const alreadyCompletedCode = "PAYMENT_ALREADY_DONE"

func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status, Message: extractMessage(body)}
	apiErr.Code = extractCode(body)

	if apiErr.Code == alreadyCompletedCode || messageSaysAlreadyDone(apiErr.Message) {
		return errors.Join(ErrAlreadyCompleted, apiErr)
	}
	return apiErr
}

func messageSaysAlreadyDone(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "already done") ||
		strings.Contains(m, "already been done") ||
		strings.Contains(m, "already completed")
}

// extractMessage tries the known structured shapes before giving up and
// returning the raw body, so a transport-level string never masks backend
// context.
func extractMessage(body []byte) string {
	var wrapped struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if wrapped.Message != "" {
			return wrapped.Message
		}
		if len(wrapped.Error) > 0 {
			var s string
			if err := json.Unmarshal(wrapped.Error, &s); err == nil && s != "" {
				return s
			}
			var inner struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(wrapped.Error, &inner); err == nil && inner.Message != "" {
				return inner.Message
			}
		}
	}
	return strings.TrimSpace(string(body))
}

func extractCode(body []byte) string {
	var wrapped struct {
		Code  string `json:"code"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if wrapped.Code != "" {
			return wrapped.Code
		}
		return wrapped.Error.Code
	}
	return ""
}

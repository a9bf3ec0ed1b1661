package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The backend wraps payloads inconsistently: sometimes {"data": ...},
// sometimes the bare value. Each resource parse goes through exactly one of
// these, and an unknown shape fails loudly instead of defaulting to empty.

func unwrapObject(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnrecognizedPayload)
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected object, got %q", ErrUnrecognizedPayload, previewOf(trimmed))
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	inner := bytes.TrimSpace(wrapped.Data)
	if len(inner) > 0 && inner[0] == '{' {
		return inner, nil
	}
	return trimmed, nil
}

func unwrapArray(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnrecognizedPayload)
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected array, got %q", ErrUnrecognizedPayload, previewOf(trimmed))
	}
	var wrapped struct {
		Data  json.RawMessage `json:"data"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}
	for _, candidate := range []json.RawMessage{wrapped.Data, wrapped.Items} {
		inner := bytes.TrimSpace(candidate)
		if len(inner) > 0 && inner[0] == '[' {
			return inner, nil
		}
	}
	return nil, fmt.Errorf("%w: no array found in object", ErrUnrecognizedPayload)
}

func previewOf(b []byte) string {
	const max = 32
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

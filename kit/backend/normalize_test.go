package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnwrapObject(t *testing.T) {
	var tests = []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{name: "bare object", raw: `{"balance":100}`, expected: `{"balance":100}`},
		{name: "data-wrapped object", raw: `{"data":{"balance":100}}`, expected: `{"balance":100}`},
		{name: "data holding a non-object falls back to the whole body", raw: `{"data":42,"balance":100}`, expected: `{"data":42,"balance":100}`},
		{name: "leading whitespace", raw: "\n\t {\"balance\":100}", expected: `{"balance":100}`},
		{name: "empty body", raw: "", expectErr: true},
		{name: "array where object expected", raw: `[1,2]`, expectErr: true},
		{name: "plain text", raw: "Internal Server Error", expectErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := unwrapObject([]byte(tt.raw))
			if tt.expectErr {
				require.ErrorIs(t, err, ErrUnrecognizedPayload)
				return
			}
			require.NoError(t, err)
			require.JSONEq(t, tt.expected, string(got))
		})
	}
}

func TestUnwrapArray(t *testing.T) {
	var tests = []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{name: "bare array", raw: `[{"id":"a"}]`, expected: `[{"id":"a"}]`},
		{name: "data array", raw: `{"data":[{"id":"a"}]}`, expected: `[{"id":"a"}]`},
		{name: "items array", raw: `{"items":[{"id":"a"}]}`, expected: `[{"id":"a"}]`},
		{name: "data preferred over items", raw: `{"data":[1],"items":[2]}`, expected: `[1]`},
		{name: "empty body", raw: "", expectErr: true},
		{name: "object without an array", raw: `{"total":3}`, expectErr: true},
		{name: "plain text", raw: "nope", expectErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := unwrapArray([]byte(tt.raw))
			if tt.expectErr {
				require.ErrorIs(t, err, ErrUnrecognizedPayload)
				return
			}
			require.NoError(t, err)
			require.JSONEq(t, tt.expected, string(got))
		})
	}
}

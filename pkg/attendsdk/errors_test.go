package attendsdk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty body", body: "", want: "Unknown error"},
		{name: "whitespace body", body: "  \n", want: "Unknown error"},
		{name: "error field", body: `{"error":"Invalid credentials"}`, want: "Invalid credentials"},
		{name: "errors list", body: `{"errors":["a","b"]}`, want: "a, b"},
		{name: "error wins over errors", body: `{"error":"x","errors":["y"]}`, want: "x"},
		{name: "empty error falls through to errors", body: `{"error":"","errors":["y"]}`, want: "y"},
		{name: "empty errors list gives raw body", body: `{"errors":[]}`, want: `{"errors":[]}`},
		{name: "unrelated object gives raw body", body: `{"message":"nope"}`, want: `{"message":"nope"}`},
		{name: "plain text", body: "Internal Server Error", want: "Internal Server Error"},
		{name: "wrong field type", body: `{"error":42}`, want: `{"error":42}`},
		{name: "json array", body: `["a"]`, want: `["a"]`},
		{name: "truncated json", body: `{"error":"x`, want: `{"error":"x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ErrorMessage([]byte(tt.body)))
		})
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	t.Run("error is the normalized message", func(t *testing.T) {
		err := &APIError{StatusCode: 401, Body: []byte(`{"error":"Invalid credentials"}`)}
		require.Equal(t, "Invalid credentials", err.Error())
		require.Equal(t, `{"error":"Invalid credentials"}`, err.RawBody())
		require.Equal(t, "HTTP 401: Invalid credentials", err.String())
	})

	t.Run("no body", func(t *testing.T) {
		err := &APIError{StatusCode: 502}
		require.Equal(t, UnknownErrorMessage, err.Error())
		require.Empty(t, err.RawBody())
	})
}

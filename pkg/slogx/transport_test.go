package slogx_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/stepattend/pkg/idx"
	"github.com/aussiebroadwan/stepattend/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestTransportAddsRequestID(t *testing.T) {
	t.Parallel()

	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get(slogx.RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: slogx.Transport(nil, logger)}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/user/profile", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	_, err = idx.Parse(<-seen)
	require.NoError(t, err, "request id should be a ULID")
	require.Empty(t, req.Header.Get(slogx.RequestIDHeader), "caller request must not be mutated")

	out := buf.String()
	require.Contains(t, out, "http_request")
	require.Contains(t, out, "path=/api/user/profile")
	require.Contains(t, out, "status=204")
}

func TestTransportKeepsCallerRequestID(t *testing.T) {
	t.Parallel()

	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get(slogx.RequestIDHeader)
	}))
	defer srv.Close()

	client := &http.Client{Transport: slogx.Transport(nil, slogx.Discard())}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(slogx.RequestIDHeader, "caller-id")

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Equal(t, "caller-id", <-seen)
}

func TestNewFormats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "attendctl", Format: "json", Level: "info", Output: &buf})
	logger.Info("hello")
	require.True(t, strings.HasPrefix(buf.String(), "{"))
	require.Contains(t, buf.String(), `"service":"attendctl"`)

	buf.Reset()
	logger = slogx.New(slogx.Config{Service: "attendctl", Level: "warn", Output: &buf})
	logger.Info("dropped")
	require.Empty(t, buf.String())
}

func TestTransportTagsOperation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	send := func(t *testing.T, transportLogger *slog.Logger, ctx context.Context) {
		t.Helper()
		client := &http.Client{Transport: slogx.Transport(nil, transportLogger)}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/api/auth/login", nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	t.Run("explicit logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		send(t, logger, slogx.WithOperation(context.Background(), "login"))
		require.Contains(t, buf.String(), "op=login")
		require.Equal(t, 1, strings.Count(buf.String(), "op="))
	})

	t.Run("context logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		ctx := slogx.WithOperation(slogx.WithContext(context.Background(), logger), "verify_mfa")

		send(t, nil, ctx)
		require.Contains(t, buf.String(), "op=verify_mfa")
		require.Equal(t, 1, strings.Count(buf.String(), "op="))
	})

	t.Run("no operation", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		send(t, logger, context.Background())
		require.Contains(t, buf.String(), "http_request")
		require.NotContains(t, buf.String(), "op=")
	})
}

func TestOperation(t *testing.T) {
	t.Parallel()

	require.Empty(t, slogx.Operation(context.Background()))
	require.Equal(t, "register", slogx.Operation(slogx.WithOperation(context.Background(), "register")))
}

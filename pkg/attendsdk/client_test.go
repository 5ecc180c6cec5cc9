package attendsdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/stepattend/pkg/slogx"
	"github.com/stretchr/testify/require"
)

// mutableTokens is a TokenSource the test can change between requests.
type mutableTokens struct {
	mu    sync.Mutex
	token string
}

func (m *mutableTokens) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *mutableTokens) set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithLogger(slogx.Discard())}, opts...)
	return NewClient(srv.URL+"/", tokens, opts...)
}

func TestBearerHeaderIsReadPerRequest(t *testing.T) {
	t.Parallel()

	headers := make(chan string, 3)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"user":{"id":"u1"}}`)
	})

	tokens := &mutableTokens{}
	client := newTestClient(t, handler, tokens)
	ctx := context.Background()

	_, err := client.GetProfile(ctx)
	require.NoError(t, err)
	require.Empty(t, <-headers, "no token means no header")

	tokens.set("T1")
	_, err = client.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "Bearer T1", <-headers)

	tokens.set("T2")
	_, err = client.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "Bearer T2", <-headers)
}

func TestNilTokenSourceSendsNoHeader(t *testing.T) {
	t.Parallel()

	headers := make(chan []string, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Values("Authorization")
		_, _ = io.WriteString(w, `[]`)
	})

	client := newTestClient(t, handler, nil)
	_, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Empty(t, <-headers)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("first step omits otp", func(t *testing.T) {
		bodies := make(chan map[string]any, 1)
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["_method"] = r.Method
			body["_path"] = r.URL.Path
			body["_contentType"] = r.Header.Get("Content-Type")
			bodies <- body
			_, _ = io.WriteString(w, `{"message":"MFA required"}`)
		})

		client := newTestClient(t, handler, nil)
		resp, err := client.Login(context.Background(), LoginRequest{Username: "alice", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, MFARequiredMessage, resp.Message)
		require.Empty(t, resp.AccessToken)

		body := <-bodies
		require.Equal(t, http.MethodPost, body["_method"])
		require.Equal(t, "/api/auth/login", body["_path"])
		require.Equal(t, "application/json", body["_contentType"])
		require.Equal(t, "alice", body["username"])
		require.Equal(t, "pw", body["password"])
		_, hasOTP := body["otp"]
		require.False(t, hasOTP)
	})

	t.Run("token response", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"accessToken":"T","user":{"id":"1","fullName":"Alice","role":"TEACHER"}}`)
		})

		client := newTestClient(t, handler, nil)
		resp, err := client.Login(context.Background(), LoginRequest{Username: "alice", Password: "pw", OTP: "123456"})
		require.NoError(t, err)
		require.Equal(t, "T", resp.AccessToken)
		require.NotNil(t, resp.User)
		require.Equal(t, "Alice", resp.User.FullName)
		require.Equal(t, "TEACHER", resp.User.Role)
	})

	t.Run("non-2xx is an APIError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Invalid credentials"}`)
		})

		client := newTestClient(t, handler, nil)
		_, err := client.Login(context.Background(), LoginRequest{Username: "alice", Password: "bad"})
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Invalid credentials", apiErr.Error())
	})

	t.Run("undecodable 2xx body", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>`)
		})

		client := newTestClient(t, handler, nil)
		_, err := client.Login(context.Background(), LoginRequest{Username: "alice", Password: "pw"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to decode response")

		var apiErr *APIError
		require.False(t, errors.As(err, &apiErr))
	})
}

func TestTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, nil, WithLogger(slogx.Discard()))
	_, err := client.Register(context.Background(), RegisterRequest{Username: "a", Password: "secret1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to send request")
}

func TestTeacherCoursesAreUnwrapped(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/teacher/courses" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `[{"course":{"id":"c1","code":"CS101"}},{"course":{"id":"c2","code":"CS102"}}]`)
	})

	client := newTestClient(t, handler, nil)
	courses, err := client.ListTeacherCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, "CS101", courses[0].Code)
	require.Equal(t, "c2", courses[1].ID)
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	t.Parallel()

	paths := make(chan string, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, handler, nil)
	require.NoError(t, client.DeleteAttendance(context.Background(), "a/b"))
	require.Equal(t, "/api/attendance/a%2Fb", <-paths)
}

func TestMarkBatchAttendance(t *testing.T) {
	t.Parallel()

	bodies := make(chan BatchAttendanceRequest, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/teacher/courses/c1/attendance" {
			http.NotFound(w, r)
			return
		}
		var req BatchAttendanceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		bodies <- req
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	})

	client := newTestClient(t, handler, nil)
	err := client.MarkBatchAttendance(context.Background(), "c1", BatchAttendanceRequest{
		ScheduleID: "s1",
		AttendanceRecords: []BatchAttendanceRecord{
			{StudentID: "st1", Status: StatusPresent},
			{StudentID: "st2", Status: StatusLate, Notes: "bus"},
		},
	})
	require.NoError(t, err)

	got := <-bodies
	require.Equal(t, "s1", got.ScheduleID)
	require.Len(t, got.AttendanceRecords, 2)
	require.Equal(t, StatusLate, got.AttendanceRecords[1].Status)
}

func TestRateLimitDelaysRequests(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// 20 rps with burst 1: the third request waits for at least two refills.
	client := newTestClient(t, handler, nil, WithRateLimit(20, 1))
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, client.DeleteCourse(ctx, "c1"))
	}
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, handler, nil, WithRateLimit(0.001, 1))
	require.NoError(t, client.DeleteCourse(context.Background(), "c1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.DeleteCourse(ctx, "c1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to send request")
}

package authflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/stepattend/internal/attend/session"
	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
	"github.com/aussiebroadwan/stepattend/pkg/slogx"
)

// RegisterAPI is the part of attendsdk.Client the Registrar needs.
type RegisterAPI interface {
	LoginAPI
	Register(ctx context.Context, req attendsdk.RegisterRequest) (*attendsdk.RegisterResponse, error)
}

// RegisterState is what a registration screen renders.
type RegisterState struct {
	Loading         bool
	ErrorMessage    string
	RegisterSuccess bool
}

// DefaultRegisterLoginDelay is the pause between a successful register and
// the automatic login.
const DefaultRegisterLoginDelay = 500 * time.Millisecond

// Registrar creates an account and then signs into it.
type Registrar struct {
	// Delay is waited between register and login. Zero skips the wait.
	Delay time.Duration

	api    RegisterAPI
	store  session.Store
	logger *slog.Logger

	mu    sync.Mutex
	state RegisterState
}

// NewRegistrar creates a Registrar with DefaultRegisterLoginDelay. A nil
// logger uses slog.Default().
func NewRegistrar(api RegisterAPI, store session.Store, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{
		Delay:  DefaultRegisterLoginDelay,
		api:    api,
		store:  store,
		logger: logger.With("component", "authflow.register"),
	}
}

// RegisterAndLogin validates input, registers, waits Delay, then logs in with
// the same credentials and persists the session.
func (r *Registrar) RegisterAndLogin(ctx context.Context, username, password string) RegisterState {
	ctx = slogx.WithOperation(ctx, "register")
	if isBlank(username) || isBlank(password) {
		return r.update(func(s *RegisterState) { s.ErrorMessage = MsgBlankCredentials })
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return r.update(func(s *RegisterState) { s.ErrorMessage = MsgPasswordTooShort })
	}

	r.update(func(s *RegisterState) {
		s.Loading = true
		s.ErrorMessage = ""
	})

	if _, err := r.api.Register(ctx, attendsdk.RegisterRequest{Username: username, Password: password}); err != nil {
		r.logger.Debug("register_failed", "error", err)
		return r.fail(rawOr(err, MsgRegisterFailed))
	}

	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return r.fail(failureMessage(ctx.Err()))
		}
	}

	resp, err := r.api.Login(ctx, attendsdk.LoginRequest{Username: username, Password: password})
	if err != nil {
		r.logger.Debug("auto_login_failed", "error", err)
		return r.fail(rawOr(err, MsgAutoLoginFailed))
	}

	switch {
	case resp == nil:
		return r.fail(MsgNoAccessToken)
	case resp.Error != "":
		return r.fail(resp.Error)
	case resp.AccessToken == "":
		return r.fail(MsgNoAccessToken)
	}

	var name, role string
	if resp.User != nil {
		name, role = resp.User.FullName, resp.User.Role
	}
	// Role is persisted alongside token and name, so a freshly registered
	// session routes on the role the server assigned.
	session.Persist(r.store, resp.AccessToken, name, role)
	r.logger.Info("registered", "role", session.ParseRole(role))

	return r.update(func(s *RegisterState) {
		s.Loading = false
		s.RegisterSuccess = true
	})
}

// ClearError dismisses the current error message.
func (r *Registrar) ClearError() RegisterState {
	return r.update(func(s *RegisterState) { s.ErrorMessage = "" })
}

// State returns the current state.
func (r *Registrar) State() RegisterState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Registrar) fail(msg string) RegisterState {
	return r.update(func(s *RegisterState) {
		s.Loading = false
		s.ErrorMessage = msg
	})
}

func (r *Registrar) update(fn func(*RegisterState)) RegisterState {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.state
	fn(&next)
	r.state = next
	return next
}

// rawOr returns the raw body of a non-2xx response, or fallback when the body
// is empty. Transport failures use their own message.
func rawOr(err error, fallback string) string {
	var apiErr *attendsdk.APIError
	if errors.As(err, &apiErr) {
		if body := apiErr.RawBody(); body != "" {
			return body
		}
		return fallback
	}
	return failureMessage(err)
}

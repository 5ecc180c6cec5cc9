package authflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/aussiebroadwan/stepattend/internal/attend/session"
	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
	"github.com/aussiebroadwan/stepattend/pkg/slogx"
)

// LoginAPI is the part of attendsdk.Client the Machine needs.
type LoginAPI interface {
	Login(ctx context.Context, req attendsdk.LoginRequest) (*attendsdk.AuthResponse, error)
}

// LoginState is what a login screen renders. ErrorMessage == "" means no error.
type LoginState struct {
	Loading      bool
	ErrorMessage string
	LoginSuccess bool
	RequiresMFA  bool
}

// credentials are held between the password step and the MFA step. They are
// never persisted.
type credentials struct {
	username string
	password string
}

func (c credentials) empty() bool {
	return c.username == "" && c.password == ""
}

// Machine is the login state machine:
//
//	Idle -> Authenticating -> MfaPending | Authenticated | Failed
//	MfaPending -> Authenticating (VerifyMFA) -> Authenticated | Failed
//	MfaPending -> Idle (CancelMFA)
//
// Every method blocks until its transition is complete and returns the
// resulting state. Overlapping calls are safe; whichever finishes last
// decides the final state.
type Machine struct {
	api    LoginAPI
	store  session.Store
	logger *slog.Logger

	mu       sync.Mutex
	state    LoginState
	pending  credentials
	watchers map[chan LoginState]struct{}
}

// NewMachine creates a Machine in the Idle state. A nil logger uses slog.Default().
func NewMachine(api LoginAPI, store session.Store, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		api:      api,
		store:    store,
		logger:   logger.With("component", "authflow.login"),
		watchers: make(map[chan LoginState]struct{}),
	}
}

// Login runs the password step. Blank (including whitespace-only) input fails
// locally without a request.
func (m *Machine) Login(ctx context.Context, username, password string) LoginState {
	ctx = slogx.WithOperation(ctx, "login")
	if isBlank(username) || isBlank(password) {
		return m.update(func(s *LoginState) {
			s.ErrorMessage = MsgBlankCredentials
		})
	}

	m.mu.Lock()
	m.pending = credentials{username: username, password: password}
	m.setLocked(func(s *LoginState) {
		s.Loading = true
		s.ErrorMessage = ""
		s.RequiresMFA = false
	})
	m.mu.Unlock()

	resp, err := m.api.Login(ctx, attendsdk.LoginRequest{Username: username, Password: password})
	out := interpretLogin(resp, err)
	m.logger.Debug("login_attempt", "outcome", out.Kind.String(), "status", out.StatusCode)

	switch out.Kind {
	case OutcomeMFARequired:
		return m.update(func(s *LoginState) {
			s.Loading = false
			s.RequiresMFA = true
		})

	case OutcomeSuccess:
		m.persist(out)
		return m.finish(func(s *LoginState) {
			s.Loading = false
			s.LoginSuccess = true
		})

	default:
		return m.update(func(s *LoginState) {
			s.Loading = false
			s.ErrorMessage = out.Message
		})
	}
}

// VerifyMFA resends the pending credentials with code. On failure
// RequiresMFA stays set so the user can try another code.
func (m *Machine) VerifyMFA(ctx context.Context, code string) LoginState {
	ctx = slogx.WithOperation(ctx, "verify_mfa")
	m.mu.Lock()
	creds := m.pending
	if creds.empty() {
		st := m.setLocked(func(s *LoginState) {
			s.Loading = false
			s.ErrorMessage = MsgNoLoginInProgress
		})
		m.mu.Unlock()
		return st
	}
	m.setLocked(func(s *LoginState) {
		s.Loading = true
		s.ErrorMessage = ""
	})
	m.mu.Unlock()

	resp, err := m.api.Login(ctx, attendsdk.LoginRequest{
		Username: creds.username,
		Password: creds.password,
		OTP:      code,
	})
	out := interpretLogin(resp, err)
	switch out.Kind {
	case OutcomeMFARequired, OutcomeProtocolMismatch:
		// A 2xx without a token has no error body to normalize, so the
		// message is the normalizer's empty-body text, not the login diagnostic.
		out = Outcome{Kind: OutcomeProtocolMismatch, Message: attendsdk.ErrorMessage(nil)}
	}
	m.logger.Debug("mfa_attempt", "outcome", out.Kind.String(), "status", out.StatusCode)

	if out.Kind == OutcomeSuccess {
		m.persist(out)
		return m.finish(func(s *LoginState) {
			s.Loading = false
			s.LoginSuccess = true
			s.RequiresMFA = false
		})
	}

	return m.update(func(s *LoginState) {
		s.Loading = false
		s.ErrorMessage = out.Message
	})
}

// CancelMFA abandons the challenge and forgets the pending credentials. A
// request already in flight is not cancelled.
func (m *Machine) CancelMFA() LoginState {
	return m.finish(func(s *LoginState) {
		s.RequiresMFA = false
		s.ErrorMessage = ""
	})
}

// Logout clears the persisted session and resets to Idle.
func (m *Machine) Logout() LoginState {
	m.store.Clear()
	m.logger.Info("logged_out")
	return m.finish(func(s *LoginState) {
		*s = LoginState{}
	})
}

// State returns the current state.
func (m *Machine) State() LoginState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Watch streams state snapshots, starting with the current one. A slow
// reader only ever sees the latest value. The channel is closed once ctx is
// done.
func (m *Machine) Watch(ctx context.Context) <-chan LoginState {
	ch := make(chan LoginState, 1)

	m.mu.Lock()
	ch <- m.state
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, ch)
		close(ch)
		m.mu.Unlock()
	}()

	return ch
}

func (m *Machine) persist(out Outcome) {
	session.Persist(m.store, out.Token, out.DisplayName, out.Role)
	m.logger.Info("login_succeeded", "role", session.ParseRole(out.Role))
}

// update applies fn to the state and publishes the result.
func (m *Machine) update(fn func(*LoginState)) LoginState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(fn)
}

// finish is update that also drops the pending credentials.
func (m *Machine) finish(fn func(*LoginState)) LoginState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = credentials{}
	return m.setLocked(fn)
}

// setLocked must be called with m.mu held.
func (m *Machine) setLocked(fn func(*LoginState)) LoginState {
	next := m.state
	fn(&next)
	m.state = next

	for ch := range m.watchers {
		publish(ch, next)
	}
	return next
}

// publish replaces whatever is buffered in ch with st.
func publish[T any](ch chan T, st T) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

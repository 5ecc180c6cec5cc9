package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
	"github.com/aussiebroadwan/stepattend/pkg/httpx"
	"github.com/aussiebroadwan/stepattend/pkg/idx"
	"github.com/aussiebroadwan/stepattend/pkg/slogx"
)

// Error bodies the fake emits.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidOTP         = "Invalid OTP code"
	MsgUsernameTaken      = "Username already exists"
	MsgLocked             = "locked"
)

// AddUser creates an account and returns its id.
func (s *Server) AddUser(username, password, fullName, role string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: hash password: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &user{
		id:           idx.New().String(),
		username:     username,
		passwordHash: hash,
		fullName:     fullName,
		role:         role,
	}
	s.users[username] = u
	return u.id
}

// EnableMFA turns on TOTP for username and returns the base32 secret.
func (s *Server) EnableMFA(username string) string {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "StepAttend",
		AccountName: username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		panic(fmt.Sprintf("fakeapi: generate totp key: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username].mfaSecret = key.Secret()
	return key.Secret()
}

// Lock makes every login for username answer 2xx with {"error":"locked"}.
func (s *Server) Lock(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username].locked = true
}

// LimitLogins rate limits POST /api/auth/login per client IP. Rejected
// attempts get 429 with httpx.RateLimitedMessage and are not counted by
// LoginCalls.
func (s *Server) LimitLogins(cfg httpx.RateLimitConfig) {
	limited := httpx.RateLimitMiddleware(cfg, httpx.IPKeyExtractor)(http.HandlerFunc(s.handleLogin))
	s.loginHandler.Store(&limited)
}

func (s *Server) registerAuth() {
	var login http.Handler = http.HandlerFunc(s.handleLogin)
	s.loginHandler.Store(&login)
	s.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		(*s.loginHandler.Load()).ServeHTTP(w, r)
	})
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.loginCalls.Add(1)

	var req attendsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	var snapshot user
	if ok {
		snapshot = *u
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(snapshot.passwordHash, []byte(req.Password)) != nil {
		httpx.WriteError(w, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	if snapshot.locked {
		httpx.WriteJSON(w, http.StatusOK, attendsdk.AuthResponse{Error: MsgLocked})
		return
	}

	if snapshot.mfaSecret != "" {
		if req.OTP == "" {
			httpx.WriteJSON(w, http.StatusOK, attendsdk.AuthResponse{Message: attendsdk.MFARequiredMessage})
			return
		}
		if !totp.Validate(req.OTP, snapshot.mfaSecret) {
			httpx.WriteError(w, http.StatusUnauthorized, MsgInvalidOTP)
			return
		}
	}

	token, err := s.issueToken(snapshot)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Token signing failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, attendsdk.AuthResponse{
		Message: "Login successful",
		User: &attendsdk.User{
			ID:       snapshot.id,
			FullName: snapshot.fullName,
			Role:     snapshot.role,
		},
		AccessToken:  token,
		RefreshToken: idx.New().String(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.registerCalls.Add(1)

	var req attendsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, attendsdk.ErrorResponse{
			Errors: []string{"username is required", "password is required"},
		})
		return
	}

	s.mu.Lock()
	_, taken := s.users[req.Username]
	s.mu.Unlock()
	if taken {
		httpx.WriteError(w, http.StatusConflict, MsgUsernameTaken)
		return
	}

	id := s.AddUser(req.Username, req.Password, req.Username, "STUDENT")

	httpx.WriteJSON(w, http.StatusCreated, attendsdk.RegisterResponse{
		Message: "User registered successfully",
		User:    &attendsdk.User{ID: id, FullName: req.Username, Role: "STUDENT"},
	})
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

func (s *Server) issueToken(u user) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "stepattend-fake",
			Subject:   u.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        idx.New().String(),
		},
		Role: u.role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// authenticate verifies the bearer token and returns the caller.
func (s *Server) authenticate(r *http.Request) (user, error) {
	raw, ok := httpx.BearerToken(r)
	if !ok {
		return user{}, errors.New("missing bearer token")
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return user{}, fmt.Errorf("token verification failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.id == claims.Subject {
			return *u, nil
		}
	}
	return user{}, errors.New("unknown subject")
}

// requireAuth wraps h, answering 401 when the bearer token is missing or invalid.
func (s *Server) requireAuth(h func(http.ResponseWriter, *http.Request, user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.authenticate(r)
		if err != nil {
			slogx.FromContext(r.Context()).Debug("bearer auth failed", "error", err)
			httpx.WriteBearerError(w, "token verification failed")
			return
		}
		h(w, r, u)
	}
}

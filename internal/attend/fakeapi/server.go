// Package fakeapi is an in-process stand-in for the attendance service, used by
// tests across the repo. It implements the auth endpoints faithfully enough to
// drive the login, MFA and registration flows, plus a small roster surface
// for the attendance endpoints.
//
//	fake := fakeapi.New()
//	fake.AddUser("alice", "secret1", "Alice Smith", "TEACHER")
//	srv := httptest.NewServer(fake)
//	defer srv.Close()
package fakeapi

import (
	"crypto/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
)

type user struct {
	id           string
	username     string
	passwordHash []byte
	fullName     string
	role         string
	mfaSecret    string
	locked       bool
}

// Server is a fake attendance service. It is safe for concurrent use.
type Server struct {
	mux        *http.ServeMux
	signingKey []byte
	tokenTTL   time.Duration

	mu         sync.Mutex
	users      map[string]*user // by username
	courses    map[string]attendsdk.Course
	enrolments map[string][]string // course id -> student ids
	attendance map[string][]attendsdk.AttendanceRecord

	loginCalls    atomic.Int64
	registerCalls atomic.Int64
	lastAuth      atomic.Value // string

	loginHandler atomic.Pointer[http.Handler]
}

// New returns an empty fake. Add users and courses before use.
func New() *Server {
	key := make([]byte, 32)
	_, _ = rand.Read(key)

	s := &Server{
		mux:        http.NewServeMux(),
		signingKey: key,
		tokenTTL:   time.Hour,
		users:      make(map[string]*user),
		courses:    make(map[string]attendsdk.Course),
		enrolments: make(map[string][]string),
		attendance: make(map[string][]attendsdk.AttendanceRecord),
	}
	s.lastAuth.Store("")

	s.registerAuth()
	s.registerUser()
	s.registerCourses()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lastAuth.Store(r.Header.Get("Authorization"))
	s.mux.ServeHTTP(w, r)
}

// LoginCalls is the number of POST /api/auth/login requests served.
func (s *Server) LoginCalls() int { return int(s.loginCalls.Load()) }

// RegisterCalls is the number of POST /api/auth/register requests served.
func (s *Server) RegisterCalls() int { return int(s.registerCalls.Load()) }

// LastAuthorization is the Authorization header of the most recent request.
func (s *Server) LastAuthorization() string { return s.lastAuth.Load().(string) }


package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store holds the persisted session. Writes are fire-and-forget and reads are
// synchronous; neither surfaces storage errors. Each field is written
// independently, and Clear removes all of them in one batch.
//
// A Store satisfies attendsdk.TokenSource.
type Store interface {
	SaveToken(token string)
	SaveDisplayName(name string)
	SaveRole(role string)

	Token() (string, bool)
	DisplayName() (string, bool)
	Role() (string, bool)

	Clear()
}

// Backend is the key/value storage a Manager persists through. Drivers under
// drivers/ implement it and report failures as errors; the Manager turns them
// into log lines.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes all keys in a single batch. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any underlying resources.
	Close() error
}

// DefaultOpTimeout bounds each backend call made by a Manager.
const DefaultOpTimeout = 5 * time.Second

// Manager implements Store on top of a Backend.
type Manager struct {
	backend Backend
	logger  *slog.Logger
	timeout time.Duration
}

var _ Store = (*Manager)(nil)

// NewManager wraps backend. A nil logger uses slog.Default().
func NewManager(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend: backend,
		logger:  logger.With("component", "session"),
		timeout: DefaultOpTimeout,
	}
}

func (m *Manager) SaveToken(token string)     { m.set(KeyToken, token) }
func (m *Manager) SaveDisplayName(name string) { m.set(KeyDisplayName, name) }
func (m *Manager) SaveRole(role string)        { m.set(KeyRole, role) }

func (m *Manager) Token() (string, bool)       { return m.get(KeyToken) }
func (m *Manager) DisplayName() (string, bool) { return m.get(KeyDisplayName) }
func (m *Manager) Role() (string, bool)        { return m.get(KeyRole) }

// Clear removes every session entry.
func (m *Manager) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := m.backend.Delete(ctx, Keys...); err != nil {
		m.logger.Error("session_clear_failed", "error", err)
	}
}

// Close closes the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}

func (m *Manager) set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := m.backend.Set(ctx, key, value); err != nil {
		m.logger.Error("session_write_failed", "key", key, "error", err)
	}
}

func (m *Manager) get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	value, ok, err := m.backend.Get(ctx, key)
	if err != nil {
		m.logger.Warn("session_read_failed", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

// NewMemoryStore returns a Store that lives only as long as the process.
func NewMemoryStore() *Manager {
	return NewManager(NewMemoryBackend(), nil)
}

// MemoryBackend is an in-process Backend.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.entries[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.entries, k)
	}
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

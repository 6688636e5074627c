// apps/go-server/internal/store/memory.go
//
// In-memory registry of live game sessions.
// Sessions are never written anywhere else, so they are lost when the
// process restarts.
//
// Characteristics:
//   - Stores *Entry values keyed by ID in a map.
//   - Concurrency-safe via RWMutex; Update runs the callback under the write
//     lock so a game.Session is only ever touched by one goroutine at a time.
//     View takes the read lock, so lookups run alongside each other.
//   - Missing IDs yield ErrNotFound.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robalobadob/hilo/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Mode distinguishes free-play sessions from the date-seeded daily game.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeDaily  Mode = "daily"
)

// Entry wraps a session with the bookkeeping the HTTP layer needs.
type Entry struct {
	ID        string
	Mode      Mode
	Date      string // daily date key, empty for normal games
	Session   *game.Session
	Round     int       // number of resets so far
	StartedAt time.Time // start of the current round
	LastSeen  time.Time // last guess, reset or creation
}

// HistoryID identifies the current round in the result history.
func (e *Entry) HistoryID() string {
	return fmt.Sprintf("%s#%d", e.ID, e.Round)
}

// Store defines the registry interface for live sessions.
type Store interface {
	// Save adds or replaces an entry.
	Save(ctx context.Context, e *Entry) error

	// Update runs fn on the entry with exclusive access.
	// The error from fn is returned unchanged.
	Update(ctx context.Context, id string, fn func(e *Entry) error) error

	// View runs fn on the entry under a shared lock. fn must not modify it.
	View(ctx context.Context, id string, fn func(e *Entry) error) error

	// Delete removes an entry. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// Sweep removes entries last seen before cutoff and reports how many.
	Sweep(ctx context.Context, cutoff time.Time) int

	// Len reports the number of live entries.
	Len() int
}

type memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{entries: make(map[string]*Entry)}
}

func (m *memory) Save(ctx context.Context, e *Entry) error {
	if e == nil || e.ID == "" {
		return errors.New("entry requires an id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(e *Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	return fn(e)
}

func (m *memory) View(ctx context.Context, id string, fn func(e *Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	return fn(e)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		if e.LastSeen.Before(cutoff) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

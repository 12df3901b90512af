package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"promptbox-backend/internal/models"
)

type displaySlot struct {
	issued  int64
	state   models.DisplayState
	touched time.Time
}

// MemoryDisplayRepo keeps display slots in process memory. A slot nobody has
// submitted to for ttl is forgotten, like the Redis keys expire.
type MemoryDisplayRepo struct {
	mu         sync.Mutex
	slots      map[uuid.UUID]*displaySlot
	latestOnly bool
	ttl        time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// NewMemoryDisplayRepo keeps slots forever when ttl is zero.
func NewMemoryDisplayRepo(latestOnly bool, ttl time.Duration) *MemoryDisplayRepo {
	return &MemoryDisplayRepo{
		slots:      make(map[uuid.UUID]*displaySlot),
		latestOnly: latestOnly,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (r *MemoryDisplayRepo) expired(s *displaySlot, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.touched) >= r.ttl
}

// lookup returns the live slot for a session or nil.
func (r *MemoryDisplayRepo) lookup(sessionID uuid.UUID, now time.Time) *displaySlot {
	s, ok := r.slots[sessionID]
	if !ok {
		return nil
	}
	if r.expired(s, now) {
		delete(r.slots, sessionID)
		return nil
	}
	return s
}

// touch returns the slot for a session, creating it, and marks it used.
func (r *MemoryDisplayRepo) touch(sessionID uuid.UUID, now time.Time) *displaySlot {
	s := r.lookup(sessionID, now)
	if s == nil {
		s = &displaySlot{state: models.DisplayState{SessionID: sessionID}}
		r.slots[sessionID] = s
	}
	s.touched = now
	return s
}

// sweep drops expired slots, at most once per ttl.
func (r *MemoryDisplayRepo) sweep(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, s := range r.slots {
		if r.expired(s, now) {
			delete(r.slots, id)
		}
	}
}

// Begin issues the next request token for a session.
func (r *MemoryDisplayRepo) Begin(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	s := r.touch(sessionID, now)
	s.issued++
	return s.issued, nil
}

// Apply writes state into the slot. In latest-only mode a state whose sequence
// is no longer the newest issued token is dropped and Apply returns false.
func (r *MemoryDisplayRepo) Apply(ctx context.Context, state models.DisplayState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.latestOnly {
		s := r.lookup(state.SessionID, now)
		if s == nil || state.Sequence != s.issued {
			return false, nil
		}
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = now
	}
	r.touch(state.SessionID, now).state = state
	return true, nil
}

// Get never creates a slot. An unknown or expired session reads as empty.
func (r *MemoryDisplayRepo) Get(ctx context.Context, sessionID uuid.UUID) (*models.DisplayState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s := r.lookup(sessionID, r.now()); s != nil {
		state := s.state
		return &state, nil
	}
	return &models.DisplayState{SessionID: sessionID}, nil
}


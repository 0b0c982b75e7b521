package cache

import (
	"context"
	"sync"
	"time"
)

// MeetingGuard prevents two concurrent pipeline runs for the same meeting id.
// Acquire claims the meeting; the claim expires after a TTL so a crashed run
// cannot block re-processing forever.
type MeetingGuard interface {
	// Acquire claims the meeting. Returns false when another run holds it.
	Acquire(ctx context.Context, meetingID string) (bool, error)

	// Release frees the claim. Safe to call for a claim that already expired.
	Release(ctx context.Context, meetingID string)
}

// MemoryGuard is an in-process MeetingGuard with expiring claims. Used when
// Redis is not configured; sufficient for a single-instance deployment.
type MemoryGuard struct {
	mu    sync.Mutex
	items map[string]time.Time
	ttl   time.Duration
}

// NewMemoryGuard creates an in-memory guard with the given claim TTL
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	guard := &MemoryGuard{
		items: make(map[string]time.Time),
		ttl:   ttl,
	}

	// Cleanup goroutine removes expired claims for meetings never released
	go guard.cleanupExpired()

	return guard
}

// Acquire claims the meeting unless a live claim exists
func (g *MemoryGuard) Acquire(_ context.Context, meetingID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if expires, exists := g.items[meetingID]; exists && time.Now().Before(expires) {
		return false, nil
	}

	g.items[meetingID] = time.Now().Add(g.ttl)
	return true, nil
}

// Release frees the claim
func (g *MemoryGuard) Release(_ context.Context, meetingID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.items, meetingID)
}

// cleanupExpired periodically removes expired claims
func (g *MemoryGuard) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		g.mu.Lock()
		now := time.Now()
		for key, expires := range g.items {
			if now.After(expires) {
				delete(g.items, key)
			}
		}
		g.mu.Unlock()
	}
}

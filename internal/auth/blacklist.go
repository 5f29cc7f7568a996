package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Blacklist records explicitly invalidated token identifiers until their
// natural expiry. Revocation is effective for every check performed after
// Revoke returns.
type Blacklist interface {
	// Revoke marks a jti invalid until expiresAt. Idempotent; entries for
	// the same jti always carry the same expiry, so last-write-wins is fine.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// IsRevoked reports whether an unexpired entry exists for jti.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryBlacklist is the process-local blacklist: plain shared state scoped
// to one running instance, no persistence or replication. Expired entries are
// purged lazily on lookup; leaving them in place is harmless because an
// expired token fails validation independently.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryBlacklist creates an empty blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke inserts or overwrites the entry for jti.
func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("jti is required")
	}
	b.mu.Lock()
	b.entries[jti] = expiresAt
	b.mu.Unlock()
	return nil
}

// IsRevoked returns true iff an entry exists and its expiry is still in the
// future. An expired entry is removed opportunistically; the purge is skipped
// under write contention since it is purely an optimization.
func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	exp, ok := b.entries[jti]
	b.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if b.now().Before(exp) {
		return true, nil
	}

	if b.mu.TryLock() {
		// Re-check under the write lock; a concurrent Revoke may have
		// refreshed the entry.
		if exp, ok := b.entries[jti]; ok && !b.now().Before(exp) {
			delete(b.entries, jti)
		}
		b.mu.Unlock()
	}
	return false, nil
}

// Len reports the number of live entries, expired or not.
func (b *MemoryBlacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

var _ Blacklist = (*MemoryBlacklist)(nil)

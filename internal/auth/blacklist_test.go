package auth

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBlacklistRevokeAndLookup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bl := NewMemoryBlacklist()
	bl.now = func() time.Time { return now }

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh blacklist should be empty: %v %v", revoked, err)
	}

	if err := bl.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked before expiry: %v %v", revoked, err)
	}
}

func TestBlacklistEntryExpiresAndIsPurged(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bl := NewMemoryBlacklist()
	bl.now = func() time.Time { return now }

	if err := bl.Revoke(ctx, "jti-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	now = now.Add(2 * time.Minute)
	revoked, err := bl.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("expired entry should be treated as absent: %v %v", revoked, err)
	}
	if bl.Len() != 0 {
		t.Fatalf("expected lazy purge to drop the entry, %d left", bl.Len())
	}
}

func TestBlacklistRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bl := NewMemoryBlacklist()
	bl.now = func() time.Time { return now }

	exp := now.Add(time.Hour)
	if err := bl.Revoke(ctx, "jti-1", exp); err != nil {
		t.Fatalf("first Revoke: %v", err)
	}
	if err := bl.Revoke(ctx, "jti-1", exp); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	if bl.Len() != 1 {
		t.Fatalf("expected one entry, got %d", bl.Len())
	}
	if revoked, _ := bl.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("entry lost after repeated revoke")
	}
}

func TestBlacklistRejectsEmptyTokenID(t *testing.T) {
	bl := NewMemoryBlacklist()
	if err := bl.Revoke(context.Background(), "", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected error for empty jti")
	}
}

func TestBlacklistConcurrentRevokeAndLookup(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = bl.Revoke(ctx, "jti-shared", exp)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = bl.IsRevoked(ctx, "jti-shared")
			}
		}()
	}
	wg.Wait()

	if revoked, _ := bl.IsRevoked(ctx, "jti-shared"); !revoked {
		t.Fatalf("revocation lost under concurrency")
	}
}

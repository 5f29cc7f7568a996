package auth

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CredentialStore holds registered identities for the process lifetime.
// Usernames are unique case-insensitively.
type CredentialStore struct {
	mu     sync.RWMutex
	byName map[string]*Identity // lowercase username -> identity
	byID   map[string]*Identity
	now    func() time.Time
}

// NewCredentialStore creates an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		byName: make(map[string]*Identity),
		byID:   make(map[string]*Identity),
		now:    time.Now,
	}
}

// Register validates input, hashes the password and inserts the identity.
// The duplicate check and insert happen under one lock: two concurrent
// registrations of the same username yield exactly one success. Hashing runs
// before the lock is taken so the slow bcrypt work never serializes unrelated
// registrations.
func (s *CredentialStore) Register(username, password string, role Role) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Identity{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return Identity{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Identity{}, err
	}

	id := &Identity{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	key := strings.ToLower(username)
	s.mu.Lock()
	if _, exists := s.byName[key]; exists {
		s.mu.Unlock()
		return Identity{}, ErrConflict
	}
	s.byName[key] = id
	s.byID[id.ID] = id
	s.mu.Unlock()

	return *id, nil
}

// Verify checks a username/password pair. Unknown user and wrong password
// collapse into the same error so the response cannot disclose which
// usernames exist. The bcrypt comparison runs outside the store lock.
func (s *CredentialStore) Verify(username, password string) (Identity, error) {
	key := strings.ToLower(strings.TrimSpace(username))

	s.mu.RLock()
	id, ok := s.byName[key]
	var snapshot Identity
	if ok {
		snapshot = *id
	}
	s.mu.RUnlock()

	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(snapshot.PasswordHash, password); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return snapshot, nil
}

// GetByID returns the identity with the given id.
func (s *CredentialStore) GetByID(id string) (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.byID[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return *ident, nil
}

// List returns all identities ordered by registration time.
func (s *CredentialStore) List() []Identity {
	s.mu.RLock()
	out := make([]Identity, 0, len(s.byID))
	for _, id := range s.byID {
		out = append(out, *id)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

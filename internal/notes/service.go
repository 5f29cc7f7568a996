package notes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"safescribe.org/internal/ids"
)

// Service defines note storage operations.
type Service interface {
	Create(ctx context.Context, ownerID, title, content string) (Note, error)
	Get(ctx context.Context, id string) (Note, error)
	Update(ctx context.Context, id, title, content string) (Note, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Note, error)
}

// InMemory implements Service with in-process concurrency safety.
type InMemory struct {
	mu    sync.RWMutex
	notes map[string]*Note
	now   func() time.Time
}

// NewInMemory creates an empty note store.
func NewInMemory() *InMemory {
	return &InMemory{
		notes: make(map[string]*Note),
		now:   time.Now,
	}
}

func (s *InMemory) Create(_ context.Context, ownerID, title, content string) (Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Note{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(ownerID) == "" {
		return Note{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	note := &Note{
		ID:        ids.New(),
		Title:     title,
		Content:   content,
		CreatedAt: s.now().UTC(),
		OwnerID:   ownerID,
	}

	s.mu.Lock()
	s.notes[note.ID] = note
	s.mu.Unlock()
	return *note, nil
}

func (s *InMemory) Get(_ context.Context, id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	return *note, nil
}

func (s *InMemory) Update(_ context.Context, id, title, content string) (Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Note{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	note.Title = title
	note.Content = content
	return *note, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// ListByOwner returns the owner's notes ordered by ID; ULIDs sort by creation
// time.
func (s *InMemory) ListByOwner(_ context.Context, ownerID string) ([]Note, error) {
	s.mu.RLock()
	out := make([]Note, 0)
	for _, note := range s.notes {
		if note.OwnerID == ownerID {
			out = append(out, *note)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ Service = (*InMemory)(nil)

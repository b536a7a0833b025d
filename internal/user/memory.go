package user

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps users in process memory. It is used when no database
// is configured and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	byName map[string]*User
	order  []*User
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byName: make(map[string]*User)}
}

func (s *MemoryStore) Create(ctx context.Context, user *User) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[user.Username]; exists {
		return nil, ErrDuplicateKey
	}

	s.nextID++
	stored := *user
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	s.byName[stored.Username] = &stored
	s.order = append(s.order, &stored)

	out := stored
	return &out, nil
}

func (s *MemoryStore) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.order {
		if u.Username == identifier || u.Contact == identifier {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// Count returns the number of stored users.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

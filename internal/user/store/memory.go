// Package store persists users in memory or in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"microflix/internal/user/models"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
)

// Error Contract:
// - FindByID and FindByEmail return sentinel.ErrNotFound when no user matches
// - Create returns sentinel.ErrConflict when the email is already registered
// - Update returns sentinel.ErrNotFound when the user does not exist
// - Infrastructure failures are returned wrapped with context

// InMemoryUserStore keeps users in maps for tests and local runs.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[domain.UserID]*models.User
	byEmail map[string]domain.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[domain.UserID]*models.User),
		byEmail: make(map[string]domain.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return fmt.Errorf("email %s: %w", user.Email, sentinel.ErrConflict)
	}
	s.users[user.ID] = clone(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	return clone(user), nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, address string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[address]
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", address, sentinel.ErrNotFound)
	}
	return clone(s.users[id]), nil
}

// Update replaces mutable fields. Email and ID never change.
func (s *InMemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrNotFound)
	}
	s.users[user.ID] = clone(user)
	return nil
}

func clone(u *models.User) *models.User {
	out := *u
	out.Roles = slices.Clone(u.Roles)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		out.LastLoginAt = &t
	}
	return &out
}

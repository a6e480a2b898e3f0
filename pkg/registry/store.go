package registry

import (
	"sync"

	"github.com/arthur-debert/gather/pkg/errors"
)

// Store is a thread-safe name → item table that remembers registration order.
type Store[T any] interface {
	// Register adds an item; names are unique
	Register(name string, item T) error

	// Get retrieves an item
	Get(name string) (T, error)

	// Has checks if an item is registered
	Has(name string) bool

	// List returns all names in registration order
	List() []string

	// Count returns the number of registered items
	Count() int
}

type store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewStore creates an empty Store.
func NewStore[T any]() Store[T] {
	return &store[T]{
		items: make(map[string]T),
	}
}

func (s *store[T]) Register(name string, item T) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name)
	}

	s.items[name] = item
	s.order = append(s.order, name)
	return nil
}

func (s *store[T]) Get(name string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}

	return item, nil
}

func (s *store[T]) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.items[name]
	return exists
}

func (s *store[T]) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

func (s *store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

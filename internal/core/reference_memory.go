package core

import (
	"context"
	"fmt"
	"sync"
)

type memoryReferenceStore struct {
	mu      sync.Mutex
	seeded  bool
	clients []Client
	items   []InventoryItem
}

// NewMemoryReferenceStore returns a process-local ReferenceStore. The default
// records are loaded on first access.
func NewMemoryReferenceStore() ReferenceStore {
	return &memoryReferenceStore{}
}

// lazySeed must be called with mu held.
func (s *memoryReferenceStore) lazySeed() {
	if s.seeded {
		return
	}
	s.seeded = true
	if len(s.clients) == 0 && len(s.items) == 0 {
		s.clients = SeedClients()
		s.items = SeedItems()
	}
}

func (s *memoryReferenceStore) SearchClients(_ context.Context, query string) ([]Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	return append([]Client(nil), filterClients(s.clients, query)...), nil
}

func (s *memoryReferenceStore) SearchItems(_ context.Context, query string) ([]InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	return append([]InventoryItem(nil), filterItems(s.items, query)...), nil
}

func (s *memoryReferenceStore) SaveClient(_ context.Context, c Client) (*Client, error) {
	c = c.normalized()
	if err := ValidateClient(c); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	if s.clientIndex(c.Email) >= 0 {
		return nil, fmt.Errorf("client %q: %w", c.Email, ErrDuplicate)
	}
	s.clients = append(s.clients, c)
	return &c, nil
}

func (s *memoryReferenceStore) SaveItem(_ context.Context, item InventoryItem) (*InventoryItem, error) {
	item = item.withDefaults()
	if err := ValidateItem(item); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	if s.itemIndex(item.Name) >= 0 {
		return nil, fmt.Errorf("item %q: %w", item.Name, ErrDuplicate)
	}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *memoryReferenceStore) UpdateClient(_ context.Context, email string, c Client) (*Client, error) {
	c = c.normalized()
	if c.Email == "" {
		c.Email = email
	}
	if err := ValidateClient(c); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	i := s.clientIndex(email)
	if i < 0 {
		return nil, fmt.Errorf("client %q: %w", email, ErrNotFound)
	}
	if j := s.clientIndex(c.Email); j >= 0 && j != i {
		return nil, fmt.Errorf("client %q: %w", c.Email, ErrDuplicate)
	}
	s.clients[i] = c
	return &c, nil
}

func (s *memoryReferenceStore) UpdateItem(_ context.Context, name string, item InventoryItem) (*InventoryItem, error) {
	if blank(item.Name) {
		item.Name = name
	}
	item = item.withDefaults()
	if err := ValidateItem(item); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	i := s.itemIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	if j := s.itemIndex(item.Name); j >= 0 && j != i {
		return nil, fmt.Errorf("item %q: %w", item.Name, ErrDuplicate)
	}
	s.items[i] = item
	return &item, nil
}

func (s *memoryReferenceStore) DeleteClient(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	i := s.clientIndex(email)
	if i < 0 {
		return fmt.Errorf("client %q: %w", email, ErrNotFound)
	}
	s.clients = append(s.clients[:i], s.clients[i+1:]...)
	return nil
}

func (s *memoryReferenceStore) DeleteItem(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	i := s.itemIndex(name)
	if i < 0 {
		return fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *memoryReferenceStore) EnsureSeeded(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazySeed()
	return nil
}

func (s *memoryReferenceStore) ResetToSeed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeded = true
	s.clients = SeedClients()
	s.items = SeedItems()
	return nil
}

func (s *memoryReferenceStore) clientIndex(email string) int {
	key := clientKey(email)
	for i, c := range s.clients {
		if clientKey(c.Email) == key {
			return i
		}
	}
	return -1
}

func (s *memoryReferenceStore) itemIndex(name string) int {
	key := itemKey(name)
	for i, item := range s.items {
		if itemKey(item.Name) == key {
			return i
		}
	}
	return -1
}

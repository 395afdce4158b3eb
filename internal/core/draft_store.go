package core

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultDraftTTL is the inactivity window after which a draft is dropped.
const DefaultDraftTTL = 24 * time.Hour

// DraftStore holds one InvoiceDraft per conversation. Every Put restarts the
// expiry window; Get never returns an expired draft.
type DraftStore interface {
	// Get returns the draft for conversationID. The bool is false when none exists.
	Get(ctx context.Context, conversationID string) (InvoiceDraft, bool, error)

	Put(ctx context.Context, conversationID string, draft InvoiceDraft) error

	// Delete removes the draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, conversationID string) error
}

type memoryDraftStore struct {
	cache *expirable.LRU[string, InvoiceDraft]
}

// NewMemoryDraftStore returns a DraftStore kept in an expiring LRU holding at
// most size conversations. ttl <= 0 means DefaultDraftTTL.
func NewMemoryDraftStore(size int, ttl time.Duration) DraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	if size <= 0 {
		size = 10000
	}
	return &memoryDraftStore{cache: expirable.NewLRU[string, InvoiceDraft](size, nil, ttl)}
}

func (s *memoryDraftStore) Get(_ context.Context, conversationID string) (InvoiceDraft, bool, error) {
	d, ok := s.cache.Get(conversationID)
	if !ok {
		return InvoiceDraft{}, false, nil
	}
	return d.Clone(), true, nil
}

func (s *memoryDraftStore) Put(_ context.Context, conversationID string, draft InvoiceDraft) error {
	s.cache.Add(conversationID, draft.Clone())
	return nil
}

func (s *memoryDraftStore) Delete(_ context.Context, conversationID string) error {
	s.cache.Remove(conversationID)
	return nil
}

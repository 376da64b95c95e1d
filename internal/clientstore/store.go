// Package clientstore keeps a client-side replica of marketplace items.
// Mutations apply locally first; a background reconciler pushes them to
// the server and folds the authoritative copy back in.
package clientstore

import (
	"sync"
	"time"

	"github.com/campus-agora/market-svc/internal/dto"
)

type Store struct {
	mu sync.Mutex

	items           map[string]dto.ClientItem
	universityItems []dto.ItemResponse
	version         uint64
	lastSync        time.Time
}

func NewStore() *Store {
	return &Store{items: make(map[string]dto.ClientItem)}
}

// Add inserts an item optimistically. The caller supplies the id (a
// client-generated uuid) so the server upsert is idempotent.
func (s *Store) Add(item dto.ClientItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.version++
}

// Update overwrites a locally held item. Unknown ids are treated as
// inserts so a reconnecting client never drops an edit.
func (s *Store) Update(item dto.ClientItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.version++
}

// Remove drops an item from the local view only. The server keeps its
// row; deletion is not part of the sync protocol.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	s.version++
}

func (s *Store) Get(id string) (dto.ClientItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	return item, ok
}

// ItemsBySeller snapshots the seller's items for a sync push.
func (s *Store) ItemsBySeller(sellerID uint) []dto.ClientItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.ClientItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Seller.ID == sellerID {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) Items() []dto.ClientItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.ClientItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out
}

// ReconcileSeller replaces only the given seller's items with the
// server's copy. Items from other sellers stay untouched, so a partial
// sync never clobbers unrelated local state.
func (s *Store) ReconcileSeller(sellerID uint, serverItems []dto.ClientItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.items {
		if item.Seller.ID == sellerID {
			delete(s.items, id)
		}
	}
	for _, item := range serverItems {
		s.items[item.ID] = item
	}
	s.lastSync = time.Now()
}

// ReplaceUniversityItems swaps the cached university feed wholesale.
func (s *Store) ReplaceUniversityItems(items []dto.ItemResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universityItems = items
}

func (s *Store) UniversityItems() []dto.ItemResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.ItemResponse, len(s.universityItems))
	copy(out, s.universityItems)
	return out
}

// Version increments on every local mutation. The reconciler compares
// versions to decide whether a push is pending.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// Package store holds the in-memory state of the application: the local
// catalog, the purchase ledger and the view selection. Stores are safe for
// concurrent use and never talk to the remote backend.
package store

import (
	"sync"
	"time"

	"hissab/internal/core"
)

// Items is the local copy of the catalog, kept in insertion order.
type Items struct {
	mu    sync.RWMutex
	items []core.Item
}

func NewItems() *Items {
	return &Items{}
}

// Replace swaps the whole catalog.
func (s *Items) Replace(items []core.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Item(nil), items...)
}

// Append adds an item at the end of the catalog. Duplicates are not detected.
func (s *Items) Append(it core.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, it)
}

// Get returns the item with the given id.
func (s *Items) Get(id string) (core.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return core.Item{}, false
}

// FindByName returns the first item whose name matches exactly.
func (s *Items) FindByName(name string) (core.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.Name == name {
			return it, true
		}
	}
	return core.Item{}, false
}

// Put replaces the record with the same id as it. Returns false if absent.
func (s *Items) Put(it core.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == it.ID {
			s.items[i] = it
			return true
		}
	}
	return false
}

// Patch applies a partial update in place and stamps UpdatedAt.
func (s *Items) Patch(id string, patch core.ItemPatch, now time.Time) (core.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		updated := patch.Apply(s.items[i])
		updated.UpdatedAt = now
		s.items[i] = updated
		return updated, true
	}
	return core.Item{}, false
}

// Remove deletes the item with the given id. Returns false if absent.
func (s *Items) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a copy of the catalog.
func (s *Items) All() []core.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Item(nil), s.items...)
}

func (s *Items) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

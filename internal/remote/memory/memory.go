// Package memory is an in-process remote backend. It behaves like the
// PostgREST adapter (server-assigned item ids, conflict on duplicate purchase
// ids) and lets tests inject failures per operation or per purchase.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hissab/internal/core"
	"hissab/internal/remote"
)

// Operation names accepted by FailOn.
const (
	OpListItems      = "list_items"
	OpCreateItem     = "create_item"
	OpUpdateItem     = "update_item"
	OpDeleteItem     = "delete_item"
	OpInsertPurchase = "insert_purchase"
	OpUpdatePurchase = "update_purchase"
	OpDeletePurchase = "delete_purchase"
	OpListPurchases  = "list_purchases"
	OpPing           = "ping"
)

type Store struct {
	mu        sync.Mutex
	items     []core.Item
	purchases []core.Purchase
	nowFn     func() time.Time

	failOps       map[string]error
	failPurchases map[string]error
	calls         []string
}

var _ remote.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		nowFn:         time.Now,
		failOps:       map[string]error{},
		failPurchases: map[string]error{},
	}
}

// WithClock sets the clock used for server-side timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
	return s
}

// FailOn makes every call of op fail with err. A nil err uses remote.ErrUnavailable.
func (s *Store) FailOn(op string, err error) {
	if err == nil {
		err = remote.ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOps[op] = err
}

// FailPurchase makes writes of one purchase id fail with err.
func (s *Store) FailPurchase(id string, err error) {
	if err == nil {
		err = remote.ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPurchases[id] = err
}

// Recover clears every injected failure.
func (s *Store) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOps = map[string]error{}
	s.failPurchases = map[string]error{}
}

// Calls returns the operations attempted so far, failed ones included.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// SeedItems preloads the items collection.
func (s *Store) SeedItems(items ...core.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Items returns the stored items in creation order.
func (s *Store) Items() []core.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Item(nil), s.items...)
}

// Purchases returns the stored purchases in insertion order.
func (s *Store) Purchases() []core.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Purchase(nil), s.purchases...)
}

// begin records the call and returns the injected failure, if any. Callers hold s.mu.
func (s *Store) begin(op string) error {
	s.calls = append(s.calls, op)
	if err, ok := s.failOps[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context) ([]core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpListItems); err != nil {
		return nil, err
	}
	out := append([]core.Item(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateItem(ctx context.Context, name string, price core.Money) (core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpCreateItem); err != nil {
		return core.Item{}, err
	}
	now := s.nowFn().UTC()
	it := core.Item{
		ID:           uuid.NewString(),
		Name:         name,
		CurrentPrice: price,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.items = append(s.items, it)
	return it, nil
}

func (s *Store) UpdateItem(ctx context.Context, id string, patch core.ItemPatch) (core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpUpdateItem); err != nil {
		return core.Item{}, err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = patch.Apply(s.items[i])
			s.items[i].UpdatedAt = s.nowFn().UTC()
			return s.items[i], nil
		}
	}
	return core.Item{}, fmt.Errorf("update item %s: %w", id, remote.ErrNotFound)
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpDeleteItem); err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	// PostgREST deletes matching zero rows without complaint
	return nil
}

func (s *Store) InsertPurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpInsertPurchase); err != nil {
		return core.Purchase{}, err
	}
	if err, ok := s.failPurchases[p.ID]; ok {
		return core.Purchase{}, fmt.Errorf("insert purchase %s: %w", p.ID, err)
	}
	for _, existing := range s.purchases {
		if existing.ID == p.ID {
			return core.Purchase{}, &remote.Error{Status: 409, Code: "23505", Message: "duplicate key value violates unique constraint \"purchases_pkey\""}
		}
	}
	s.purchases = append(s.purchases, p)
	return p, nil
}

func (s *Store) UpdatePurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpUpdatePurchase); err != nil {
		return core.Purchase{}, err
	}
	if err, ok := s.failPurchases[p.ID]; ok {
		return core.Purchase{}, fmt.Errorf("update purchase %s: %w", p.ID, err)
	}
	for i := range s.purchases {
		if s.purchases[i].ID == p.ID {
			s.purchases[i] = p
			return p, nil
		}
	}
	return core.Purchase{}, fmt.Errorf("update purchase %s: %w", p.ID, remote.ErrNotFound)
}

func (s *Store) DeletePurchase(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpDeletePurchase); err != nil {
		return err
	}
	if err, ok := s.failPurchases[id]; ok {
		return fmt.Errorf("delete purchase %s: %w", id, err)
	}
	for i := range s.purchases {
		if s.purchases[i].ID == id {
			s.purchases = append(s.purchases[:i], s.purchases[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ListPurchases(ctx context.Context, r core.DateRange) ([]core.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpListPurchases); err != nil {
		return nil, err
	}
	var out []core.Purchase
	for _, p := range s.purchases {
		if r.Contains(p.Date) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(OpPing)
}

package memory

import (
	"context"
	"errors"
	"testing"

	"hissab/internal/core"
	"hissab/internal/remote"
)

func TestStoreCreateAssignsID(t *testing.T) {
	s := New()
	it, err := s.CreateItem(context.Background(), "Tea", core.Units(15))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.ID == "" || it.CreatedAt.IsZero() {
		t.Fatalf("expected server-assigned fields, got %+v", it)
	}
	items, err := s.ListItems(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("unexpected list: %v err=%v", items, err)
	}
}

func TestStoreFailOn(t *testing.T) {
	s := New()
	s.FailOn(OpCreateItem, nil)
	if _, err := s.CreateItem(context.Background(), "Tea", core.Units(15)); !remote.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	s.Recover()
	if _, err := s.CreateItem(context.Background(), "Tea", core.Units(15)); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if calls := s.Calls(); len(calls) != 2 {
		t.Fatalf("expected both calls recorded, got %v", calls)
	}
}

func TestStoreDuplicatePurchaseConflicts(t *testing.T) {
	s := New()
	p := core.Purchase{ID: "p1", Date: core.NewDate(2025, 1, 1)}
	if _, err := s.InsertPurchase(context.Background(), p); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := s.InsertPurchase(context.Background(), p)
	var rerr *remote.Error
	if !errors.As(err, &rerr) || rerr.Status != 409 {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStoreUpdateMissingPurchase(t *testing.T) {
	s := New()
	_, err := s.UpdatePurchase(context.Background(), core.Purchase{ID: "nope"})
	if !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

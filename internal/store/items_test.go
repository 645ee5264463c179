package store

import (
	"testing"
	"time"

	"hissab/internal/core"
)

func TestItemsPatchStampsUpdatedAt(t *testing.T) {
	s := NewItems()
	s.Append(core.Item{ID: "1", Name: "Chai", CurrentPrice: core.Units(15)})

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	price := core.Units(20)
	got, ok := s.Patch("1", core.ItemPatch{CurrentPrice: &price}, now)
	if !ok {
		t.Fatalf("expected patch to apply")
	}
	if got.Name != "Chai" || got.CurrentPrice != price || !got.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected patched item %+v", got)
	}
	if _, ok := s.Patch("missing", core.ItemPatch{CurrentPrice: &price}, now); ok {
		t.Fatalf("patch of unknown id should report false")
	}
}

func TestItemsReplaceAndRemove(t *testing.T) {
	s := NewItems()
	s.Append(core.Item{ID: "old"})
	s.Replace([]core.Item{{ID: "1"}, {ID: "2"}})

	if _, ok := s.Get("old"); ok {
		t.Fatalf("replace should discard previous items")
	}
	if !s.Remove("1") || s.Remove("1") {
		t.Fatalf("remove should succeed once")
	}
	if all := s.All(); len(all) != 1 || all[0].ID != "2" {
		t.Fatalf("unexpected items %+v", all)
	}
}

func TestItemsAllReturnsCopy(t *testing.T) {
	s := NewItems()
	s.Append(core.Item{ID: "1", Name: "Chai"})
	all := s.All()
	all[0].Name = "changed"
	if it, _ := s.Get("1"); it.Name != "Chai" {
		t.Fatalf("All should not expose internal storage")
	}
}

package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"hissab/internal/core"
	"hissab/internal/log"
	"hissab/internal/remote"
	"hissab/internal/remote/memory"
	"hissab/internal/store"
)

func newCatalog(rs remote.ItemStore) (*Catalog, *store.Items) {
	items := store.NewItems()
	return NewCatalog(rs, items, testOptions()), items
}

func strPtr(s string) *string { return &s }

func moneyPtr(m core.Money) *core.Money { return &m }

func TestLoadAll_FromRemote(t *testing.T) {
	rs := memory.New()
	rs.SeedItems(
		core.Item{ID: "b", Name: "Water", CurrentPrice: core.Units(10), CreatedAt: fixedNow.Add(1)},
		core.Item{ID: "a", Name: "Chai", CurrentPrice: core.Units(15), CreatedAt: fixedNow},
	)
	c, _ := newCatalog(rs)

	items, seeded := c.LoadAll(context.Background())
	if seeded {
		t.Fatal("seeded on a successful load")
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("items = %+v, want creation order", items)
	}
}

func TestLoadAll_FailureResetsToSeed(t *testing.T) {
	rs := memory.New()
	rs.FailOn(memory.OpListItems, nil)
	c, items := newCatalog(rs)
	items.Append(core.Item{ID: "old", Name: "Biscuit"})

	for i := 0; i < 2; i++ {
		got, seeded := c.LoadAll(context.Background())
		if !seeded {
			t.Fatalf("pass %d: not seeded", i)
		}
		if len(got) != 4 || items.Len() != 4 {
			t.Fatalf("pass %d: %d items, want 4", i, items.Len())
		}
	}

	want := []struct {
		id    string
		name  string
		price int64
	}{
		{"1", "Chai", 1500},
		{"2", "Cigarettes", 2000},
		{"3", "Water", 1000},
		{"4", "Pratha", 2500},
	}
	all := c.All()
	for i, w := range want {
		if all[i].ID != w.id || all[i].Name != w.name || all[i].CurrentPrice.Cents != w.price {
			t.Errorf("seed %d = %+v, want %v", i, all[i], w)
		}
		if !all[i].CreatedAt.Equal(fixedNow) {
			t.Errorf("seed %d created_at = %v", i, all[i].CreatedAt)
		}
	}
	if _, ok := c.GetByID("old"); ok {
		t.Fatal("prior item survived the reset")
	}
}

func TestAdd(t *testing.T) {
	t.Run("remote ok keeps server record", func(t *testing.T) {
		rs := memory.New()
		c, _ := newCatalog(rs)
		it := c.Add(context.Background(), "Tea", core.Units(15))

		remoteItems := rs.Items()
		if len(remoteItems) != 1 || remoteItems[0].ID != it.ID {
			t.Fatalf("local id %q not assigned by remote %+v", it.ID, remoteItems)
		}
		if got, ok := c.GetByID(it.ID); !ok || got.Name != "Tea" {
			t.Fatalf("GetByID = %+v, %v", got, ok)
		}
	})

	t.Run("remote failure appends local record", func(t *testing.T) {
		rs := memory.New()
		rs.FailOn(memory.OpCreateItem, nil)
		c, items := newCatalog(rs)

		a := c.Add(context.Background(), "Tea", core.Units(15))
		b := c.Add(context.Background(), "Tea", core.Units(15))
		if a.ID == "" || a.ID == b.ID {
			t.Fatalf("ids = %q, %q; want two distinct local ids", a.ID, b.ID)
		}
		if items.Len() != 2 {
			t.Fatalf("len = %d, want 2 (no dedup)", items.Len())
		}
		if !a.CreatedAt.Equal(fixedNow) || !a.UpdatedAt.Equal(fixedNow) {
			t.Fatalf("timestamps = %v/%v", a.CreatedAt, a.UpdatedAt)
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Run("remote ok replaces with response", func(t *testing.T) {
		rs := memory.New()
		c, _ := newCatalog(rs)
		it := c.Add(context.Background(), "Tea", core.Units(15))

		got, ok := c.Update(context.Background(), it.ID, core.ItemPatch{CurrentPrice: moneyPtr(core.Units(20))})
		if !ok || got.CurrentPrice != core.Units(20) || got.Name != "Tea" {
			t.Fatalf("Update = %+v, %v", got, ok)
		}
		if rs.Items()[0].CurrentPrice != core.Units(20) {
			t.Fatal("remote not updated")
		}
	})

	t.Run("remote failure patches locally", func(t *testing.T) {
		rs := memory.New()
		rs.FailOn(memory.OpUpdateItem, nil)
		c, items := newCatalog(rs)
		items.Append(core.Item{ID: "x", Name: "Tea", CurrentPrice: core.Units(15)})

		got, ok := c.Update(context.Background(), "x", core.ItemPatch{Name: strPtr("Green tea")})
		if !ok {
			t.Fatal("update reported missing")
		}
		if got.Name != "Green tea" || got.CurrentPrice != core.Units(15) {
			t.Fatalf("patched = %+v", got)
		}
		if !got.UpdatedAt.Equal(fixedNow) {
			t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, fixedNow)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		c, _ := newCatalog(remote.Offline{})
		if _, ok := c.Update(context.Background(), "nope", core.ItemPatch{Name: strPtr("x")}); ok {
			t.Fatal("expected missing")
		}
	})
}

func TestDelete_RemovesLocallyEvenOnFailure(t *testing.T) {
	rs := memory.New()
	c, _ := newCatalog(rs)
	it := c.Add(context.Background(), "Tea", core.Units(15))

	rs.FailOn(memory.OpDeleteItem, nil)
	if !c.Delete(context.Background(), it.ID) {
		t.Fatal("Delete reported missing")
	}
	if _, ok := c.GetByID(it.ID); ok {
		t.Fatal("item still present locally")
	}
	if len(rs.Items()) != 1 {
		t.Fatal("remote delete should have failed")
	}
}

func TestNewCatalog_NilRemoteIsOffline(t *testing.T) {
	c, _ := newCatalog(nil)
	if _, seeded := c.LoadAll(context.Background()); !seeded {
		t.Fatal("nil remote should fall back to seed")
	}
}

func TestAdd_FallbackWarningCarriesItem(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions()
	opts.Logger = log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)})

	rs := memory.New()
	rs.FailOn(memory.OpCreateItem, nil)
	c := NewCatalog(rs, store.NewItems(), opts)

	it := c.Add(context.Background(), "Tea", core.Units(15))

	out := buf.String()
	for _, want := range []string{"operation=create", "item_id=" + it.ID, "item_name=Tea", "amount_cents=1500", "error="} {
		if !strings.Contains(out, want) {
			t.Errorf("warning = %q, want %s", out, want)
		}
	}
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"

	"hissab/internal/core"
)

func sampleSnapshot() Snapshot {
	created := time.Date(2025, 3, 1, 8, 15, 30, 123456789, time.UTC)
	last := time.Date(2025, 3, 2, 18, 0, 0, 0, time.UTC)
	p1 := core.Purchase{
		ID:        "p1",
		ItemID:    "1",
		ItemName:  "Chai",
		Quantity:  3,
		UnitPrice: core.Units(15),
		Total:     core.Units(45),
		Date:      core.NewDate(2025, 3, 1),
		CreatedAt: created,
	}
	p2 := core.Purchase{
		ID:        "p2",
		ItemID:    "x",
		ItemName:  "Samosa",
		Quantity:  2,
		UnitPrice: core.Money{Cents: 1250},
		Total:     core.Money{Cents: 2500},
		Date:      core.NewDate(2025, 3, 2),
		CreatedAt: created.Add(time.Hour),
	}
	return Snapshot{
		Items: []core.Item{
			{ID: "1", Name: "Chai", CurrentPrice: core.Units(15), CreatedAt: created, UpdatedAt: created},
			{ID: "x", Name: "Samosa", CurrentPrice: core.Money{Cents: 1250}, CreatedAt: created, UpdatedAt: last},
		},
		Purchases:      []core.Purchase{p1, p2},
		SelectedPeriod: core.PeriodWeek,
		SelectedDate:   core.NewDate(2025, 3, 2),
		DarkMode:       true,
		PendingSyncs: []core.PendingSync{
			{Op: core.SyncInsert, Purchase: p2, Revision: 4, QueuedAt: last},
		},
		LastSyncAt: &last,
	}
}

// assertSnapshotEqual compares field by field; time values use Equal.
func assertSnapshotEqual(t *testing.T, got, want Snapshot) {
	t.Helper()
	if len(got.Items) != len(want.Items) {
		t.Fatalf("items = %d, want %d", len(got.Items), len(want.Items))
	}
	for i := range want.Items {
		g, w := got.Items[i], want.Items[i]
		if g.ID != w.ID || g.Name != w.Name || g.CurrentPrice != w.CurrentPrice ||
			!g.CreatedAt.Equal(w.CreatedAt) || !g.UpdatedAt.Equal(w.UpdatedAt) {
			t.Errorf("item %d = %+v, want %+v", i, g, w)
		}
	}
	if len(got.Purchases) != len(want.Purchases) {
		t.Fatalf("purchases = %d, want %d", len(got.Purchases), len(want.Purchases))
	}
	for i := range want.Purchases {
		assertPurchaseEqual(t, got.Purchases[i], want.Purchases[i])
	}
	if got.SelectedPeriod != want.SelectedPeriod {
		t.Errorf("period = %s, want %s", got.SelectedPeriod, want.SelectedPeriod)
	}
	if got.SelectedDate.Compare(want.SelectedDate) != 0 {
		t.Errorf("date = %s, want %s", got.SelectedDate, want.SelectedDate)
	}
	if got.DarkMode != want.DarkMode {
		t.Errorf("dark mode = %v, want %v", got.DarkMode, want.DarkMode)
	}
	if len(got.PendingSyncs) != len(want.PendingSyncs) {
		t.Fatalf("pending = %d, want %d", len(got.PendingSyncs), len(want.PendingSyncs))
	}
	for i := range want.PendingSyncs {
		g, w := got.PendingSyncs[i], want.PendingSyncs[i]
		if g.Op != w.Op || g.Revision != w.Revision || !g.QueuedAt.Equal(w.QueuedAt) {
			t.Errorf("pending %d = %+v, want %+v", i, g, w)
		}
		assertPurchaseEqual(t, g.Purchase, w.Purchase)
	}
	switch {
	case want.LastSyncAt == nil && got.LastSyncAt != nil:
		t.Errorf("lastSyncAt = %v, want nil", got.LastSyncAt)
	case want.LastSyncAt != nil && (got.LastSyncAt == nil || !got.LastSyncAt.Equal(*want.LastSyncAt)):
		t.Errorf("lastSyncAt = %v, want %v", got.LastSyncAt, want.LastSyncAt)
	}
}

func assertPurchaseEqual(t *testing.T, g, w core.Purchase) {
	t.Helper()
	if g.ID != w.ID || g.ItemID != w.ItemID || g.ItemName != w.ItemName || g.Quantity != w.Quantity ||
		g.UnitPrice != w.UnitPrice || g.Total != w.Total || g.Date.Compare(w.Date) != 0 ||
		!g.CreatedAt.Equal(w.CreatedAt) {
		t.Errorf("purchase = %+v, want %+v", g, w)
	}
}

func TestEncodeDecode(t *testing.T) {
	want := sampleSnapshot()
	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertSnapshotEqual(t, got, want)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"future version", `{"version":99,"state":{}}`, ErrUnsupportedVersion},
		{"missing version", `{"state":{}}`, ErrUnsupportedVersion},
		{"garbage", `not json`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecode_EmptyState(t *testing.T) {
	got, err := Decode([]byte(`{"version":1,"state":{}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, Snapshot{}) {
		t.Fatalf("got %+v, want zero snapshot", got)
	}
}

type storeFactory func(t *testing.T, dir, namespace string) StateStore

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"sqlite": func(t *testing.T, dir, namespace string) StateStore {
			s, err := NewSQLiteStore(filepath.Join(dir, "state.db"), namespace)
			if err != nil {
				t.Fatalf("NewSQLiteStore: %v", err)
			}
			return s
		},
		"file": func(t *testing.T, dir, namespace string) StateStore {
			s, err := NewFileStore(filepath.Join(dir, "state.json"), namespace)
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			return s
		},
	}
}

func TestStateStores(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Run("load before save", func(t *testing.T) {
				s := open(t, t.TempDir(), "")
				defer s.Close()
				if _, err := s.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
					t.Fatalf("err = %v, want ErrNoSnapshot", err)
				}
			})

			t.Run("round trip survives reopen", func(t *testing.T) {
				dir := t.TempDir()
				want := sampleSnapshot()

				s := open(t, dir, "")
				if err := s.Save(ctx, want); err != nil {
					t.Fatalf("Save: %v", err)
				}
				s.Close()

				s = open(t, dir, "")
				defer s.Close()
				got, err := s.Load(ctx)
				if err != nil {
					t.Fatalf("Load: %v", err)
				}
				assertSnapshotEqual(t, got, want)
			})

			t.Run("save overwrites", func(t *testing.T) {
				s := open(t, t.TempDir(), "")
				defer s.Close()
				if err := s.Save(ctx, sampleSnapshot()); err != nil {
					t.Fatalf("Save: %v", err)
				}
				next := Snapshot{SelectedPeriod: core.PeriodDay}
				if err := s.Save(ctx, next); err != nil {
					t.Fatalf("Save: %v", err)
				}
				got, err := s.Load(ctx)
				if err != nil {
					t.Fatalf("Load: %v", err)
				}
				assertSnapshotEqual(t, got, next)
			})

			t.Run("namespaces are isolated", func(t *testing.T) {
				dir := t.TempDir()
				a := open(t, dir, "a")
				defer a.Close()
				b := open(t, dir, "b")
				defer b.Close()

				if err := a.Save(ctx, sampleSnapshot()); err != nil {
					t.Fatalf("Save: %v", err)
				}
				if _, err := b.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
					t.Fatalf("namespace b sees a's state: %v", err)
				}
			})
		})
	}
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "state.json"), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Save(context.Background(), sampleSnapshot()); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Fatalf("dir entries = %v", entries)
	}
}

func TestOpen(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	tests := []struct {
		name     string
		cfg      Config
		wantFile string
		wantErr  bool
	}{
		{"sqlite default", Config{SQLitePath: "~/data/state.db"}, filepath.Join(home, "data", "state.db"), false},
		{"file", Config{Backend: BackendFile, FilePath: "~/state.json"}, "", false},
		{"unknown", Config{Backend: "redis"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			if err := s.Save(context.Background(), Snapshot{DarkMode: true}); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if tt.wantFile != "" {
				if _, err := os.Stat(tt.wantFile); err != nil {
					t.Fatalf("expected %s: %v", tt.wantFile, err)
				}
			}
		})
	}
}

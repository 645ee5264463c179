package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"hissab/internal/app"
	"hissab/internal/backend"
	"hissab/internal/config"
	"hissab/internal/core"
	"hissab/internal/log"
	"hissab/internal/remote"
	"hissab/internal/remote/memory"
)

func testRuntime(t *testing.T, rs remote.Backend) *runtime {
	t.Helper()
	a := app.New(app.Deps{Remote: rs, Logger: log.Discard(), Timeout: time.Second})
	t.Cleanup(func() { a.Close(context.Background()) })
	return &runtime{
		cfg:     &config.Config{RemoteTimeout: time.Second},
		log:     log.Discard(),
		backend: &backend.BackendResult{Backend: rs, Cleanup: func() error { return nil }},
		app:     a,
	}
}

func biscuit() core.Item {
	return core.Item{ID: "b1", Name: "Biscuit", CurrentPrice: core.Units(5), CreatedAt: time.Now().UTC()}
}

func TestUseOffline(t *testing.T) {
	res := &backend.BackendResult{Backend: memory.New()}

	useOffline(res, false)
	if _, ok := res.Backend.(*memory.Store); !ok {
		t.Fatalf("backend = %T, want the configured one kept", res.Backend)
	}

	useOffline(res, true)
	if err := res.Backend.Ping(context.Background()); !errors.Is(err, remote.ErrUnavailable) {
		t.Errorf("Ping() error = %v, want ErrUnavailable", err)
	}
}

func TestStart_RefreshesCatalogWhenReachable(t *testing.T) {
	ctx := context.Background()
	rs := memory.New()
	r := testRuntime(t, rs)

	// An earlier offline run left the seed catalog behind
	rs.FailOn(memory.OpListItems, nil)
	if _, seeded, _ := r.app.LoadItems(ctx); !seeded {
		t.Fatal("LoadItems did not install the seed catalog")
	}
	rs.Recover()
	rs.SeedItems(biscuit())

	r.start(ctx, true)

	items := r.app.Items()
	if len(items) != 1 || items[0].Name != "Biscuit" {
		t.Fatalf("items = %+v, want the remote catalog", items)
	}
	if !r.app.SyncStatus().Online {
		t.Error("app is not online after the backend answered")
	}
}

func TestStart_UnreachableKeepsKnownItems(t *testing.T) {
	ctx := context.Background()
	rs := memory.New()
	rs.SeedItems(biscuit())
	r := testRuntime(t, rs)
	if _, seeded, _ := r.app.LoadItems(ctx); seeded {
		t.Fatal("LoadItems fell back to the seed catalog")
	}

	rs.FailOn(memory.OpPing, nil)
	rs.FailOn(memory.OpListItems, nil)
	r.start(ctx, true)
	r.start(ctx, false)

	items := r.app.Items()
	if len(items) != 1 || items[0].Name != "Biscuit" {
		t.Fatalf("items = %+v, want the known catalog kept", items)
	}
}

func TestStart_EmptyCatalogOfflineInstallsSeed(t *testing.T) {
	r := testRuntime(t, remote.Offline{})

	r.start(context.Background(), false)

	if n := len(r.app.Items()); n != 4 {
		t.Fatalf("items = %d, want the 4 seed items", n)
	}
}

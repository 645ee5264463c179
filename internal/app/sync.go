package app

import (
	"context"

	"hissab/internal/core"
	"hissab/internal/log"
	"hissab/internal/services"
)

// GoOnline records that the backend became reachable and runs one drain
// pass synchronously.
func (a *App) GoOnline(ctx context.Context) (int, error) {
	a.sync.SetOnline(true)
	a.log.InfoContext(ctx, "Backend reachable", log.FieldPending, a.sync.Status().Pending)
	return a.runSync(ctx)
}

// GoOffline records that the backend became unreachable.
func (a *App) GoOffline() {
	a.sync.OnUnreachable()
	a.log.Info("Backend unreachable, working locally")
}

// Sync runs one drain pass now. It returns services.ErrOffline when offline.
func (a *App) Sync(ctx context.Context) (int, error) {
	return a.runSync(ctx)
}

func (a *App) SyncStatus() services.SyncStatus {
	return a.sync.Status()
}

func (a *App) SyncState() services.State {
	return a.sync.State()
}

// Pending returns the unconfirmed purchase writes in drain order.
func (a *App) Pending() []core.PendingSync {
	return a.sync.Pending()
}

// IsPending reports whether the purchase has an unconfirmed write.
func (a *App) IsPending(id string) bool {
	return a.sync.IsPending(id)
}

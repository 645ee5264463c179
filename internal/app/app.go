// Package app is the application state object: it owns the catalog, the
// ledger, the view selection and the sync coordinator, persists their
// durable subset after every mutation and is the only mutation entry point
// for the outer layers.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hissab/internal/amqp"
	"hissab/internal/core"
	"hissab/internal/log"
	"hissab/internal/remote"
	"hissab/internal/services"
	"hissab/internal/storage"
	"hissab/internal/store"
)

var (
	ErrUnknownItem      = fmt.Errorf("%w: unknown item", core.ErrValidation)
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrEmptyBasket      = fmt.Errorf("%w: no purchase lines", core.ErrValidation)
	ErrClosed           = errors.New("app closed")
)

// Publisher receives ledger and sync events. Failures are logged only.
type Publisher interface {
	Publish(ctx context.Context, ev *amqp.Event) error
}

// Deps are the collaborators of an App. Every field is optional: a nil
// Remote behaves as an unreachable backend, a nil State skips persistence.
type Deps struct {
	Remote    remote.Backend
	State     storage.StateStore
	Publisher Publisher
	Logger    *log.Logger
	Now       func() time.Time
	// Timeout bounds every remote call (default: 10s)
	Timeout time.Duration
}

type App struct {
	items   *store.Items
	ledger  *store.Ledger
	view    *store.View
	catalog *services.Catalog
	sync    *services.SyncCoordinator
	remote  remote.Backend
	timeout time.Duration

	state     storage.StateStore
	publisher Publisher
	log       *log.Logger
	nowFn     func() time.Time

	persistMu   sync.Mutex
	stateClosed bool // guarded by persistMu

	// bgMu orders tasks.Add against the Wait in Close
	bgMu     sync.Mutex
	closed   bool
	tasks    sync.WaitGroup
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func New(deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = log.ForComponent(log.ComponentApp)
	}
	var rs remote.Backend = remote.Offline{}
	if deps.Remote != nil {
		rs = deps.Remote
	}

	if deps.Timeout <= 0 {
		deps.Timeout = services.DefaultTimeout
	}
	opts := services.Options{Timeout: deps.Timeout, Now: deps.Now}
	items := store.NewItems()
	bgCtx, cancel := context.WithCancel(context.Background())

	return &App{
		items:     items,
		ledger:    store.NewLedger(deps.Now),
		view:      store.NewView(core.DateOf(deps.Now())),
		catalog:   services.NewCatalog(rs, items, opts),
		sync:      services.NewSyncCoordinator(rs, opts),
		remote:    rs,
		timeout:   deps.Timeout,
		state:     deps.State,
		publisher: deps.Publisher,
		log:       deps.Logger,
		nowFn:     deps.Now,
		bgCtx:     bgCtx,
		bgCancel:  cancel,
	}
}

// Hydrate restores the persisted state. A store with nothing saved leaves
// the defaults in place. Transient sync state always starts reset.
func (a *App) Hydrate(ctx context.Context) error {
	if a.state == nil {
		return nil
	}
	snap, err := a.state.Load(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		a.log.InfoContext(ctx, "No saved state, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	a.items.Replace(snap.Items)
	a.ledger.Replace(snap.Purchases)

	vs := store.ViewState{
		Period:   snap.SelectedPeriod,
		Date:     snap.SelectedDate,
		DarkMode: snap.DarkMode,
	}
	if vs.Date.IsZero() {
		vs.Date = core.DateOf(a.nowFn())
	}
	a.view.Restore(vs)

	var last time.Time
	if snap.LastSyncAt != nil {
		last = *snap.LastSyncAt
	}
	a.sync.Restore(snap.PendingSyncs, last)

	a.log.InfoContext(ctx, "State restored",
		"items", len(snap.Items),
		"purchases", len(snap.Purchases),
		log.FieldPending, len(snap.PendingSyncs))
	return nil
}

// Snapshot returns the durable subset of the current state.
func (a *App) Snapshot() storage.Snapshot {
	vs := a.view.Get()
	st := a.sync.Status()
	snap := storage.Snapshot{
		Items:          a.items.All(),
		Purchases:      a.ledger.All(),
		SelectedPeriod: vs.Period,
		SelectedDate:   vs.Date,
		DarkMode:       vs.DarkMode,
		PendingSyncs:   a.sync.Pending(),
	}
	if !st.LastSyncAt.IsZero() {
		last := st.LastSyncAt
		snap.LastSyncAt = &last
	}
	return snap
}

// persist writes the current snapshot. Saves are serialized so that a later
// snapshot never gets overwritten by an earlier one. Once Close has released
// the state store it returns ErrClosed.
func (a *App) persist(ctx context.Context) error {
	if a.state == nil {
		return nil
	}
	a.persistMu.Lock()
	defer a.persistMu.Unlock()
	if a.stateClosed {
		return ErrClosed
	}
	return a.saveLocked(ctx)
}

// Callers hold a.persistMu.
func (a *App) saveLocked(ctx context.Context) error {
	if err := a.state.Save(context.WithoutCancel(ctx), a.Snapshot()); err != nil {
		a.log.ErrorContext(ctx, "Failed to persist state",
			log.FieldOperation, log.OpSave,
			log.FieldError, err)
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// Wait blocks until every background task started so far has finished.
func (a *App) Wait() {
	a.tasks.Wait()
}

// Close stops accepting background work, waits for running tasks until ctx
// is done, writes a final snapshot and closes the state store.
func (a *App) Close(ctx context.Context) error {
	a.bgMu.Lock()
	if a.closed {
		a.bgMu.Unlock()
		return nil
	}
	a.closed = true
	a.bgMu.Unlock()

	done := make(chan struct{})
	go func() {
		a.tasks.Wait()
		close(done)
	}()

	var errs []error
	select {
	case <-done:
	case <-ctx.Done():
		a.bgCancel()
		<-done
		errs = append(errs, fmt.Errorf("wait for background tasks: %w", ctx.Err()))
	}
	a.bgCancel()

	if a.state != nil {
		a.persistMu.Lock()
		if err := a.saveLocked(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := a.state.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close state store: %w", err))
		}
		a.stateClosed = true
		a.persistMu.Unlock()
	}
	return errors.Join(errs...)
}

// goBackground runs fn as a tracked task. It is dropped once the app is closed.
func (a *App) goBackground(fn func(ctx context.Context)) {
	a.bgMu.Lock()
	if a.closed {
		a.bgMu.Unlock()
		return
	}
	a.tasks.Add(1)
	a.bgMu.Unlock()
	go func() {
		defer a.tasks.Done()
		fn(a.bgCtx)
	}()
}

func (a *App) publish(ev *amqp.Event) {
	if a.publisher == nil {
		return
	}
	a.goBackground(func(ctx context.Context) {
		if err := a.publisher.Publish(ctx, ev); err != nil {
			a.log.WarnContext(ctx, "Failed to publish event",
				"type", ev.Type,
				log.FieldError, err)
		}
	})
}

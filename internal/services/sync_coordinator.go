package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hissab/internal/core"
	"hissab/internal/log"
	"hissab/internal/remote"
)

// State of the coordinator, derived from the online and loading flags.
type State string

const (
	StateOffline       State = "offline"
	StateOnlineIdle    State = "online_idle"
	StateOnlineSyncing State = "online_syncing"
)

var (
	// ErrOffline is returned by Sync when no connectivity is known.
	ErrOffline = errors.New("sync skipped: offline")
	// ErrSyncInProgress is returned by Sync when a pass is already running.
	ErrSyncInProgress = errors.New("sync skipped: pass already running")
)

// SyncStatus is a snapshot of the sync state.
type SyncStatus struct {
	Online     bool
	Loading    bool
	LastSyncAt time.Time
	Error      string
	Pending    int
}

// SyncError names the entry that stopped a drain pass.
type SyncError struct {
	PurchaseID string
	Op         core.SyncOp
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s purchase %s: %v", e.Op, e.PurchaseID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// SyncCoordinator tracks connectivity and the queue of unconfirmed purchase
// writes, and drains that queue to the backend in insertion order. The
// queue holds at most one entry per purchase id.
type SyncCoordinator struct {
	remote remote.PurchaseStore
	opts   Options

	mu         sync.Mutex
	online     bool
	loading    bool
	lastSyncAt time.Time
	lastErr    string
	queue      []core.PendingSync
	revision   int64
	inflight   string
}

func NewSyncCoordinator(rs remote.PurchaseStore, opts Options) *SyncCoordinator {
	if rs == nil {
		rs = remote.Offline{}
	}
	return &SyncCoordinator{
		remote: rs,
		opts:   opts.withDefaults(log.ComponentSync),
	}
}

// SetOnline records an external connectivity signal.
func (c *SyncCoordinator) SetOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = online
}

// OnReachable marks the coordinator online and runs one drain pass.
func (c *SyncCoordinator) OnReachable(ctx context.Context) (int, error) {
	c.SetOnline(true)
	return c.Sync(ctx)
}

// OnUnreachable marks the coordinator offline.
func (c *SyncCoordinator) OnUnreachable() {
	c.SetOnline(false)
}

func (c *SyncCoordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case !c.online:
		return StateOffline
	case c.loading:
		return StateOnlineSyncing
	default:
		return StateOnlineIdle
	}
}

func (c *SyncCoordinator) Status() SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SyncStatus{
		Online:     c.online,
		Loading:    c.loading,
		LastSyncAt: c.lastSyncAt,
		Error:      c.lastErr,
		Pending:    len(c.queue),
	}
}

// Pending returns a copy of the queue in drain order.
func (c *SyncCoordinator) Pending() []core.PendingSync {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.PendingSync(nil), c.queue...)
}

// IsPending reports whether the purchase has an unconfirmed write.
func (c *SyncCoordinator) IsPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(id) >= 0
}

// Restore replaces the queue and the last sync time with persisted values.
// Transient state (online, loading, error) is reset. Duplicate ids keep the
// first position and the last snapshot.
func (c *SyncCoordinator) Restore(entries []core.PendingSync, lastSyncAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = false
	c.loading = false
	c.lastErr = ""
	c.lastSyncAt = lastSyncAt
	c.queue = nil
	c.revision = 0
	for _, e := range entries {
		if e.Revision > c.revision {
			c.revision = e.Revision
		}
		if i := c.indexOf(e.Purchase.ID); i >= 0 {
			c.queue[i] = e
			continue
		}
		c.queue = append(c.queue, e)
	}
}

// AddPending queues the insert of p. When p is already queued its snapshot
// is refreshed in place and the queued operation is kept.
func (c *SyncCoordinator) AddPending(p core.Purchase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(p.ID); i >= 0 {
		c.queue[i].Purchase = p
		c.queue[i].Revision = c.nextRevision()
	} else {
		c.queue = append(c.queue, c.newEntry(core.SyncInsert, p))
	}
}

// RemovePending drops the entry of the given purchase, if any.
func (c *SyncCoordinator) RemovePending(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(id)
}

// QueueUpdate queues the new state of p. A queued insert keeps being an
// insert with the newer snapshot.
func (c *SyncCoordinator) QueueUpdate(p core.Purchase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(p.ID)
	switch {
	case i < 0:
		c.queue = append(c.queue, c.newEntry(core.SyncUpdate, p))
	case c.queue[i].Op == core.SyncDelete:
		// Deleted locally; nothing left to update
	default:
		c.queue[i].Purchase = p
		c.queue[i].Revision = c.nextRevision()
	}
}

// QueueDelete queues the removal of p. An insert that never reached the
// backend is dropped instead, unless it is being sent right now.
func (c *SyncCoordinator) QueueDelete(p core.Purchase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(p.ID)
	switch {
	case i < 0:
		c.queue = append(c.queue, c.newEntry(core.SyncDelete, p))
	case c.queue[i].Op == core.SyncInsert && c.inflight != p.ID:
		c.remove(p.ID)
	default:
		c.queue[i].Op = core.SyncDelete
		c.queue[i].Purchase = p
		c.queue[i].Revision = c.nextRevision()
	}
}

// Sync runs one drain pass. It is a no-op returning ErrOffline or
// ErrSyncInProgress when offline or when another pass is running.
// Entries are sent in queue order; the first failure stops the pass and
// leaves that entry and every later one queued. The number of confirmed
// entries is returned.
func (c *SyncCoordinator) Sync(ctx context.Context) (int, error) {
	c.mu.Lock()
	if !c.online {
		c.mu.Unlock()
		return 0, ErrOffline
	}
	if c.loading {
		c.mu.Unlock()
		return 0, ErrSyncInProgress
	}
	c.loading = true
	c.lastErr = ""
	batch := append([]core.PendingSync(nil), c.queue...)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.inflight = ""
		c.mu.Unlock()
	}()

	start := c.opts.Now()
	synced := 0
	for _, queued := range batch {
		e, ok := c.claim(queued.Purchase.ID)
		if !ok {
			continue
		}

		if err := c.send(ctx, e); err != nil {
			serr := &SyncError{PurchaseID: e.Purchase.ID, Op: e.Op, Err: err}
			c.mu.Lock()
			c.lastErr = serr.Error()
			c.inflight = ""
			c.mu.Unlock()

			c.opts.Logger.WarnContext(ctx, "Sync pass aborted",
				log.FieldPurchaseID, e.Purchase.ID,
				log.FieldOperation, string(e.Op),
				log.FieldSynced, synced,
				log.FieldError, err)
			return synced, serr
		}

		c.mu.Lock()
		c.confirm(e)
		c.inflight = ""
		c.mu.Unlock()
		synced++
	}

	c.mu.Lock()
	c.lastSyncAt = c.opts.Now().UTC()
	pending := len(c.queue)
	c.mu.Unlock()

	if synced > 0 {
		c.opts.Logger.InfoContext(ctx, "Sync pass completed",
			log.FieldSynced, synced,
			log.FieldPending, pending,
			log.FieldDuration, c.opts.Now().Sub(start).Milliseconds())
	}
	return synced, nil
}

// send performs the remote write of one entry.
func (c *SyncCoordinator) send(ctx context.Context, e core.PendingSync) error {
	rctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	switch e.Op {
	case core.SyncInsert:
		_, err := c.remote.InsertPurchase(rctx, e.Purchase)
		if remote.IsConflict(err) {
			// An earlier attempt landed but its answer was lost
			_, err = c.remote.UpdatePurchase(rctx, e.Purchase)
		}
		return err
	case core.SyncUpdate:
		_, err := c.remote.UpdatePurchase(rctx, e.Purchase)
		if errors.Is(err, remote.ErrNotFound) {
			_, err = c.remote.InsertPurchase(rctx, e.Purchase)
		}
		return err
	case core.SyncDelete:
		return c.remote.DeletePurchase(rctx, e.Purchase.ID)
	default:
		return fmt.Errorf("unknown sync operation %q", e.Op)
	}
}

// confirm clears the entry sent as e unless it changed meanwhile. A newer
// insert snapshot becomes an update since the row now exists remotely.
// Callers hold c.mu.
func (c *SyncCoordinator) confirm(e core.PendingSync) {
	i := c.indexOf(e.Purchase.ID)
	if i < 0 {
		return
	}
	if c.queue[i].Revision == e.Revision {
		c.queue = append(c.queue[:i], c.queue[i+1:]...)
		return
	}
	if e.Op == core.SyncInsert && c.queue[i].Op == core.SyncInsert {
		c.queue[i].Op = core.SyncUpdate
	}
}

// claim marks the purchase as in flight and returns its current entry.
// Entries dropped since the pass started are skipped.
func (c *SyncCoordinator) claim(id string) (core.PendingSync, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return core.PendingSync{}, false
	}
	c.inflight = id
	return c.queue[i], true
}

// Callers hold c.mu.
func (c *SyncCoordinator) indexOf(id string) int {
	for i := range c.queue {
		if c.queue[i].Purchase.ID == id {
			return i
		}
	}
	return -1
}

// Callers hold c.mu.
func (c *SyncCoordinator) remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.queue = append(c.queue[:i], c.queue[i+1:]...)
	return true
}

// Callers hold c.mu.
func (c *SyncCoordinator) nextRevision() int64 {
	c.revision++
	return c.revision
}

// Callers hold c.mu.
func (c *SyncCoordinator) newEntry(op core.SyncOp, p core.Purchase) core.PendingSync {
	return core.PendingSync{
		Op:       op,
		Purchase: p,
		Revision: c.nextRevision(),
		QueuedAt: c.opts.Now().UTC(),
	}
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hissab/internal/core"
	"hissab/internal/log"
	"hissab/internal/remote"
	"hissab/internal/store"
)

// SeedItems is the catalog installed whenever the remote listing fails.
var SeedItems = []struct {
	ID    string
	Name  string
	Price core.Money
}{
	{"1", "Chai", core.Units(15)},
	{"2", "Cigarettes", core.Units(20)},
	{"3", "Water", core.Units(10)},
	{"4", "Pratha", core.Units(25)},
}

// Catalog writes item changes through to the remote backend and falls back
// to local-only changes when the backend fails. Catalog writes are never
// queued for retry and failures are only logged.
type Catalog struct {
	remote remote.ItemStore
	items  *store.Items
	opts   Options
}

func NewCatalog(rs remote.ItemStore, items *store.Items, opts Options) *Catalog {
	if rs == nil {
		rs = remote.Offline{}
	}
	return &Catalog{
		remote: rs,
		items:  items,
		opts:   opts.withDefaults(log.ComponentCatalog),
	}
}

// LoadAll replaces the local catalog with the remote one. On failure the
// local catalog is reset to the seed items; seeded reports that case.
func (c *Catalog) LoadAll(ctx context.Context) (items []core.Item, seeded bool) {
	rctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	remoteItems, err := c.remote.ListItems(rctx)
	if err != nil {
		c.opts.Logger.WarnContext(ctx, "Failed to load items, resetting to seed catalog",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
		seed := SeedCatalog(c.opts.Now().UTC())
		c.items.Replace(seed)
		return seed, true
	}

	c.items.Replace(remoteItems)
	c.opts.Logger.DebugContext(ctx, "Loaded items from remote", "count", len(remoteItems))
	return c.items.All(), false
}

// Add creates an item remotely; a local record with a fresh id is appended
// when the backend refuses or cannot be reached.
func (c *Catalog) Add(ctx context.Context, name string, price core.Money) core.Item {
	rctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	it, err := c.remote.CreateItem(rctx, name, price)
	if err != nil {
		now := c.opts.Now().UTC()
		it = core.Item{
			ID:           uuid.NewString(),
			Name:         name,
			CurrentPrice: price,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		c.opts.Logger.WarnContext(ctx, "Failed to create item remotely, keeping local copy",
			log.NewFields().
				WithOperation(log.OpCreate).
				WithItem(it.ID, name, price.Cents).
				WithError(err).ToSlice()...)
	}

	c.items.Append(it)
	return it
}

// Update edits an item remotely; on failure the patch is applied locally
// and UpdatedAt is stamped with the local clock. ok is false when the item
// is unknown locally.
func (c *Catalog) Update(ctx context.Context, id string, patch core.ItemPatch) (core.Item, bool) {
	rctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	it, err := c.remote.UpdateItem(rctx, id, patch)
	if err == nil {
		if c.items.Put(it) {
			return it, true
		}
		return core.Item{}, false
	}

	c.opts.Logger.WarnContext(ctx, "Failed to update item remotely, applying locally",
		log.FieldOperation, log.OpUpdate,
		log.FieldItemID, id,
		log.FieldError, err)
	return c.items.Patch(id, patch, c.opts.Now().UTC())
}

// Delete removes the item remotely and locally. The local removal happens
// whatever the remote outcome.
func (c *Catalog) Delete(ctx context.Context, id string) bool {
	rctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if err := c.remote.DeleteItem(rctx, id); err != nil {
		c.opts.Logger.WarnContext(ctx, "Failed to delete item remotely, removing locally",
			log.FieldOperation, log.OpDelete,
			log.FieldItemID, id,
			log.FieldError, err)
	}
	return c.items.Remove(id)
}

func (c *Catalog) GetByID(id string) (core.Item, bool) {
	return c.items.Get(id)
}

func (c *Catalog) All() []core.Item {
	return c.items.All()
}

// SeedCatalog returns the seed items stamped with now.
func SeedCatalog(now time.Time) []core.Item {
	out := make([]core.Item, 0, len(SeedItems))
	for _, s := range SeedItems {
		out = append(out, core.Item{
			ID:           s.ID,
			Name:         s.Name,
			CurrentPrice: s.Price,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out
}

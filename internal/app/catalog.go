package app

import (
	"context"

	"hissab/internal/core"
)

// LoadItems refreshes the catalog from the backend. When the backend fails
// the catalog is reset to the seed items and seeded is true.
func (a *App) LoadItems(ctx context.Context) (items []core.Item, seeded bool, err error) {
	items, seeded = a.catalog.LoadAll(ctx)
	return items, seeded, a.persist(ctx)
}

// AddItem validates and creates a catalog item. Backend failures are
// absorbed: the item is then kept locally only.
func (a *App) AddItem(ctx context.Context, name string, price core.Money) (core.Item, error) {
	if err := core.ValidateItemName(name); err != nil {
		return core.Item{}, err
	}
	if err := price.Validate(); err != nil {
		return core.Item{}, err
	}

	it := a.catalog.Add(ctx, name, price)
	return it, a.persist(ctx)
}

// UpdateItem edits name and/or price. Purchases keep the price they were
// recorded with.
func (a *App) UpdateItem(ctx context.Context, id string, patch core.ItemPatch) (core.Item, error) {
	if patch.Name != nil {
		if err := core.ValidateItemName(*patch.Name); err != nil {
			return core.Item{}, err
		}
	}
	if patch.CurrentPrice != nil {
		if err := patch.CurrentPrice.Validate(); err != nil {
			return core.Item{}, err
		}
	}
	if _, ok := a.catalog.GetByID(id); !ok {
		return core.Item{}, ErrUnknownItem
	}
	if patch.IsEmpty() {
		it, _ := a.catalog.GetByID(id)
		return it, nil
	}

	it, ok := a.catalog.Update(ctx, id, patch)
	if !ok {
		return core.Item{}, ErrUnknownItem
	}
	return it, a.persist(ctx)
}

// DeleteItem removes an item from the catalog. Recorded purchases of the
// item are kept.
func (a *App) DeleteItem(ctx context.Context, id string) error {
	if _, ok := a.catalog.GetByID(id); !ok {
		return ErrUnknownItem
	}
	a.catalog.Delete(ctx, id)
	return a.persist(ctx)
}

func (a *App) Item(id string) (core.Item, bool) {
	return a.catalog.GetByID(id)
}

// FindItem resolves an item by id first, then by exact name.
func (a *App) FindItem(ref string) (core.Item, bool) {
	if it, ok := a.catalog.GetByID(ref); ok {
		return it, true
	}
	return a.items.FindByName(ref)
}

func (a *App) Items() []core.Item {
	return a.catalog.All()
}

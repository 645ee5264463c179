package remote

import (
	"context"

	"hissab/internal/core"
)

// Offline is the backend used when no remote is configured. Every call fails
// with ErrDisabled so callers take their local fallback path.
type Offline struct{}

var _ Backend = Offline{}

func (Offline) ListItems(context.Context) ([]core.Item, error) { return nil, ErrDisabled }

func (Offline) CreateItem(context.Context, string, core.Money) (core.Item, error) {
	return core.Item{}, ErrDisabled
}

func (Offline) UpdateItem(context.Context, string, core.ItemPatch) (core.Item, error) {
	return core.Item{}, ErrDisabled
}

func (Offline) DeleteItem(context.Context, string) error { return ErrDisabled }

func (Offline) InsertPurchase(context.Context, core.Purchase) (core.Purchase, error) {
	return core.Purchase{}, ErrDisabled
}

func (Offline) UpdatePurchase(context.Context, core.Purchase) (core.Purchase, error) {
	return core.Purchase{}, ErrDisabled
}

func (Offline) DeletePurchase(context.Context, string) error { return ErrDisabled }

func (Offline) ListPurchases(context.Context, core.DateRange) ([]core.Purchase, error) {
	return nil, ErrDisabled
}

func (Offline) Ping(context.Context) error { return ErrDisabled }

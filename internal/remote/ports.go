// Package remote defines the ports of the remote relational backend. The
// backend is treated as an opaque CRUD API over the items and purchases
// collections.
package remote

import (
	"context"

	"hissab/internal/core"
)

// Ports for outbound adapters.
type (
	// ItemStore is the remote items collection.
	ItemStore interface {
		// ListItems returns every item ordered by creation time ascending.
		ListItems(ctx context.Context) ([]core.Item, error)
		// CreateItem inserts an item and returns the persisted record,
		// including the server-assigned id and timestamps.
		CreateItem(ctx context.Context, name string, price core.Money) (core.Item, error)
		UpdateItem(ctx context.Context, id string, patch core.ItemPatch) (core.Item, error)
		DeleteItem(ctx context.Context, id string) error
	}

	// PurchaseStore is the remote purchases collection.
	PurchaseStore interface {
		// InsertPurchase writes the full record, keeping the local id.
		InsertPurchase(ctx context.Context, p core.Purchase) (core.Purchase, error)
		UpdatePurchase(ctx context.Context, p core.Purchase) (core.Purchase, error)
		DeletePurchase(ctx context.Context, id string) error
		// ListPurchases returns purchases with date in [r.From, r.To], newest first.
		ListPurchases(ctx context.Context, r core.DateRange) ([]core.Purchase, error)
	}

	// Pinger reports whether the backend is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	Backend interface {
		ItemStore
		PurchaseStore
		Pinger
	}
)

package app

import (
	"context"
	"errors"
	"fmt"

	"hissab/internal/amqp"
	"hissab/internal/core"
	"hissab/internal/log"
	"hissab/internal/services"
)

// PurchaseLine is one entry of a basket.
type PurchaseLine struct {
	ItemID   string
	Quantity int
}

// PurchaseUpdate carries the editable fields of a recorded purchase.
// Changing quantity or unit price recomputes the total.
type PurchaseUpdate struct {
	Quantity  *int
	UnitPrice *core.Money
	Date      *core.Date
}

// RecordPurchase records quantity units of an item on date (today when
// zero). Name and unit price are copied from the catalog. The purchase is
// committed locally and queued; delivery to the backend happens in the
// background.
func (a *App) RecordPurchase(ctx context.Context, itemID string, quantity int, date core.Date) (core.Purchase, error) {
	ps, err := a.RecordPurchases(ctx, []PurchaseLine{{ItemID: itemID, Quantity: quantity}}, date)
	if len(ps) == 0 {
		return core.Purchase{}, err
	}
	return ps[0], err
}

// RecordPurchases records a whole basket on one date. Every line is
// validated before anything is recorded.
func (a *App) RecordPurchases(ctx context.Context, lines []PurchaseLine, date core.Date) ([]core.Purchase, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyBasket
	}
	if date.IsZero() {
		date = core.DateOf(a.nowFn())
	}

	inputs := make([]core.PurchaseInput, 0, len(lines))
	for _, line := range lines {
		it, ok := a.catalog.GetByID(line.ItemID)
		if !ok {
			return nil, ErrUnknownItem
		}
		in := core.PurchaseInput{
			ItemID:    it.ID,
			ItemName:  it.Name,
			Quantity:  line.Quantity,
			UnitPrice: it.CurrentPrice,
			Total:     it.CurrentPrice.Times(line.Quantity),
			Date:      date,
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}

	out := make([]core.Purchase, 0, len(inputs))
	for _, in := range inputs {
		p := a.ledger.Add(in)
		a.sync.AddPending(p)
		out = append(out, p)

		a.log.WithFields(log.NewFields().WithPurchase(p.ID, p.ItemID, p.Quantity, p.Total.Cents)).
			DebugContext(ctx, "Purchase recorded")
	}

	err := a.persist(ctx)
	for _, p := range out {
		a.publish(amqp.NewPurchaseEvent(amqp.EventPurchaseRecorded, p))
	}
	a.scheduleSync()
	return out, err
}

// UpdatePurchase edits a recorded purchase and queues the change.
func (a *App) UpdatePurchase(ctx context.Context, id string, upd PurchaseUpdate) (core.Purchase, error) {
	current, ok := a.ledger.Get(id)
	if !ok {
		return core.Purchase{}, ErrPurchaseNotFound
	}

	patch := core.PurchasePatch{
		Quantity:  upd.Quantity,
		UnitPrice: upd.UnitPrice,
		Date:      upd.Date,
	}
	if upd.Quantity != nil || upd.UnitPrice != nil {
		next := patch.Apply(current)
		total := next.UnitPrice.Times(next.Quantity)
		patch.Total = &total
	}
	if err := patch.Validate(); err != nil {
		return core.Purchase{}, err
	}

	p, ok := a.ledger.Update(id, patch)
	if !ok {
		return core.Purchase{}, ErrPurchaseNotFound
	}
	a.sync.QueueUpdate(p)

	err := a.persist(ctx)
	a.publish(amqp.NewPurchaseEvent(amqp.EventPurchaseUpdated, p))
	a.scheduleSync()
	return p, err
}

// DeletePurchase removes a recorded purchase and queues the removal.
func (a *App) DeletePurchase(ctx context.Context, id string) error {
	p, ok := a.ledger.Delete(id)
	if !ok {
		return ErrPurchaseNotFound
	}
	a.sync.QueueDelete(p)

	err := a.persist(ctx)
	a.publish(amqp.NewPurchaseEvent(amqp.EventPurchaseDeleted, p))
	a.scheduleSync()
	return err
}

func (a *App) Purchase(id string) (core.Purchase, bool) {
	return a.ledger.Get(id)
}

// Purchases returns the purchases of r in insertion order.
func (a *App) Purchases(r core.DateRange) []core.Purchase {
	return a.ledger.ByDateRange(r.From, r.To)
}

func (a *App) Total(r core.DateRange) core.Money {
	return a.ledger.TotalByDateRange(r.From, r.To)
}

// RemotePurchases lists the purchases of r held by the backend, newest
// first. The local ledger is not touched.
func (a *App) RemotePurchases(ctx context.Context, r core.DateRange) ([]core.Purchase, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ps, err := a.remote.ListPurchases(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list remote purchases: %w", err)
	}
	return ps, nil
}

// Summary aggregates the currently selected period.
func (a *App) Summary() core.PeriodSummary {
	vs := a.view.Get()
	return a.ledger.Summarize(vs.Period, core.RangeFor(vs.Period, vs.Date))
}

// scheduleSync starts a background drain pass when online.
func (a *App) scheduleSync() {
	if a.sync.State() == services.StateOffline {
		return
	}
	a.goBackground(func(ctx context.Context) {
		a.runSync(ctx)
	})
}

func (a *App) runSync(ctx context.Context) (int, error) {
	n, err := a.sync.Sync(ctx)
	if errors.Is(err, services.ErrOffline) || errors.Is(err, services.ErrSyncInProgress) {
		return n, err
	}

	if perr := a.persist(ctx); perr != nil && err == nil {
		err = perr
	}
	if n > 0 || err != nil {
		a.publish(amqp.NewSyncEvent(n, a.sync.Status().Pending, err))
	}
	return n, err
}

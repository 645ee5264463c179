package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hissab/internal/core"
)

// Ledger is the append-mostly log of purchases. It is local only; remote
// propagation is left to the sync coordinator.
type Ledger struct {
	mu        sync.RWMutex
	purchases []core.Purchase
	nowFn     func() time.Time
}

// NewLedger creates an empty ledger. A nil clock defaults to time.Now.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{nowFn: now}
}

// Add records a purchase with a fresh id and creation time. It never fails.
func (l *Ledger) Add(in core.PurchaseInput) core.Purchase {
	p := core.Purchase{
		ID:        uuid.NewString(),
		ItemID:    in.ItemID,
		ItemName:  in.ItemName,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Total:     in.Total,
		Date:      in.Date,
		CreatedAt: l.nowFn().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.purchases = append(l.purchases, p)
	return p
}

// Update applies the patch to the purchase with the given id. It is a no-op
// when the id is unknown; the boolean reports whether a record changed.
func (l *Ledger) Update(id string, patch core.PurchasePatch) (core.Purchase, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.purchases {
		if l.purchases[i].ID == id {
			l.purchases[i] = patch.Apply(l.purchases[i])
			return l.purchases[i], true
		}
	}
	return core.Purchase{}, false
}

// Delete removes the purchase with the given id; no-op when absent.
func (l *Ledger) Delete(id string) (core.Purchase, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.purchases {
		if p.ID == id {
			l.purchases = append(l.purchases[:i], l.purchases[i+1:]...)
			return p, true
		}
	}
	return core.Purchase{}, false
}

func (l *Ledger) Get(id string) (core.Purchase, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.purchases {
		if p.ID == id {
			return p, true
		}
	}
	return core.Purchase{}, false
}

// All returns a copy of every purchase in insertion order.
func (l *Ledger) All() []core.Purchase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Purchase(nil), l.purchases...)
}

// Replace swaps the whole ledger, used when rehydrating persisted state.
func (l *Ledger) Replace(purchases []core.Purchase) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.purchases = append([]core.Purchase(nil), purchases...)
}

// ByDateRange returns the purchases whose date lies within [from, to],
// compared at day granularity, in insertion order.
func (l *Ledger) ByDateRange(from, to core.Date) []core.Purchase {
	r := core.DateRange{From: from, To: to}

	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Purchase, 0)
	for _, p := range l.purchases {
		if r.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}

// TotalByDateRange sums the totals of ByDateRange. Zero for an empty range.
func (l *Ledger) TotalByDateRange(from, to core.Date) core.Money {
	var total core.Money
	for _, p := range l.ByDateRange(from, to) {
		total = total.Add(p.Total)
	}
	return total
}

// Summarize aggregates the purchases of r by item and by day.
func (l *Ledger) Summarize(period core.Period, r core.DateRange) core.PeriodSummary {
	purchases := l.ByDateRange(r.From, r.To)

	summary := core.PeriodSummary{
		Period: period,
		Range:  r,
		Count:  len(purchases),
	}

	byItem := map[string]*core.ItemAmount{}
	var itemOrder []string
	byDay := map[string]*core.DayAmount{}

	for _, p := range purchases {
		summary.Total = summary.Total.Add(p.Total)

		ia, ok := byItem[p.ItemID]
		if !ok {
			ia = &core.ItemAmount{ItemID: p.ItemID, Name: p.ItemName}
			byItem[p.ItemID] = ia
			itemOrder = append(itemOrder, p.ItemID)
		}
		ia.Quantity += p.Quantity
		ia.Amount = ia.Amount.Add(p.Total)

		key := p.Date.String()
		da, ok := byDay[key]
		if !ok {
			da = &core.DayAmount{Date: core.DateOf(p.Date.Time)}
			byDay[key] = da
		}
		da.Amount = da.Amount.Add(p.Total)
	}

	summary.ByItem = make([]core.ItemAmount, 0, len(itemOrder))
	for _, id := range itemOrder {
		summary.ByItem = append(summary.ByItem, *byItem[id])
	}
	sort.SliceStable(summary.ByItem, func(i, j int) bool {
		if summary.ByItem[i].Amount.Cents != summary.ByItem[j].Amount.Cents {
			return summary.ByItem[i].Amount.Cents > summary.ByItem[j].Amount.Cents
		}
		return summary.ByItem[i].Name < summary.ByItem[j].Name
	})

	summary.Daily = make([]core.DayAmount, 0, len(byDay))
	for _, da := range byDay {
		summary.Daily = append(summary.Daily, *da)
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Date.Before(summary.Daily[j].Date.Time)
	})

	if days := r.Days(); days > 0 {
		summary.AverageDaily = core.Money{Cents: summary.Total.Cents / int64(days)}
	}

	return summary
}

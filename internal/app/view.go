package app

import (
	"context"

	"hissab/internal/core"
	"hissab/internal/store"
)

func (a *App) View() store.ViewState {
	return a.view.Get()
}

// SelectedRange is the date range of the current view selection.
func (a *App) SelectedRange() core.DateRange {
	return a.view.Range()
}

func (a *App) SetPeriod(ctx context.Context, p core.Period) error {
	if err := a.view.SetPeriod(p); err != nil {
		return err
	}
	return a.persist(ctx)
}

func (a *App) SetDate(ctx context.Context, d core.Date) error {
	if err := d.Validate(); err != nil {
		return err
	}
	a.view.SetDate(d)
	return a.persist(ctx)
}

// ShiftDate moves the selection by steps periods (negative goes back).
func (a *App) ShiftDate(ctx context.Context, steps int) (core.Date, error) {
	d := a.view.Shift(steps)
	return d, a.persist(ctx)
}

func (a *App) ToggleDarkMode(ctx context.Context) (bool, error) {
	on := a.view.ToggleDarkMode()
	return on, a.persist(ctx)
}

func (a *App) SetDarkMode(ctx context.Context, on bool) error {
	a.view.SetDarkMode(on)
	return a.persist(ctx)
}

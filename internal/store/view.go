package store

import (
	"sync"

	"hissab/internal/core"
)

// ViewState is the user's selection: which period to review, around which
// day, and the theme.
type ViewState struct {
	Period   core.Period
	Date     core.Date
	DarkMode bool
}

// View holds the UI-only selection state.
type View struct {
	mu    sync.RWMutex
	state ViewState
}

// NewView starts on the month containing today, light theme.
func NewView(today core.Date) *View {
	return &View{state: ViewState{Period: core.PeriodMonth, Date: today}}
}

func (v *View) Get() ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// SetPeriod rejects anything but day, week or month.
func (v *View) SetPeriod(p core.Period) error {
	if !p.Valid() {
		return core.ErrInvalidPeriod
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Period = p
	return nil
}

func (v *View) SetDate(d core.Date) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Date = core.DateOf(d.Time)
}

// Shift moves the selected date by steps of the selected period.
func (v *View) Shift(steps int) core.Date {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Date = core.Shift(v.state.Period, v.state.Date, steps)
	return v.state.Date
}

// ToggleDarkMode flips the theme and returns the new value.
func (v *View) ToggleDarkMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.DarkMode = !v.state.DarkMode
	return v.state.DarkMode
}

func (v *View) SetDarkMode(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.DarkMode = on
}

// Range returns the date range of the current selection.
func (v *View) Range() core.DateRange {
	s := v.Get()
	return core.RangeFor(s.Period, s.Date)
}

// Restore replaces the selection, falling back to month for unknown periods.
func (v *View) Restore(s ViewState) {
	if !s.Period.Valid() {
		s.Period = core.PeriodMonth
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = s
}

// Package monthloader feeds a week view with display events one civil month
// at a time.
//
// The view asks for an integer period index (see package period); the
// Loader resolves the month's inclusive date range, asks the embedder's
// MonthChangeFunc for the objects in that range and converts each of them
// into a model.DisplayEvent.
//
// A Loader is not safe for concurrent use. It is expected to be driven from
// the view's single UI goroutine, which also owns any caching across months.
package monthloader

import (
	"time"

	"weekcal/internal/model"
	"weekcal/internal/period"
)

// MonthChangeFunc returns every object whose time range intersects the
// closed interval [start, end]. It may return a superset; the Loader does no
// filtering of its own. It may be called repeatedly for the same month.
type MonthChangeFunc[T model.Displayable] func(start, end time.Time) ([]T, error)

// Loader converts an embedder's month data into display events.
type Loader[T model.Displayable] struct {
	onMonthChange MonthChangeFunc[T]
	loc           *time.Location
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	loc *time.Location
}

// WithLocation sets the timezone in which month ranges are built.
// The default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// New constructs a Loader. fn may be nil and set later with SetCallback.
func New[T model.Displayable](fn MonthChangeFunc[T], opts ...Option) *Loader[T] {
	o := options{loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[T]{onMonthChange: fn, loc: o.loc}
}

// Callback returns the current month-change callback, or nil.
func (l *Loader[T]) Callback() MonthChangeFunc[T] {
	return l.onMonthChange
}

// SetCallback replaces the month-change callback. Passing nil unconfigures
// the Loader.
func (l *Loader[T]) SetCallback(fn MonthChangeFunc[T]) {
	l.onMonthChange = fn
}

// Location returns the timezone month ranges are built in.
func (l *Loader[T]) Location() *time.Location {
	return l.loc
}

// ToIndex returns the real-valued period index of t.
func (l *Loader[T]) ToIndex(t time.Time) float64 {
	return period.ToIndex(t)
}

// Range returns the date range Load passes to the callback for periodIndex.
func (l *Loader[T]) Range(periodIndex int) (start, end time.Time) {
	return period.Range(periodIndex, l.loc)
}

// Load returns the display events for the month identified by periodIndex,
// in the order the callback returned their sources.
//
// Errors returned by the callback are passed through unchanged. The returned
// slice never aliases the callback's slice and is non-nil on success.
func (l *Loader[T]) Load(periodIndex int) ([]model.DisplayEvent, error) {
	fn := l.onMonthChange
	if fn == nil {
		return nil, ErrNotConfigured
	}

	start, end := l.Range(periodIndex)

	items, err := fn(start, end)
	if err != nil {
		return nil, err
	}

	events := make([]model.DisplayEvent, 0, len(items))
	for i, item := range items {
		ev, ok := item.ToDisplayEvent()
		if !ok {
			return nil, &InvalidDomainObjectError{Position: i, PeriodIndex: periodIndex}
		}
		events = append(events, ev)
	}
	return events, nil
}

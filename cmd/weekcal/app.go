package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"weekcal/internal/config"
	"weekcal/internal/ics"
	appLog "weekcal/internal/log"
	"weekcal/internal/model"
	"weekcal/internal/monthloader"
	"weekcal/internal/period"
)

// app plays the hosting view: it owns the loader, requests months by
// period index and renders the result as text.
type app struct {
	cfg    *config.Config
	loc    *time.Location
	loader *monthloader.Loader[ics.Entry]
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		loc:    loc,
		loader: monthloader.New[ics.Entry](nil, monthloader.WithLocation(loc)),
	}
	a.reload()
	return a, nil
}

// reload re-reads every calendar and swaps the loader callback. With no
// calendars configured the loader stays unconfigured.
func (a *app) reload() {
	if len(a.cfg.Calendars) == 0 {
		a.loader.SetCallback(nil)
		appLog.Info("no calendars configured")
		return
	}

	cal, errs := ics.LoadCalendar(a.sources(), ics.Options{
		Location:          a.loc,
		DefaultColor:      a.cfg.DefaultColor,
		HighlightColor:    a.cfg.HighlightColor,
		HighlightKeywords: a.cfg.HighlightRed,
	})
	a.loader.SetCallback(cal.OnMonthChange)
	appLog.Info("calendars loaded", "events", cal.Len(), "failed_sources", len(errs))
}

func (a *app) sources() []ics.Source {
	out := make([]ics.Source, 0, len(a.cfg.Calendars))
	for _, c := range a.cfg.Calendars {
		out = append(out, ics.Source{ID: c.ID, Name: c.Name, Path: c.Path, Color: c.Color})
	}
	return out
}

func (a *app) calendarPaths() []string {
	out := make([]string, 0, len(a.cfg.Calendars))
	for _, c := range a.cfg.Calendars {
		out = append(out, c.Path)
	}
	return out
}

// printMonths loads index (and its neighbors when prefetch is set) and
// writes each month. A month that fails to load is logged and shown empty.
func (a *app) printMonths(w io.Writer, index int, prefetch bool) {
	indices := []int{index}
	if prefetch {
		n := period.Neighbors(index)
		indices = n[:]
	}

	for _, i := range indices {
		events, err := a.loader.Load(i)
		if err != nil {
			logLoadError(i, err)
			events = nil
		}
		printMonth(w, i, events, a.loc)
	}
}

func logLoadError(index int, err error) {
	var ide *monthloader.InvalidDomainObjectError
	switch {
	case errors.Is(err, monthloader.ErrNotConfigured):
		appLog.Error("month not loaded: no calendars", err, "period", index)
	case errors.As(err, &ide):
		appLog.Error("month not loaded: invalid event", err, "period", index, "position", ide.Position)
	default:
		appLog.Error("month not loaded", err, "period", index)
	}
}

func printMonth(w io.Writer, index int, events []model.DisplayEvent, loc *time.Location) {
	year, month := period.FromIndex(index)
	fmt.Fprintf(w, "== %04d-%02d (period %d) ==\n", year, int(month), index)
	if len(events) == 0 {
		fmt.Fprintln(w, "  (no events)")
		return
	}
	for _, ev := range events {
		fmt.Fprintf(w, "  %s  %s\n", formatSpan(ev, loc), ev.Title)
		if ev.Location != "" {
			fmt.Fprintf(w, "      @ %s\n", ev.Location)
		}
	}
}

func formatSpan(ev model.DisplayEvent, loc *time.Location) string {
	start, end := ev.Start.In(loc), ev.End.In(loc)
	if ev.AllDay {
		if period.StartOfDay(start).Equal(period.StartOfDay(end)) {
			return start.Format(time.DateOnly) + " all-day    "
		}
		return start.Format(time.DateOnly) + ".." + end.Format("01-02")
	}
	return start.Format("2006-01-02 15:04") + "-" + end.Format("15:04")
}

// indexFor resolves the month to show from --date/--index, defaulting to
// today in the configured timezone.
func (a *app) indexFor(date string, index int, indexSet bool) (int, error) {
	if indexSet {
		return index, nil
	}
	t := time.Now().In(a.loc)
	if date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, date, a.loc)
		if err != nil {
			return 0, fmt.Errorf("parse date %q: %w", date, err)
		}
		t = parsed
	}
	y, m, _ := t.Date()
	return period.Index(y, m), nil
}

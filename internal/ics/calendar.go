package ics

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
)

const (
	defaultColor   = "#1e88e5"
	highlightColor = "#d32f2f"
)

// entryNamespace scopes the SHA-1 UUIDs derived for entries.
var entryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("weekcal:ics-entry"))

// Options controls how parsed events become entries.
type Options struct {
	// Location is the display timezone. If nil, time.Local is used.
	Location *time.Location

	// DefaultColor is used when neither a highlight keyword nor a source
	// color applies.
	DefaultColor string

	// HighlightColor is used for events whose summary contains one of
	// HighlightKeywords (case-insensitive).
	HighlightColor    string
	HighlightKeywords []string
}

// Entry is a single event ready to be shown in the week view.
type Entry struct {
	SourceID string
	UID      string

	Summary  string
	Location string

	// Start / End are in the display timezone.
	Start time.Time
	End   time.Time

	AllDay    bool
	Recurring bool

	Color string
}

// ToDisplayEvent converts the entry. Entries without a start, or ending
// before they start, have nothing valid to show.
func (e Entry) ToDisplayEvent() (model.DisplayEvent, bool) {
	if e.Start.IsZero() || e.End.Before(e.Start) {
		return model.DisplayEvent{}, false
	}
	return model.DisplayEvent{
		ID:       e.ID(),
		Title:    e.Summary,
		Start:    e.Start,
		End:      e.End,
		Location: e.Location,
		Color:    e.Color,
		AllDay:   e.AllDay,
	}, true
}

// ID returns a stable identity derived from source, UID and start time.
func (e Entry) ID() string {
	key := e.SourceID + "/" + e.UID + "/" + e.Start.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(entryNamespace, []byte(key)).String()
}

// Calendar holds the parsed events of one or more sources and answers
// month-change requests from a monthloader.Loader.
type Calendar struct {
	opts   Options
	events []ParsedEvent
}

// NewCalendar constructs an empty Calendar, filling unset options with
// defaults.
func NewCalendar(opts Options) *Calendar {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DefaultColor == "" {
		opts.DefaultColor = defaultColor
	}
	if opts.HighlightColor == "" {
		opts.HighlightColor = highlightColor
	}
	return &Calendar{opts: opts}
}

// LoadCalendar parses every source into a new Calendar. Sources that fail
// are logged and reported in the error slice; the rest are still loaded.
func LoadCalendar(sources []Source, opts Options) (*Calendar, []error) {
	cal := NewCalendar(opts)
	errs := make([]error, 0)

	for _, src := range sources {
		events, err := LoadFile(src)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("ics load failed", err, "id", src.ID, "path", src.Path)
			continue
		}
		cal.Add(events...)
	}

	return cal, errs
}

// Add appends parsed events.
func (c *Calendar) Add(events ...ParsedEvent) {
	c.events = append(c.events, events...)
}

// Len returns the number of parsed events held.
func (c *Calendar) Len() int {
	return len(c.events)
}

// OnMonthChange returns the entries intersecting [start, end], ordered by
// start time. Recurring events contribute their first instance only, and
// that instance gives way to a RECURRENCE-ID override of it.
func (c *Calendar) OnMonthChange(start, end time.Time) ([]Entry, error) {
	if end.Before(start) {
		return nil, errors.New("ics: range end is before range start")
	}

	out := make([]Entry, 0)
	for _, ev := range c.current() {
		entry := c.entryFor(ev)
		if !timeRangesOverlap(entry.Start, entry.End, start, end) {
			continue
		}
		if entry.Recurring {
			appLog.Debug("ics: recurrence not expanded", "id", ev.Source.ID, "uid", ev.UID, "rrule", ev.RawRRule)
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	appLog.Debug("ics: month requested", "start", start.Format(time.DateOnly), "end", end.Format(time.DateOnly), "entries", len(out))
	return out, nil
}

// eventKey identifies one VEVENT revision chain: a master, or a single
// overridden instance of it.
type eventKey struct {
	sourceID string
	uid      string
	override bool
	rid      int64
}

// current resolves the held events to what should be shown. Among events
// sharing source, UID and RECURRENCE-ID the highest SEQUENCE wins (later
// ones on ties), and masters whose first instance is overridden are dropped.
func (c *Calendar) current() []ParsedEvent {
	latest := make([]ParsedEvent, 0, len(c.events))
	pos := make(map[eventKey]int, len(c.events))
	for _, ev := range c.events {
		k := eventKey{sourceID: ev.Source.ID, uid: ev.UID}
		if ev.Recurrence != nil {
			k.override = true
			k.rid = ev.Recurrence.UnixNano()
		}
		if i, ok := pos[k]; ok {
			if ev.Seq >= latest[i].Seq {
				latest[i] = ev
			}
			continue
		}
		pos[k] = len(latest)
		latest = append(latest, ev)
	}

	out := make([]ParsedEvent, 0, len(latest))
	for _, ev := range latest {
		if ev.Recurrence == nil && ev.Recurring() {
			k := eventKey{sourceID: ev.Source.ID, uid: ev.UID, override: true, rid: ev.Start.UnixNano()}
			if _, overridden := pos[k]; overridden {
				appLog.Debug("ics: first instance overridden", "id", ev.Source.ID, "uid", ev.UID)
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}

// entryFor converts ev into the display timezone. All-day events keep
// their civil dates rather than their instants.
func (c *Calendar) entryFor(ev ParsedEvent) Entry {
	loc := c.opts.Location

	var start, end time.Time
	if ev.AllDay {
		start = civilDate(ev.Start, loc)
		end = civilDate(ev.End, loc)
		if !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
		// ICS all-day ends are exclusive; the view wants the last covered day.
		end = end.Add(-time.Millisecond)
	} else {
		start = ev.Start.In(loc)
		end = ev.End.In(loc)
	}

	return Entry{
		SourceID:  ev.Source.ID,
		UID:       ev.UID,
		Summary:   ev.Summary,
		Location:  ev.Location,
		Start:     start,
		End:       end,
		AllDay:    ev.AllDay,
		Recurring: ev.Recurring(),
		Color:     c.colorFor(ev),
	}
}

func (c *Calendar) colorFor(ev ParsedEvent) string {
	summary := strings.ToLower(ev.Summary)
	for _, kw := range c.opts.HighlightKeywords {
		if kw != "" && strings.Contains(summary, strings.ToLower(kw)) {
			return c.opts.HighlightColor
		}
	}
	if ev.Source.Color != "" {
		return ev.Source.Color
	}
	return c.opts.DefaultColor
}

func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}

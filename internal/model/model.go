package model

import "time"

// DisplayEvent is the normalized event record consumed by the week view.
// Start and End are civil instants in the view's display timezone.
type DisplayEvent struct {
	// ID is a stable identity for the event across reloads.
	ID string

	Title string

	Start time.Time
	End   time.Time

	// Location is optional; empty means absent.
	Location string

	// Color is a "#rrggbb" hex string.
	Color string

	AllDay bool
}

// Displayable is implemented by caller-owned objects that can be shown in
// the week view. ok is false when the object has nothing valid to show.
type Displayable interface {
	ToDisplayEvent() (ev DisplayEvent, ok bool)
}

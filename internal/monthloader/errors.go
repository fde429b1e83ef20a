package monthloader

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by Load when no callback is registered.
	ErrNotConfigured = errors.New("monthloader: no month-change callback registered")

	// ErrInvalidDomainObject matches any *InvalidDomainObjectError.
	ErrInvalidDomainObject = errors.New("monthloader: domain object produced no display event")
)

// InvalidDomainObjectError reports the callback result element that
// produced a nil display event.
type InvalidDomainObjectError struct {
	// Position is the zero-based index in the callback's returned slice.
	Position int
	// PeriodIndex is the month being loaded.
	PeriodIndex int
}

func (e *InvalidDomainObjectError) Error() string {
	return fmt.Sprintf("%s (period %d, position %d)", ErrInvalidDomainObject.Error(), e.PeriodIndex, e.Position)
}

func (e *InvalidDomainObjectError) Is(target error) bool {
	return target == ErrInvalidDomainObject
}

package domain

import "time"

// now is swapped in tests that need a fixed clock.
var now = time.Now

// Occurrence marks the instant something happened. Values are stored in UTC
// at millisecond precision, the resolution of a BSON datetime.
type Occurrence struct {
	instant time.Time
}

// NewOccurrence captures the current instant.
func NewOccurrence() Occurrence {
	return OccurrenceAt(now())
}

// OccurrenceAt wraps an explicit instant.
func OccurrenceAt(t time.Time) Occurrence {
	return Occurrence{instant: t.UTC().Truncate(time.Millisecond)}
}

func (o Occurrence) Instant() time.Time { return o.instant }

func (o Occurrence) IsZero() bool { return o.instant.IsZero() }

func (o Occurrence) Equal(other Occurrence) bool { return o.instant.Equal(other.instant) }

func (o Occurrence) String() string { return o.instant.Format(time.RFC3339Nano) }

// occurrencePtr returns a pointer to a copy so callers cannot mutate aggregate state.
func occurrencePtr(o *Occurrence) *Occurrence {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

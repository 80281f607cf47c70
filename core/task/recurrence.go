package task

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/bigplans/backend/core"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

var Frequencies = []Frequency{Daily, Weekly, Monthly}

func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

var (
	ErrInvalidFrequency = errors.New("frequency must be daily, weekly or monthly")
	ErrInvalidInterval  = errors.New("interval must be at least 1")
	ErrInvalidMaxOcc    = errors.New("maxOccurrences must be at least 1")
)

// RecurrencePattern is the rule of a recurring template.
// MaxOccurrences caps the number of instances ever materialized from the template.
type RecurrencePattern struct {
	Frequency      Frequency `json:"frequency" validate:"required,frequency"`
	Interval       int       `json:"interval" validate:"required,min=1"`
	MaxOccurrences *int      `json:"maxOccurrences,omitempty" validate:"omitempty,min=1"`
}

func (p RecurrencePattern) Validate() error {
	if !p.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if p.Interval < 1 {
		return ErrInvalidInterval
	}
	if p.MaxOccurrences != nil && *p.MaxOccurrences < 1 {
		return ErrInvalidMaxOcc
	}
	return nil
}

// UnmarshalJSON accepts the pattern as an object or as a JSON-encoded string of that object.
func (p *RecurrencePattern) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		raw, err := strconv.Unquote(string(data))
		if err != nil {
			return errors.Wrap(err, "unquoting recurrence pattern")
		}
		data = []byte(raw)
	}
	type pattern RecurrencePattern
	var pp pattern
	if err := json.Unmarshal(data, &pp); err != nil {
		return err
	}
	*p = RecurrencePattern(pp)
	return nil
}

// String returns the storage form of the pattern.
func (p RecurrencePattern) String() string {
	type pattern RecurrencePattern
	b, _ := json.Marshal(pattern(p))
	return string(b)
}

// ParsePattern parses and validates a stored pattern.
func ParsePattern(raw string) (RecurrencePattern, error) {
	var p RecurrencePattern
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return RecurrencePattern{}, errors.Wrap(err, "decoding recurrence pattern")
	}
	if err := p.Validate(); err != nil {
		return RecurrencePattern{}, err
	}
	return p, nil
}

// IsDue reports whether a template starting on start has an occurrence on candidate.
//
// The start date itself is always due and nothing before it ever is.
// Monthly patterns only match the start's day of month: months too short for it are skipped,
// no clamping to month-end is done (a template starting on Jan 31 is due on Mar 31, never in February).
func IsDue(start, candidate time.Time, p RecurrencePattern) bool {
	if p.Interval < 1 {
		return false
	}
	daysDiff := core.DaysBetween(start, candidate)
	switch {
	case daysDiff < 0:
		return false
	case daysDiff == 0:
		return true
	}

	switch p.Frequency {
	case Daily:
		return daysDiff%p.Interval == 0
	case Weekly:
		return daysDiff%(p.Interval*7) == 0
	case Monthly:
		sy, sm, sd := start.Date()
		cy, cm, cd := candidate.Date()
		monthsDiff := (cy-sy)*12 + int(cm-sm)
		return cd == sd && monthsDiff%p.Interval == 0
	}
	return false
}

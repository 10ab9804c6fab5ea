package forecast

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxOffsetSeconds bounds the accepted timezone offset in either direction.
	MaxOffsetSeconds int64 = 18 * 60 * 60

	// Timestamps are limited to years 0001..9999 so day keys keep a 4-digit year.
	minTimestamp int64 = -62135596800
	maxTimestamp int64 = 253402300799
)

var (
	// ErrInvalidOffset is returned when a timezone offset is out of range.
	ErrInvalidOffset = errors.New("invalid timezone offset")

	// ErrInvalidTimestamp is returned when a timestamp cannot be localized.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ValidationError reports a caller input that the engine refuses to localize.
// Index is the sample position, or -1 for scalar parameters.
type ValidationError struct {
	Field string
	Index int
	Value int64
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("forecast: %s[%d]=%d: %v", e.Field, e.Index, e.Value, e.Err)
	}
	return fmt.Sprintf("forecast: %s=%d: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// LocalClock is a UTC instant shifted into a city's local clock.
type LocalClock struct {
	Instant int64
	DayKey  string
}

// Localize applies offsetSeconds once to a UTC instant. The day key is read
// from the shifted instant as UTC wall-clock fields, so the host timezone
// never takes part.
func Localize(timestampUTC, offsetSeconds int64) LocalClock {
	local := timestampUTC + offsetSeconds
	return LocalClock{
		Instant: local,
		DayKey:  time.Unix(local, 0).UTC().Format(DayKeyLayout),
	}
}

// ValidateOffset checks that offsetSeconds is a plausible UTC offset.
func ValidateOffset(offsetSeconds int64) error {
	if offsetSeconds < -MaxOffsetSeconds || offsetSeconds > MaxOffsetSeconds {
		return &ValidationError{Field: "offsetSeconds", Index: -1, Value: offsetSeconds, Err: ErrInvalidOffset}
	}
	return nil
}

// ValidateTimestamp checks that ts falls inside the supported calendar range.
func ValidateTimestamp(ts int64) error {
	return checkTimestamp("timestampUtc", -1, ts)
}

func checkTimestamp(field string, index int, ts int64) error {
	if ts < minTimestamp || ts > maxTimestamp {
		return &ValidationError{Field: field, Index: index, Value: ts, Err: ErrInvalidTimestamp}
	}
	return nil
}

func validateSeries(samples []Sample, offsetSeconds int64) error {
	if err := ValidateOffset(offsetSeconds); err != nil {
		return err
	}
	for i, s := range samples {
		if err := checkTimestamp("samples.timestampUtc", i, s.TimestampUTC); err != nil {
			return err
		}
	}
	return nil
}

func localizeSample(s Sample, offsetSeconds int64) LocalizedSample {
	lc := Localize(s.TimestampUTC, offsetSeconds)
	return LocalizedSample{
		Sample:       s,
		LocalDayKey:  lc.DayKey,
		LocalInstant: lc.Instant,
	}
}

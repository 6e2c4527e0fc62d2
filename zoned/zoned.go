// Package zoned resolves civil wall-clock readings against named time zones
// and performs offset-aware arithmetic on the results.
//
// A civil reading has no absolute meaning on its own: depending on the zone's
// daylight saving rules it may denote exactly one instant, two instants (a
// fall-back fold) or no instant at all (a spring-forward gap). Resolution
// makes that explicit instead of guessing. All values are immutable; every
// operation returns new values and may run concurrently without
// synchronization.
package zoned

import (
	"errors"
	"time"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/internal/gregsec"
	"github.com/ngrash/go-zoned/periodtab"
)

// UTC is the canonical name of the UTC zone.
const UTC = "UTC"

var (
	// ErrInvalidCivil means the civil reading is not calendar-valid,
	// including a second of 60 that is not a registered leap second.
	ErrInvalidCivil = errors.New("invalid civil time")

	// ErrUnknownZone means the zone name has no entry in the period
	// table, neither canonical nor linked.
	ErrUnknownZone = errors.New("unknown zone")

	// ErrRangeOverflow means arithmetic pushed the result outside the
	// supported year span.
	ErrRangeOverflow = errors.New("result outside supported year range")

	// ErrOffsetMismatch means the total offset supplied for
	// disambiguation selected no single candidate.
	ErrOffsetMismatch = errors.New("offset matches no single candidate")

	// ErrNotAmbiguous means disambiguation was attempted on a resolution
	// that does not hold two candidates.
	ErrNotAmbiguous = errors.New("resolution is not ambiguous")

	// ErrPeriodInvariant means the period table violated its contract of
	// returning at most two periods for a wall query and exactly one for
	// an instant query. It indicates corrupt zone data, not caller error.
	ErrPeriodInvariant = errors.New("period table invariant violated")
)

// PeriodSource is the period table interface the resolver runs against.
// *periodtab.Table implements it.
//
// Implementations must be safe for concurrent use and must return periods
// whose offsets and abbreviation are constant over their validity span.
type PeriodSource interface {
	PeriodsForTime(zone string, sec int64, mode periodtab.QueryMode) ([]periodtab.Period, error)
	ZoneExists(name string) bool
	CanonicalZone(name string) (string, bool)
}

// LeapSource is the leap second table interface the resolver runs against.
// *leapsec.Table implements it.
type LeapSource interface {
	IsLeapSecond(dt civil.DateTime) bool
}

// Time is a civil reading paired with the zone, abbreviation and offsets of
// exactly one period valid at its instant. Values are created by
// [Resolver.Resolve] and derived operations and are never mutated.
type Time struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
	Min   int
	Sec   int // 0-60, 60 only during an inserted leap second
	Usec  int

	// Zone is the canonical zone name the reading was resolved in.
	Zone string
	// Abbr is the abbreviation of the period in effect, e.g. "CEST".
	Abbr string
	// UTCOffset is the offset of the zone's standard time from UTC.
	UTCOffset int64
	// DSTOffset is the daylight saving in effect on top of UTCOffset.
	DSTOffset int64
}

// Civil strips the zone and returns the plain civil reading.
func (t Time) Civil() civil.DateTime {
	return civil.DateTime{Year: t.Year, Month: t.Month, Day: t.Day, Hour: t.Hour, Min: t.Min, Sec: t.Sec, Usec: t.Usec}
}

// TotalOffset is the number of seconds to add to UTC to get this reading.
func (t Time) TotalOffset() int64 {
	return t.UTCOffset + t.DSTOffset
}

// String formats the value as its civil reading followed by zone and
// abbreviation.
func (t Time) String() string {
	return t.Civil().String() + " " + t.Zone + " (" + t.Abbr + ")"
}

// instant returns the absolute second count of the reading. A leap second
// shares the instant of the second before it, keeping the linear count free
// of 61st seconds.
func (t Time) instant() int64 {
	dt := t.Civil()
	if dt.Sec == 60 {
		dt.Sec = 59
	}
	return dt.Unix() - t.TotalOffset()
}

// State describes the outcome of resolving a civil reading.
type State int

const (
	// Unique means exactly one period matched: the reading denotes one
	// instant.
	Unique State = iota
	// Ambiguous means two periods matched: the clocks showed the reading
	// twice around a fall-back transition.
	Ambiguous
	// Gap means no period matched: the clocks skipped the reading at a
	// spring-forward transition.
	Gap
)

func (s State) String() string {
	switch s {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	case Gap:
		return "gap"
	default:
		return "<undefined state>"
	}
}

// Resolution is the outcome of resolving a civil reading against a zone.
type Resolution struct {
	State State

	// Time is the resolved value. Only set when State is Unique.
	Time Time

	// Candidates holds both readings of an ambiguous resolution, sorted
	// ascending by abbreviation. Only set when State is Ambiguous.
	// The candidates share all civil fields and differ only in offsets
	// and abbreviation.
	Candidates []Time
}

// Resolver resolves civil readings against a period table and a leap second
// table. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	periods PeriodSource
	leaps   LeapSource
}

// New returns a Resolver running against the given tables.
func New(periods PeriodSource, leaps LeapSource) *Resolver {
	return &Resolver{periods: periods, leaps: leaps}
}

// Span is an elapsed time in seconds and microseconds, normalized so that
// Usec is in [0, 1e6) and Sec carries the sign: -2µs is {Sec: -1,
// Usec: 999998}.
type Span struct {
	Sec  int64
	Usec int64
}

// Sign returns -1, 0 or +1 depending on whether the span is negative, zero
// or positive.
func (s Span) Sign() int {
	switch {
	case s.Sec < 0:
		return -1
	case s.Sec == 0 && s.Usec == 0:
		return 0
	default:
		return 1
	}
}

// linearSeconds converts a civil reading to the linear wall second count.
func linearSeconds(dt civil.DateTime) int64 {
	return gregsec.FromDateTime(dt.Year, int(dt.Month), dt.Day, dt.Hour, dt.Min, dt.Sec)
}

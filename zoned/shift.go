package zoned

import (
	"fmt"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/periodtab"
)

// Shift converts a resolved value to another zone, preserving the instant.
//
// The source value is trusted: its own offsets are used to find the instant
// instead of resolving the civil reading again, so shifting is total for any
// known target zone, including readings that would be ambiguous to resolve.
// A leap second is pivoted through second 59: substituted before the shift
// and restored on the result, so the instant model never has to represent
// the 61st second.
func (r *Resolver) Shift(t Time, zone string) (Time, error) {
	canonical, ok := r.periods.CanonicalZone(zone)
	if !ok {
		return Time{}, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}
	leap := t.Sec == 60
	out, err := r.atInstant(t.instant(), t.Usec, canonical)
	if err != nil {
		return Time{}, err
	}
	if leap {
		out.Sec = 60
	}
	return out, nil
}

// atInstant returns the reading of the absolute second count in the given
// canonical zone. Instant queries match exactly one period for any valid
// instant; anything else is corrupt zone data.
func (r *Resolver) atInstant(sec int64, usec int, canonical string) (Time, error) {
	ps, err := r.periods.PeriodsForTime(canonical, sec, periodtab.QueryUTC)
	if err != nil {
		return Time{}, fmt.Errorf("querying periods for %s: %w", canonical, err)
	}
	if len(ps) != 1 {
		return Time{}, fmt.Errorf("%w: %d periods match instant %d in %s", ErrPeriodInvariant, len(ps), sec, canonical)
	}
	p := ps[0]
	dt := civil.FromUnix(sec+p.TotalOffset(), usec)
	return fromPeriod(dt, canonical, p), nil
}

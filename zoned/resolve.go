package zoned

import (
	"fmt"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/periodtab"
)

// Resolve resolves a civil reading in the named zone.
//
// The zone name may be an alias; the returned values carry the canonical
// name. The reading is validated first: calendar-illegal values yield
// ErrInvalidCivil and unknown zones ErrUnknownZone. A second of 60 is legal
// only for a registered leap second, in UTC directly or in any zone whose
// clock shows a registered UTC leap second at that reading.
func (r *Resolver) Resolve(dt civil.DateTime, zone string) (Resolution, error) {
	if err := dt.Validate(); err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrInvalidCivil, err)
	}
	canonical, ok := r.periods.CanonicalZone(zone)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}
	if dt.Sec == 60 {
		return r.resolveLeapSecond(dt, canonical)
	}
	return r.resolveWall(dt, canonical)
}

func (r *Resolver) resolveWall(dt civil.DateTime, canonical string) (Resolution, error) {
	ps, err := r.periods.PeriodsForTime(canonical, linearSeconds(dt), periodtab.QueryWall)
	if err != nil {
		return Resolution{}, fmt.Errorf("querying periods for %s: %w", canonical, err)
	}
	switch len(ps) {
	case 0:
		return Resolution{State: Gap}, nil
	case 1:
		return Resolution{State: Unique, Time: fromPeriod(dt, canonical, ps[0])}, nil
	case 2:
		a, b := fromPeriod(dt, canonical, ps[0]), fromPeriod(dt, canonical, ps[1])
		// Sort candidates ascending by abbreviation so the order is
		// deterministic regardless of table order; offsets break the
		// tie should two periods ever share an abbreviation.
		if b.Abbr < a.Abbr || (b.Abbr == a.Abbr && b.TotalOffset() < a.TotalOffset()) {
			a, b = b, a
		}
		return Resolution{State: Ambiguous, Candidates: []Time{a, b}}, nil
	default:
		return Resolution{}, fmt.Errorf("%w: %d periods match %s in %s", ErrPeriodInvariant, len(ps), dt, canonical)
	}
}

// resolveLeapSecond handles readings with a second of 60.
//
// In UTC the reading must itself be a registered leap second. In any other
// zone, the reading at second 59 is resolved, hopped to UTC, and the
// following UTC second must be a registered leap second. That hop is a
// single controlled recursion through resolveWall, never deeper.
func (r *Resolver) resolveLeapSecond(dt civil.DateTime, canonical string) (Resolution, error) {
	if canonical == UTC {
		if !r.leaps.IsLeapSecond(dt) {
			return Resolution{}, fmt.Errorf("%w: %s is not a registered leap second", ErrInvalidCivil, dt)
		}
		return r.resolveWall(dt, canonical)
	}

	before := dt
	before.Sec = 59
	res, err := r.resolveWall(before, canonical)
	if err != nil {
		return Resolution{}, err
	}
	if res.State != Unique {
		// A leap second inside a gap or fold has never occurred and
		// would have no single UTC reading to check against.
		return Resolution{}, fmt.Errorf("%w: %s is not a resolvable leap second in %s", ErrInvalidCivil, dt, canonical)
	}

	utc := civil.FromUnix(res.Time.instant(), 0)
	utc.Sec++
	if utc.Sec != 60 || !r.leaps.IsLeapSecond(utc) {
		return Resolution{}, fmt.Errorf("%w: %s is not a registered leap second in %s", ErrInvalidCivil, dt, canonical)
	}

	t := res.Time
	t.Sec = 60
	t.Usec = dt.Usec
	return Resolution{State: Unique, Time: t}, nil
}

// fromPeriod attaches a period's zone facts to a civil reading.
func fromPeriod(dt civil.DateTime, canonical string, p periodtab.Period) Time {
	return Time{
		Year: dt.Year, Month: dt.Month, Day: dt.Day,
		Hour: dt.Hour, Min: dt.Min, Sec: dt.Sec, Usec: dt.Usec,
		Zone:      canonical,
		Abbr:      p.Abbr,
		UTCOffset: p.UTCOffset,
		DSTOffset: p.DSTOffset,
	}
}

// Disambiguate selects the candidate of an ambiguous resolution whose total
// UTC offset equals totalOffset. A caller that stored the offset alongside a
// reading can thereby restore the exact instant without user interaction.
//
// It returns ErrNotAmbiguous if res holds no candidate pair and
// ErrOffsetMismatch if the offset selects none of the candidates (or,
// degenerately, both).
func Disambiguate(res Resolution, totalOffset int64) (Time, error) {
	if res.State != Ambiguous || len(res.Candidates) != 2 {
		return Time{}, ErrNotAmbiguous
	}
	var (
		match Time
		n     int
	)
	for _, c := range res.Candidates {
		if c.TotalOffset() == totalOffset {
			match = c
			n++
		}
	}
	if n != 1 {
		return Time{}, fmt.Errorf("%w: total offset %+d", ErrOffsetMismatch, totalOffset)
	}
	return match, nil
}

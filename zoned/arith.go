package zoned

import (
	"fmt"

	"github.com/ngrash/go-zoned/civil"
)

// Advance returns the reading seconds later (or earlier, for negative
// seconds) in the value's own zone. The addition is performed on the
// absolute second count, so advancing across a DST transition moves the
// wall clock by the transition's offset change as well.
//
// Leap seconds are not counted: the model treats every day as exactly
// 86,400 seconds long. Advancing from a leap second starts at its second 59
// pivot. If the result falls outside the supported year range, Advance
// returns ErrRangeOverflow.
func (r *Resolver) Advance(t Time, seconds int64) (Time, error) {
	sec := t.instant()
	sum := sec + seconds
	if (seconds > 0 && sum < sec) || (seconds < 0 && sum > sec) {
		return Time{}, fmt.Errorf("%w: advancing %s by %d seconds", ErrRangeOverflow, t, seconds)
	}
	out, err := r.atInstant(sum, t.Usec, t.Zone)
	if err != nil {
		return Time{}, err
	}
	if out.Year < civil.MinYear || out.Year > civil.MaxYear {
		return Time{}, fmt.Errorf("%w: advancing %s by %d seconds", ErrRangeOverflow, t, seconds)
	}
	return out, nil
}

// Diff returns the elapsed time a-b as a normalized [Span]. Both operands
// are reduced to their absolute second counts, so the result is independent
// of the zones they are expressed in. Leap seconds are not counted.
//
// Whole seconds and microseconds never disagree in sign: when the raw
// differences do, a whole second is borrowed so that the microsecond
// component is non-negative, e.g. a difference of -2µs is
// {Sec: -1, Usec: 999998}.
func Diff(a, b Time) Span {
	// The supported year span keeps this well below int64 range even in
	// microseconds.
	micros := (a.instant()-b.instant())*1e6 + int64(a.Usec-b.Usec)
	sec, usec := micros/1e6, micros%1e6
	if usec < 0 {
		sec--
		usec += 1e6
	}
	return Span{Sec: sec, Usec: usec}
}

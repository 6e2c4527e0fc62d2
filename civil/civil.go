// Package civil provides a naive wall-clock value type: a calendar date and
// time of day with no attached zone or offset. A civil reading has no
// absolute meaning until it is resolved against a time zone.
package civil

import (
	"errors"
	"fmt"
	"time"

	"github.com/ngrash/go-zoned/internal/gregsec"
)

const (
	// MinYear is the earliest year supported by this module.
	MinYear = 1
	// MaxYear is the latest year supported by this module.
	MaxYear = 9999
)

// DateTime is a civil date and time in the proleptic Gregorian calendar.
//
// Sec may be 60 to denote an inserted leap second. Whether a leap second is
// actually legal at that reading depends on the zone it is resolved against
// and is not a property of the civil value itself.
type DateTime struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
	Min   int
	Sec   int
	Usec  int // microseconds, [0, 1e6)
}

// Validate checks that the value denotes a reading a calendar can show.
func (dt DateTime) Validate() error {
	var errs []error
	if dt.Year < MinYear || dt.Year > MaxYear {
		errs = append(errs, fmt.Errorf("year %d out of range [%d, %d]", dt.Year, MinYear, MaxYear))
	}
	if dt.Month < time.January || dt.Month > time.December {
		errs = append(errs, fmt.Errorf("invalid month %d", int(dt.Month)))
	} else if dt.Day < 1 || dt.Day > DaysInMonth(dt.Year, dt.Month) {
		errs = append(errs, fmt.Errorf("invalid day %d for %s %d", dt.Day, dt.Month, dt.Year))
	}
	if dt.Hour < 0 || dt.Hour > 23 {
		errs = append(errs, fmt.Errorf("invalid hour %d", dt.Hour))
	}
	if dt.Min < 0 || dt.Min > 59 {
		errs = append(errs, fmt.Errorf("invalid minute %d", dt.Min))
	}
	if dt.Sec < 0 || dt.Sec > 60 {
		errs = append(errs, fmt.Errorf("invalid second %d", dt.Sec))
	}
	if dt.Usec < 0 || dt.Usec > 999999 {
		errs = append(errs, fmt.Errorf("invalid microsecond %d", dt.Usec))
	}
	return errors.Join(errs...)
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if gregsec.IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Unix returns the linear second count of the value read as UTC.
// A leap second (Sec == 60) maps to the same count as second zero of the
// following minute; callers that need to keep the 61st second distinct must
// handle it before converting.
func (dt DateTime) Unix() int64 {
	return gregsec.FromDateTime(dt.Year, int(dt.Month), dt.Day, dt.Hour, dt.Min, dt.Sec)
}

// FromUnix returns the civil reading of the linear second count in UTC.
func FromUnix(sec int64, usec int) DateTime {
	y, mo, d, h, mi, s := gregsec.ToDateTime(sec)
	return DateTime{Year: y, Month: time.Month(mo), Day: d, Hour: h, Min: mi, Sec: s, Usec: usec}
}

// String formats the value as "YYYY-MM-DD HH:MM:SS" with a ".ffffff"
// microsecond suffix when Usec is nonzero.
func (dt DateTime) String() string {
	s := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", dt.Year, int(dt.Month), dt.Day, dt.Hour, dt.Min, dt.Sec)
	if dt.Usec != 0 {
		s += fmt.Sprintf(".%06d", dt.Usec)
	}
	return s
}

// Compare orders two civil readings chronologically when read in the same
// zone. It returns -1 if dt is earlier than other, 0 if equal, +1 if later.
func (dt DateTime) Compare(other DateTime) int {
	a, b := dt.Unix(), other.Unix()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case dt.Usec < other.Usec:
		return -1
	case dt.Usec > other.Usec:
		return 1
	}
	return 0
}

// Package gregsec converts between calendar date-times and a linear count of
// seconds since 1970-01-01 00:00:00 UTC. It ignores leap seconds but respects
// leap years and assumes the proleptic Gregorian calendar.
//
// Both directions are based on the Go standard library's time package but do
// not depend on time.Location. The linear count is the currency all zone
// resolution and arithmetic in this module is performed in, so it must not
// carry any location of its own.
package gregsec

// The constants were copied from time.go in the Go standard library's time package.
const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	daysPer400Years  = 365*400 + 97
	daysPer100Years  = 365*100 + 24
	daysPer4Years    = 365*4 + 1

	absoluteZeroYear         = -292277022399
	internalYear             = 1
	absoluteToInternal int64 = (absoluteZeroYear - internalYear) * 365.2425 * secondsPerDay
	internalToAbsolute       = -absoluteToInternal
	unixToInternal     int64 = (1969*365 + 1969/4 - 1969/100 + 1969/400) * secondsPerDay
	internalToUnix     int64 = -unixToInternal
)

// daysBefore[m] counts the number of days in a non-leap year before month m+1.
var daysBefore = [13]int64{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// FromDateTime converts a given date and time to the linear second count.
// The date must be calendar-valid; out-of-range components silently produce
// a count for the normalized date, as in the time package.
func FromDateTime(year, month, day, hour, minute, second int) int64 {
	d := daysSinceEpoch(year) + uint64(daysBefore[month-1]) + (uint64(day) - 1)
	if month > 2 && IsLeapYear(year) {
		d++ // +leap day
	}
	abs := d*secondsPerDay + uint64(hour)*secondsPerHour + uint64(minute)*secondsPerMinute + uint64(second)
	return int64(abs) + (absoluteToInternal + internalToUnix)
}

// ToDateTime converts a linear second count back to a date and time.
// It is the inverse of FromDateTime for calendar-valid inputs.
func ToDateTime(unix int64) (year, month, day, hour, minute, second int) {
	abs := uint64(unix + unixToInternal + internalToAbsolute)

	daySec := abs % secondsPerDay
	hour = int(daySec / secondsPerHour)
	minute = int(daySec % secondsPerHour / secondsPerMinute)
	second = int(daySec % secondsPerMinute)

	// Split days into year and day-of-year, undoing daysSinceEpoch.
	d := abs / secondsPerDay

	n := d / daysPer400Years
	y := 400 * n
	d -= daysPer400Years * n

	n = d / daysPer100Years
	n -= n >> 2 // the 4th 100-year cycle is the start of the next 400-year cycle
	y += 100 * n
	d -= daysPer100Years * n

	n = d / daysPer4Years
	y += 4 * n
	d -= daysPer4Years * n

	n = d / 365
	n -= n >> 2 // the 4th year is the leap year of the next 4-year cycle
	y += n
	d -= 365 * n

	year = int(int64(y) + absoluteZeroYear)

	yday := int64(d)
	if IsLeapYear(year) {
		switch {
		case yday > 31+29-1:
			yday-- // pretend February has 28 days
		case yday == 31+29-1:
			return year, 2, 29, hour, minute, second
		}
	}

	// Estimate the month, correct by at most one, then take the day from
	// the distance to the start of the month.
	month = int(yday/31) + 1
	if yday >= daysBefore[month] {
		month++
	}
	day = int(yday-daysBefore[month-1]) + 1
	return year, month, day, hour, minute, second
}

// daysSinceEpoch takes a year and returns the number of days from
// the absolute epoch to the start of that year.
// This is basically (year - zeroYear) * 365, but accounting for leap days.
//
// This function was copied from time.go in the Go standard library time package.
func daysSinceEpoch(year int) uint64 {
	y := uint64(int64(year) - absoluteZeroYear)

	// Add in days from 400-year cycles.
	n := y / 400
	y -= 400 * n
	d := daysPer400Years * n

	// Add in 100-year cycles.
	n = y / 100
	y -= 100 * n
	d += daysPer100Years * n

	// Add in 4-year cycles.
	n = y / 4
	y -= 4 * n
	d += daysPer4Years * n

	// Add in non-leap years.
	n = y
	d += 365 * n

	return d
}

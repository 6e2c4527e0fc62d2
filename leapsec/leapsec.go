// Package leapsec provides the leap second table: the set of UTC civil
// instants at which a leap second was inserted.
//
// The table format is the leapseconds file shipped with tzdb releases
// at https://www.iana.org/time-zones. A copy of the published table is
// embedded and available via [Default].
package leapsec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "embed"

	"github.com/ngrash/go-zoned/civil"
)

//go:embed leapseconds
var embedded []byte

// Corr represents the correction direction of a leap second.
type Corr string

const (
	// Added means a second was inserted: the minute has a 61st second.
	Added Corr = "+"
	// Skipped means a second was skipped. No second has ever been
	// skipped, but the format allows it.
	Skipped Corr = "-"
)

// Entry is a single leap second record.
type Entry struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
	Min   int
	Sec   int
	Corr  Corr
}

// Table is a leap second table. It is built once by [Parse] and never
// mutated afterwards, so concurrent readers need no locking.
type Table struct {
	entries []Entry
	byDay   map[[5]int]Corr // year, month, day, hour, min

	expires    civil.DateTime
	hasExpires bool
}

// parseError is an error that occurred during parsing.
// It contains the line number and the line where the error occurred.
type parseError struct {
	lineNumber int
	line       string
	err        error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.lineNumber, e.line, e.err)
}

// Parse parses a leapseconds file in tzdb distribution format.
//
// Leap lines have the form
//
//	Leap  YEAR  MONTH  DAY  HH:MM:SS  CORR  R/S
//
// Only stationary ("S") leap seconds are supported; all published leap
// seconds are stationary. An optional Expires line records when the table
// ends.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{byDay: make(map[[5]int]Corr)}
	scanner := bufio.NewScanner(r)
	var lineNumber int
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		fields := splitLine(line)
		if fields == nil {
			continue // skip comment or empty line
		}
		switch fields[0] {
		case "Leap":
			e, err := parseLeapLine(fields)
			if err != nil {
				return nil, &parseError{lineNumber, line, fmt.Errorf("parse leap: %w", err)}
			}
			t.entries = append(t.entries, e)
			t.byDay[[5]int{e.Year, int(e.Month), e.Day, e.Hour, e.Min}] = e.Corr
		case "Expires":
			e, err := parseExpiresLine(fields)
			if err != nil {
				return nil, &parseError{lineNumber, line, fmt.Errorf("parse expires: %w", err)}
			}
			t.expires = e
			t.hasExpires = true
		default:
			return nil, &parseError{lineNumber, line, fmt.Errorf("expected 'Leap' or 'Expires', got %q", fields[0])}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(bytes.NewReader(embedded))
	if err != nil {
		panic(fmt.Sprintf("leapsec: parsing embedded table: %v", err))
	}
	return t
})

// Default returns the embedded copy of the published leap second table.
func Default() *Table {
	return defaultTable()
}

// IsLeapSecond reports whether the UTC civil reading denotes a registered
// inserted leap second. Only readings with Sec == 60 can be leap seconds.
func (t *Table) IsLeapSecond(dt civil.DateTime) bool {
	if dt.Sec != 60 {
		return false
	}
	corr, ok := t.byDay[[5]int{dt.Year, int(dt.Month), dt.Day, dt.Hour, dt.Min}]
	return ok && corr == Added
}

// Entries returns the leap second records in file order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Expires returns the UTC instant the table expires at, if the file
// declared one.
func (t *Table) Expires() (civil.DateTime, bool) {
	return t.expires, t.hasExpires
}

func parseLeapLine(fields []string) (Entry, error) {
	if len(fields) != 7 {
		return Entry{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	var (
		e    Entry
		errs error
		err  error
	)
	if e.Year, err = strconv.Atoi(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("YEAR %q: %w", fields[1], err))
	}
	if e.Month, err = parseMonth(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("MONTH %q: %w", fields[2], err))
	}
	if e.Day, err = strconv.Atoi(fields[3]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("DAY %q: %w", fields[3], err))
	}
	if e.Hour, e.Min, e.Sec, err = parseHMS(fields[4]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("HH:MM:SS %q: %w", fields[4], err))
	}
	if e.Corr, err = parseCorr(fields[5]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("CORR %q: %w", fields[5], err))
	}
	if err = checkStationary(fields[6]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("R/S %q: %w", fields[6], err))
	}
	return e, errs
}

func parseExpiresLine(fields []string) (civil.DateTime, error) {
	if len(fields) != 5 {
		return civil.DateTime{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	var (
		dt   civil.DateTime
		errs error
		err  error
	)
	if dt.Year, err = strconv.Atoi(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("YEAR %q: %w", fields[1], err))
	}
	if dt.Month, err = parseMonth(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("MONTH %q: %w", fields[2], err))
	}
	if dt.Day, err = strconv.Atoi(fields[3]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("DAY %q: %w", fields[3], err))
	}
	if dt.Hour, dt.Min, dt.Sec, err = parseHMS(fields[4]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("HH:MM:SS %q: %w", fields[4], err))
	}
	return dt, errs
}

func parseCorr(s string) (Corr, error) {
	switch s {
	case "+":
		return Added, nil
	case "-":
		return Skipped, nil
	default:
		return "", fmt.Errorf("invalid leap correction: %q", s)
	}
}

// checkStationary verifies the R/S column denotes a stationary leap second,
// i.e. one whose time is given in UTC. Rolling leap seconds never made it
// into the published table and are not supported.
func checkStationary(s string) error {
	l := strings.ToLower(s)
	if isAbbrev(l, "stationary", "s") {
		return nil
	}
	if isAbbrev(l, "rolling", "r") {
		return errors.New("rolling leap seconds are not supported")
	}
	return fmt.Errorf("invalid leap mode: %q", s)
}

// parseHMS parses a time in HH:MM:SS format.
func parseHMS(s string) (hh, mm, ss int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 parts, got %d", len(parts))
	}
	if hh, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("hours: %v", err)
	}
	if mm, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("minutes: %v", err)
	}
	if ss, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("seconds: %v", err)
	}
	return hh, mm, ss, nil
}

func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("month %q: too short", s)
	}
	months := []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
	l := strings.ToLower(s)
	for i, long := range months {
		if isAbbrev(l, long, long[:3]) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid month: %q", s)
}

func isAbbrev(s string, long string, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}

// splitLine removes comments and splits the remainder into fields.
// It returns nil for lines with no content.
func splitLine(line string) []string {
	if i := strings.Index(line, "#"); i != -1 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	return strings.Fields(line)
}

// Package periodtab provides the period table: for every canonical zone name
// an ordered list of periods during which the zone's UTC offset and
// abbreviation are constant.
//
// A table is built once, either from a tree of compiled TZif files or from
// explicit period lists, and is never mutated afterwards. Concurrent readers
// need no synchronization.
package periodtab

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// QueryMode selects how the second count passed to
// [Table.PeriodsForTime] is interpreted.
type QueryMode int

const (
	// QueryUTC interprets the count as an absolute instant.
	// Exactly one period matches any instant a contiguous table covers.
	QueryUTC QueryMode = iota
	// QueryWall interprets the count as a local wall-clock reading.
	// Zero periods match inside a DST gap, two inside a DST fold.
	QueryWall
)

func (m QueryMode) String() string {
	switch m {
	case QueryUTC:
		return "utc"
	case QueryWall:
		return "wall"
	default:
		return fmt.Sprintf("<undefined mode (%d)>", int(m))
	}
}

// ErrUnknownZone is returned for names that have no entry in the table,
// neither canonical nor linked.
var ErrUnknownZone = errors.New("unknown zone")

// Period is a contiguous span of time during which a zone's offset to UTC
// and its abbreviation are constant. The span covers [Start, End) in UTC
// seconds; open-ended spans use math.MinInt64 and math.MaxInt64.
type Period struct {
	Start int64
	End   int64

	// UTCOffset is the offset of the zone's standard time from UTC.
	UTCOffset int64
	// DSTOffset is the daylight saving added on top of UTCOffset.
	// Zero while standard time is in effect.
	DSTOffset int64

	// Abbr is the zone designation in effect, e.g. "CEST".
	Abbr string
	// IsDST reports whether the period is daylight saving time.
	IsDST bool
}

// TotalOffset is the number of seconds to add to UTC to get local time.
func (p Period) TotalOffset() int64 {
	return p.UTCOffset + p.DSTOffset
}

// Contains reports whether the instant falls into the period.
func (p Period) Contains(utc int64) bool {
	return p.Start <= utc && utc < p.End
}

// containsWall reports whether the wall-clock reading falls into the period.
func (p Period) containsWall(wall int64) bool {
	return addClamp(p.Start, p.TotalOffset()) <= wall && wall < addClamp(p.End, p.TotalOffset())
}

// addClamp adds an offset to a second count, keeping the open-ended
// sentinels open-ended.
func addClamp(sec, off int64) int64 {
	if sec == math.MinInt64 || sec == math.MaxInt64 {
		return sec
	}
	return sec + off
}

// maxWallSkew bounds how far a wall-clock reading can be from the instant it
// denotes. Real offsets stay within [-12h, +14h] plus saving; two days is a
// safe search window.
const maxWallSkew = 2 * 86400

// Table maps canonical zone names to their periods and link names to their
// canonical targets.
type Table struct {
	zones map[string][]Period
	links map[string]string
}

// New builds a table from explicit period lists. The periods of each zone
// are copied and sorted by start. Links map alias names to canonical ones
// and may chain.
func New(zones map[string][]Period, links map[string]string) (*Table, error) {
	t := &Table{
		zones: make(map[string][]Period, len(zones)),
		links: make(map[string]string, len(links)),
	}
	for name, ps := range zones {
		if len(ps) == 0 {
			return nil, fmt.Errorf("zone %s: no periods", name)
		}
		sorted := append([]Period(nil), ps...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
		t.zones[name] = sorted
	}
	for alias, target := range links {
		t.links[alias] = target
	}
	return t, nil
}

// CanonicalZone resolves link names to the canonical zone name.
// Canonical names resolve to themselves. The second return value is false
// if the name is not in the table.
func (t *Table) CanonicalZone(name string) (string, bool) {
	// Links can chain, although tzdb data keeps them flat.
	for i := 0; i < len(t.links)+1; i++ {
		if _, ok := t.zones[name]; ok {
			return name, true
		}
		target, ok := t.links[name]
		if !ok {
			return "", false
		}
		name = target
	}
	return "", false // link cycle
}

// ZoneExists reports whether the name denotes a zone, canonical or linked.
func (t *Table) ZoneExists(name string) bool {
	_, ok := t.CanonicalZone(name)
	return ok
}

// Zones returns the sorted canonical zone names of the table.
func (t *Table) Zones() []string {
	names := make([]string, 0, len(t.zones))
	for name := range t.zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllPeriods returns a copy of every period of the zone in chronological
// order. It returns nil if the name is not in the table. Link names are
// resolved to their canonical zone.
func (t *Table) AllPeriods(zone string) []Period {
	canonical, ok := t.CanonicalZone(zone)
	if !ok {
		return nil
	}
	ps := t.zones[canonical]
	out := make([]Period, len(ps))
	copy(out, ps)
	return out
}

// PeriodsForTime returns the periods of the zone matching the given second
// count: the instant's single period in QueryUTC mode, or the zero, one or
// two periods whose local clock shows the reading in QueryWall mode. The
// result is in chronological order.
func (t *Table) PeriodsForTime(zone string, sec int64, mode QueryMode) ([]Period, error) {
	canonical, ok := t.CanonicalZone(zone)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}
	ps := t.zones[canonical]

	switch mode {
	case QueryUTC:
		i := sort.Search(len(ps), func(i int) bool { return ps[i].Start > sec }) - 1
		if i >= 0 && ps[i].Contains(sec) {
			return []Period{ps[i]}, nil
		}
		return nil, nil
	case QueryWall:
		// A period can only show the reading if its span is within
		// maxWallSkew of it. Find the last candidate by start, then
		// walk backwards until the spans end too early.
		var matches []Period
		i := sort.Search(len(ps), func(i int) bool { return ps[i].Start > addClamp(sec, maxWallSkew) })
		for j := i - 1; j >= 0; j-- {
			if ps[j].End != math.MaxInt64 && ps[j].End < addClamp(sec, -maxWallSkew) {
				break
			}
			if ps[j].containsWall(sec) {
				matches = append(matches, ps[j])
			}
		}
		// The walk collected matches youngest first.
		for a, b := 0, len(matches)-1; a < b; a, b = a+1, b-1 {
			matches[a], matches[b] = matches[b], matches[a]
		}
		return matches, nil
	default:
		return nil, fmt.Errorf("invalid query mode: %v", mode)
	}
}

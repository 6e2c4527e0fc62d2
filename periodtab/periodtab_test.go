package periodtab

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Transition instants of Europe/Copenhagen around 2014, in UTC seconds.
const (
	cphDSTOn2014  = 1396141200 // 2014-03-30 01:00:00 UTC
	cphDSTOff2014 = 1414285200 // 2014-10-26 01:00:00 UTC
)

func copenhagenPeriods() []Period {
	return []Period{
		{Start: math.MinInt64, End: cphDSTOn2014, UTCOffset: 3600, Abbr: "CET"},
		{Start: cphDSTOn2014, End: cphDSTOff2014, UTCOffset: 3600, DSTOffset: 3600, Abbr: "CEST", IsDST: true},
		{Start: cphDSTOff2014, End: math.MaxInt64, UTCOffset: 3600, Abbr: "CET"},
	}
}

func testTable(t *testing.T) *Table {
	t.Helper()
	tab, err := New(map[string][]Period{
		"UTC":               {{Start: math.MinInt64, End: math.MaxInt64, Abbr: "UTC"}},
		"Europe/Copenhagen": copenhagenPeriods(),
	}, map[string]string{
		"CET": "Europe/Copenhagen",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return tab
}

func TestPeriodsForTimeUTC(t *testing.T) {
	tab := testTable(t)
	cases := []struct {
		name string
		sec  int64
		want string
	}{
		{"before transition", cphDSTOn2014 - 1, "CET"},
		{"at transition", cphDSTOn2014, "CEST"},
		{"inside DST", cphDSTOn2014 + 86400, "CEST"},
		{"after fallback", cphDSTOff2014, "CET"},
		{"distant past", math.MinInt64 + 1, "CET"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := tab.PeriodsForTime("Europe/Copenhagen", c.sec, QueryUTC)
			if err != nil {
				t.Fatalf("PeriodsForTime() error: %v", err)
			}
			if len(got) != 1 || got[0].Abbr != c.want {
				t.Errorf("PeriodsForTime(%d, utc) = %+v, want one %s period", c.sec, got, c.want)
			}
		})
	}
}

func TestPeriodsForTimeWall(t *testing.T) {
	tab := testTable(t)

	// Local 2014-03-30 01:30 CET exists once: wall = utc + 1h.
	unique := int64(cphDSTOn2014 - 1800 + 3600)
	got, err := tab.PeriodsForTime("Europe/Copenhagen", unique, QueryWall)
	if err != nil {
		t.Fatalf("PeriodsForTime() error: %v", err)
	}
	if len(got) != 1 || got[0].Abbr != "CET" {
		t.Errorf("unique wall reading matched %+v, want one CET period", got)
	}

	// Local 2014-03-30 02:30 falls into the spring-forward gap.
	gap := int64(cphDSTOn2014 + 1800 + 3600)
	got, err = tab.PeriodsForTime("Europe/Copenhagen", gap, QueryWall)
	if err != nil {
		t.Fatalf("PeriodsForTime() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("gap reading matched %+v, want none", got)
	}

	// Local 2014-10-26 02:30 occurs twice: once in CEST, once in CET.
	fold := int64(cphDSTOff2014 - 1800 + 7200)
	got, err = tab.PeriodsForTime("Europe/Copenhagen", fold, QueryWall)
	if err != nil {
		t.Fatalf("PeriodsForTime() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("fold reading matched %d periods, want 2", len(got))
	}
	if got[0].Abbr != "CEST" || got[1].Abbr != "CET" {
		t.Errorf("fold periods = [%s, %s], want chronological [CEST, CET]", got[0].Abbr, got[1].Abbr)
	}
}

func TestPeriodsForTimeUnknownZone(t *testing.T) {
	tab := testTable(t)
	_, err := tab.PeriodsForTime("Mars/Olympus_Mons", 0, QueryUTC)
	if !errors.Is(err, ErrUnknownZone) {
		t.Errorf("PeriodsForTime() error = %v, want ErrUnknownZone", err)
	}
}

func TestCanonicalZone(t *testing.T) {
	tab := testTable(t)
	cases := []struct {
		name      string
		canonical string
		ok        bool
	}{
		{"Europe/Copenhagen", "Europe/Copenhagen", true},
		{"CET", "Europe/Copenhagen", true},
		{"Europe/Atlantis", "", false},
	}
	for _, c := range cases {
		canonical, ok := tab.CanonicalZone(c.name)
		if canonical != c.canonical || ok != c.ok {
			t.Errorf("CanonicalZone(%s) = (%q, %v), want (%q, %v)", c.name, canonical, ok, c.canonical, c.ok)
		}
		if got := tab.ZoneExists(c.name); got != c.ok {
			t.Errorf("ZoneExists(%s) = %v, want %v", c.name, got, c.ok)
		}
	}
}

func TestLinkedZoneQueries(t *testing.T) {
	tab := testTable(t)
	direct, err := tab.PeriodsForTime("Europe/Copenhagen", cphDSTOn2014, QueryUTC)
	if err != nil {
		t.Fatal(err)
	}
	linked, err := tab.PeriodsForTime("CET", cphDSTOn2014, QueryUTC)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(direct, linked); diff != "" {
		t.Errorf("linked query mismatch (-direct +linked):\n%s", diff)
	}
}

func TestAllPeriods(t *testing.T) {
	tab := testTable(t)
	if diff := cmp.Diff(copenhagenPeriods(), tab.AllPeriods("CET")); diff != "" {
		t.Errorf("AllPeriods() mismatch (-want +got):\n%s", diff)
	}
	if got := tab.AllPeriods("Mars/Olympus_Mons"); got != nil {
		t.Errorf("AllPeriods() for unknown zone = %+v, want nil", got)
	}
}

func TestZones(t *testing.T) {
	tab := testTable(t)
	want := []string{"Europe/Copenhagen", "UTC"}
	if diff := cmp.Diff(want, tab.Zones()); diff != "" {
		t.Errorf("Zones() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsEmptyZone(t *testing.T) {
	_, err := New(map[string][]Period{"Empty/Zone": {}}, nil)
	if err == nil {
		t.Error("New() = nil error, want error for zone without periods")
	}
}

package civil

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		dt   DateTime
		ok   bool
	}{
		{"plain", DateTime{2014, time.March, 30, 2, 20, 2, 0}, true},
		{"leap day", DateTime{2016, time.February, 29, 0, 0, 0, 0}, true},
		{"leap second", DateTime{2015, time.June, 30, 23, 59, 60, 0}, true},
		{"max usec", DateTime{2015, time.June, 30, 23, 59, 59, 999999}, true},
		{"month 13", DateTime{2014, time.Month(13), 1, 0, 0, 0, 0}, false},
		{"month 0", DateTime{2014, time.Month(0), 1, 0, 0, 0, 0}, false},
		{"day 32", DateTime{2014, time.January, 32, 0, 0, 0, 0}, false},
		{"Feb 29 off-cycle", DateTime{2014, time.February, 29, 0, 0, 0, 0}, false},
		{"Feb 29 century", DateTime{2100, time.February, 29, 0, 0, 0, 0}, false},
		{"hour 24", DateTime{2014, time.January, 1, 24, 0, 0, 0}, false},
		{"second 61", DateTime{2014, time.January, 1, 0, 0, 61, 0}, false},
		{"usec overflow", DateTime{2014, time.January, 1, 0, 0, 0, 1000000}, false},
		{"year 0", DateTime{0, time.January, 1, 0, 0, 0, 0}, false},
		{"year 10000", DateTime{10000, time.January, 1, 0, 0, 0, 0}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.dt.Validate()
			if c.ok && err != nil {
				t.Errorf("Validate(%+v) = %v, want nil", c.dt, err)
			}
			if !c.ok && err == nil {
				t.Errorf("Validate(%+v) = nil, want error", c.dt)
			}
		})
	}
}

func TestUnixRoundTrip(t *testing.T) {
	cases := []struct {
		dt   DateTime
		unix int64
	}{
		{DateTime{1970, time.January, 1, 0, 0, 0, 0}, 0},
		{DateTime{2000, time.February, 29, 12, 34, 56, 0}, 951827696},
		{DateTime{2014, time.March, 30, 2, 20, 2, 0}, 1396146002},
		{DateTime{1900, time.January, 1, 0, 0, 0, 0}, -2208988800},
	}
	for _, c := range cases {
		if got := c.dt.Unix(); got != c.unix {
			t.Errorf("%v.Unix() = %d, want %d", c.dt, got, c.unix)
		}
		if diff := cmp.Diff(c.dt, FromUnix(c.unix, 0)); diff != "" {
			t.Errorf("FromUnix(%d) mismatch (-want +got):\n%s", c.unix, diff)
		}
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		dt   DateTime
		want string
	}{
		{DateTime{2015, time.June, 30, 23, 59, 60, 0}, "2015-06-30 23:59:60"},
		{DateTime{987, time.January, 2, 3, 4, 5, 60}, "0987-01-02 03:04:05.000060"},
	}
	for _, c := range cases {
		if got := c.dt.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestCompare(t *testing.T) {
	a := DateTime{2014, time.March, 9, 1, 1, 1, 0}
	b := DateTime{2014, time.March, 9, 1, 1, 1, 2}
	c := DateTime{2014, time.March, 9, 1, 1, 2, 0}
	if got := a.Compare(b); got != -1 {
		t.Errorf("a.Compare(b) = %d, want -1", got)
	}
	if got := c.Compare(a); got != 1 {
		t.Errorf("c.Compare(a) = %d, want 1", got)
	}
	if got := a.Compare(a); got != 0 {
		t.Errorf("a.Compare(a) = %d, want 0", got)
	}
}

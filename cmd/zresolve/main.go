// Command zresolve resolves a civil reading in a named zone and prints
// the matching instants. It can also shift the resolved reading into
// another zone.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/leapsec"
	"github.com/ngrash/go-zoned/periodtab"
	"github.com/ngrash/go-zoned/zoned"
)

var (
	zoneinfoFlag = flag.String("zoneinfo", "/usr/share/zoneinfo", "Directory with compiled TZif files")
	linksFlag    = flag.String("links", "", "Optional tzdb backward file with zone links")
	shiftFlag    = flag.String("shift", "", "Shift the resolved reading into this zone")
	offsetFlag   = flag.Int64("offset", 0, "Disambiguate an ambiguous reading by total UTC offset in seconds")
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		return fmt.Errorf("Usage: zresolve [flags] <zone> <YYYY-MM-DD HH:MM:SS>")
	}

	r, err := newResolver(*zoneinfoFlag, *linksFlag)
	if err != nil {
		return err
	}

	dt, err := parseDateTime(args[1])
	if err != nil {
		return err
	}

	res, err := r.Resolve(dt, args[0])
	if err != nil {
		return err
	}

	fmt.Println("State:", res.State)
	switch res.State {
	case zoned.Unique:
		printTime(res.Time)
	case zoned.Ambiguous:
		for _, c := range res.Candidates {
			printTime(c)
		}
		if isFlagSet("offset") {
			picked, err := zoned.Disambiguate(res, *offsetFlag)
			if err != nil {
				return err
			}
			fmt.Println("Picked:")
			printTime(picked)
			res.Time = picked
		} else {
			return nil
		}
	case zoned.Gap:
		return nil
	}

	if *shiftFlag != "" {
		shifted, err := r.Shift(res.Time, *shiftFlag)
		if err != nil {
			return err
		}
		fmt.Println("Shifted:")
		printTime(shifted)
	}

	return nil
}

func newResolver(zoneinfo, linksFile string) (*zoned.Resolver, error) {
	var links map[string]string
	if linksFile != "" {
		f, err := os.Open(linksFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		links, err = periodtab.ParseLinks(f)
		if err != nil {
			return nil, err
		}
	}

	table, err := periodtab.Load(os.DirFS(zoneinfo), links)
	if err != nil {
		return nil, err
	}
	return zoned.New(table, leapsec.Default()), nil
}

func parseDateTime(s string) (civil.DateTime, error) {
	var dt civil.DateTime
	var month int
	n, err := fmt.Sscanf(s, "%d-%d-%d %d:%d:%d", &dt.Year, &month, &dt.Day, &dt.Hour, &dt.Min, &dt.Sec)
	if err != nil || n != 6 {
		return civil.DateTime{}, fmt.Errorf("parse %q: want YYYY-MM-DD HH:MM:SS", s)
	}
	dt.Month = time.Month(month)
	return dt, nil
}

func printTime(t zoned.Time) {
	fmt.Printf("  %s utc_offset=%d dst_offset=%d\n", t, t.UTCOffset, t.DSTOffset)
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Command zinspect prints the offset periods of a zone.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/periodtab"
)

var (
	zoneinfoFlag = flag.String("zoneinfo", "/usr/share/zoneinfo", "Directory with compiled TZif files")
	linksFlag    = flag.String("links", "", "Optional tzdb backward file with zone links")
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
	if len(args) != 1 {
		return fmt.Errorf("Usage: zinspect [flags] <zone>")
	}

	var links map[string]string
	if *linksFlag != "" {
		f, err := os.Open(*linksFlag)
		if err != nil {
			return err
		}
		defer f.Close()
		links, err = periodtab.ParseLinks(f)
		if err != nil {
			return err
		}
	}

	table, err := periodtab.Load(os.DirFS(*zoneinfoFlag), links)
	if err != nil {
		return err
	}

	zone := args[0]
	canonical, ok := table.CanonicalZone(zone)
	if !ok {
		return fmt.Errorf("unknown zone %q", zone)
	}
	if canonical != zone {
		fmt.Printf("%s is a link to %s\n", zone, canonical)
	}

	for _, p := range table.AllPeriods(canonical) {
		dst := " "
		if p.IsDST {
			dst = "D"
		}
		fmt.Printf("%20s .. %20s  %-6s %s utc_offset=%-6d dst_offset=%d\n",
			formatBound(p.Start), formatBound(p.End), p.Abbr, dst, p.UTCOffset, p.DSTOffset)
	}
	return nil
}

func formatBound(sec int64) string {
	switch sec {
	case math.MinInt64:
		return "-inf"
	case math.MaxInt64:
		return "+inf"
	}
	return civil.FromUnix(sec, 0).String() + "Z"
}

// Command zleaps prints the leap second table. By default it uses the
// table embedded in the leapsec package. With -fetch it downloads the
// latest IANA time zone database release instead.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ngrash/go-zoned/ianadist"
	"github.com/ngrash/go-zoned/leapsec"
)

var fetchFlag = flag.Bool("fetch", false, "Download the latest leap second table from IANA")

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	table := leapsec.Default()
	if *fetchFlag {
		release, _, err := ianadist.Latest(context.Background(), "")
		if err != nil {
			return err
		}
		fmt.Println("tzdb release:", release.Version)
		table, err = leapsec.Parse(bytes.NewReader(release.LeapSecondsFile))
		if err != nil {
			return err
		}
	}

	for _, e := range table.Entries() {
		fmt.Printf("%04d-%02d-%02d %02d:%02d:%02d %s\n", e.Year, int(e.Month), e.Day, e.Hour, e.Min, e.Sec, e.Corr)
	}
	if expires, ok := table.Expires(); ok {
		fmt.Println("expires:", expires)
	}
	return nil
}

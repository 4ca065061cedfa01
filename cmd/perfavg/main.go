// Command perfavg prints the average of one or more timing logs written by
// headtrack -timing-log.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ayusman/headtrack/internal/log"
	"github.com/ayusman/headtrack/internal/metrics"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: perfavg timing.log [timing.log ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log.Init("warn")

	failed := false
	var all []float64
	for _, path := range flag.Args() {
		values, err := metrics.ReadTimingFile(path)
		if err != nil {
			log.Error("read timing log", "path", path, "error", err)
			failed = true
			continue
		}
		all = append(all, values...)
		fmt.Printf("%s: %d frames, average %.2f µs\n", path, len(values), metrics.Average(values))
	}

	if flag.NArg() > 1 && len(all) > 0 {
		fmt.Printf("total: %d frames, average %.2f µs\n", len(all), metrics.Average(all))
	}
	if failed {
		os.Exit(1)
	}
}

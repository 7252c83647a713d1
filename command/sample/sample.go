package sample

import (
	"flag"
	"fmt"
	"os"

	ccsv "ci-dashboard/connectors/csv"
)

// Run writes the bundled sample dataset (weekly OAE trend + loss entries)
// into the data directory so the other commands have something to chew on.
//
// Usage:
//
//	ci-dashboard sample [-data ./data]
func Run(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	dataDir := fs.String("data", "./data", "directory to write sample CSV files into")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := ccsv.WriteSampleData(*dataDir); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "sample.done dir=%s files=%s,%s\n", *dataDir, ccsv.OAEFile, ccsv.LossFile)
	return nil
}

// Command validate checks an exported capacity snapshot for internal
// consistency: a single anchor date, populations above the floor, per-capita
// rates that agree with the raw counts, capacity estimates that agree with the
// bed totals, and no duplicate counties.
//
// Usage:
//
//	go run ./cmd/validate -snapshot capacity_snapshot_20200510_1432.json
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/county-strain-etl/internal/adapter/export"
	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "path to a capacity_snapshot_*.json file")
	minPopulation := flag.Int64("min-population", domain.DefaultPopulationFloor, "population floor the snapshot was cut at")
	flag.Parse()

	if *snapshotPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*snapshotPath, *minPopulation))
}

func run(path string, minPopulation int64) int {
	fmt.Println("=== Capacity Snapshot Validation ===")
	fmt.Println()

	rows, err := export.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := validate(rows, minPopulation)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d\n", len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

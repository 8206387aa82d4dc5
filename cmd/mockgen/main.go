package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"opsboard/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, dirty, overnight")
	outDir := flag.String("out", "./.cache", "Output directory for mock CSV files")
	days := flag.Int("days", 28, "Number of calendar days to cover")
	seed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Days:     *days,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (%d days) to %s...\n", cfg.Scenario, cfg.Days, *outDir)

	shifts, services := engine.Generate(cfg)

	if err := engine.Save(*outDir, shifts, services); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}

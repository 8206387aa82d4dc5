// Package engine generates synthetic duty roster and dispatch log CSV
// exports in the spreadsheet column layout the normalizer expects, so the
// server and its clients can be exercised without real data.
package engine

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

type GeneratorConfig struct {
	Scenario string // "mild", "dirty", "overnight"
	Days     int
	Seed     int64
	Now      time.Time
}

var shiftTags = []string{"ORDINARIO", "TS", "TSSA", "POLI", "DIA"}
var serviceTags = []string{"TS", "TSSA", "ORDINARIO", "DIM", "SPORT"}
var vehicles = []string{"ECHO-1", "ECHO-2", "MIKE-1"}

// Generate produces the raw rows of both datasets, header included.
func Generate(cfg GeneratorConfig) (shifts [][]string, services [][]string) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Days < 1 {
		cfg.Days = 28
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	shifts = append(shifts, []string{"Data", "Inizio", "Fine", "Categoria"})
	services = append(services, []string{"GG", "[P]Ore", "[A]Ore", "Km effet.", "Mezzo", "Intervento"})

	// The last day is today; shifts walk backwards from there.
	first := cfg.Now.AddDate(0, 0, -(cfg.Days - 1))

	for d := 0; d < cfg.Days; d++ {
		day := first.AddDate(0, 0, d)
		date := day.Format("02/01/2006")

		// 1. Roster: two or three shifts per day on fixed slots.
		slots := [][2]int{{8, 14}, {14, 20}}
		if cfg.Scenario == "overnight" || rng.Float64() < 0.4 {
			slots = append(slots, [2]int{20, 8})
		}
		for _, slot := range slots {
			tag := shiftTags[rng.Intn(len(shiftTags))]
			start := fmt.Sprintf("%02d:00", slot[0])
			end := fmt.Sprintf("%02d:00", slot[1])
			if cfg.Scenario == "dirty" && rng.Float64() < 0.1 {
				start = "boh" // unparseable on purpose
			}
			shifts = append(shifts, []string{date, start, end, fmt.Sprintf("[%s] Turno", tag)})
		}

		// 2. Dispatch log: zero to five services per day.
		for n := rng.Intn(6); n > 0; n-- {
			tag := serviceTags[rng.Intn(len(serviceTags))]
			depHour := 7 + rng.Intn(14)
			depMin := rng.Intn(60)
			durMin := 20 + rng.Intn(90)
			if cfg.Scenario == "overnight" && rng.Float64() < 0.3 {
				depHour = 23
				durMin = 40 + rng.Intn(60) // arrival rolls past midnight
			}
			departure := time.Date(2000, 1, 1, depHour, depMin, 0, 0, time.UTC)
			arrival := departure.Add(time.Duration(durMin) * time.Minute)

			km := fmt.Sprintf("%.1f", 3+rng.Float64()*40)
			if cfg.Scenario == "dirty" {
				switch rng.Intn(10) {
				case 0:
					km = "" // missing odometer entry
				case 1:
					km = "12,5" // comma decimal
				}
			}

			services = append(services, []string{
				date,
				departure.Format("15:04"),
				arrival.Format("15:04"),
				km,
				vehicles[rng.Intn(len(vehicles))],
				fmt.Sprintf("[%s] Servizio", tag),
			})
		}
	}

	return shifts, services
}

// Save writes both datasets as shifts.csv and services.csv under outDir.
func Save(outDir string, shifts, services [][]string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outDir, "shifts.csv"), shifts); err != nil {
		return err
	}
	return writeCSV(filepath.Join(outDir, "services.csv"), services)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

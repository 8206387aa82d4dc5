package normalize

import "time"

// ShiftRecord is a canonical duty-roster entry.
type ShiftRecord struct {
	Date        time.Time `json:"date"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CategoryRaw string    `json:"category_raw"`
	Category    string    `json:"category"`
}

// Hours returns the shift duration in hours, always >= 0.
func (r ShiftRecord) Hours() float64 {
	return r.End.Sub(r.Start).Hours()
}

// ServiceRecord is a canonical dispatch entry.
type ServiceRecord struct {
	Date            time.Time `json:"date"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	DistanceKM      float64   `json:"distance_km"`
	DistanceValid   bool      `json:"distance_valid"`
	Vehicle         string    `json:"vehicle"`
	InterventionRaw string    `json:"intervention_raw"`
	Category        string    `json:"category"`
}

// Minutes returns the service duration in minutes, always >= 0.
func (r ServiceRecord) Minutes() float64 {
	return r.Arrival.Sub(r.Departure).Minutes()
}

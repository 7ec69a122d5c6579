package model

import "time"

// IndustrySnapshot carries one sector's percentage changes across the
// provider's reporting horizons. Fields are pointers because the upstream
// feed omits horizons for thinly covered sectors.
type IndustrySnapshot struct {
	Sector         string   `json:"sector"`
	ChangeDay      *float64 `json:"change_day,omitempty"`
	ChangeWeek     *float64 `json:"change_week,omitempty"`
	ChangeMonth    *float64 `json:"change_month,omitempty"`
	ChangeQuarter  *float64 `json:"change_quarter,omitempty"`
	ChangeHalfYear *float64 `json:"change_half_year,omitempty"`
	ChangeYear     *float64 `json:"change_year,omitempty"`
	ChangeYTD      *float64 `json:"change_ytd,omitempty"`
}

// SectorSnapshot is the full industry performance table fetched on one day.
type SectorSnapshot struct {
	FetchDate    time.Time          `json:"fetch_date"`
	Performances []IndustrySnapshot `json:"performances"`
}

// Float returns a pointer to v. Convenience for building snapshots in tests
// and fetchers.
func Float(v float64) *float64 { return &v }

// Package glucose holds the application's readings, monthly summaries, and
// logging runs.
package glucose

import "time"

// Reading is one blood-glucose measurement in mg/dL.
type Reading struct {
	ReadingID string    `db:"reading_id"`
	ClerkID   string    `db:"clerk_id"`
	ValueMgdl int       `db:"value_mgdl"`
	Notes     string    `db:"notes"`
	TakenAt   time.Time `db:"taken_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MonthSummary aggregates one calendar month of readings.
type MonthSummary struct {
	Month        string  `json:"month"`
	Count        int     `json:"count"`
	Average      float64 `json:"average"`
	High         int     `json:"high"`
	Low          int     `json:"low"`
	EstimatedA1C float64 `json:"estimated_a1c"`
}

// Run is a streak of consecutive days with at least one reading each.
type Run struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Days    int       `json:"days"`
	Average float64   `json:"average"`
}

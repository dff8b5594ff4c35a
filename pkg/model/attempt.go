package model

import "time"

// AttemptRecord is one successful reactivation trigger, kept for diagnostics.
// Only triggers that actually fired are recorded; skipped and disabled
// controls leave no trace.
type AttemptRecord struct {
	ID           string    `json:"id"`
	ResourceName string    `json:"resource_name"`
	TypeID       string    `json:"type_id"`
	Control      string    `json:"control"`
	CreatedAt    time.Time `json:"created_at"`
}

// AttemptStats aggregates the attempt history.
type AttemptStats struct {
	Total     int            `json:"total"`
	ByControl map[string]int `json:"by_control,omitempty"`
}

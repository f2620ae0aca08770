package models

import (
	"time"

	"github.com/google/uuid"
)

// Stat is a recorded garden measurement (harvest weight, water usage, soil moisture...).
type Stat struct {
	ID         uuid.UUID `json:"id"`
	GardenID   uuid.UUID `json:"garden_id"`
	StatType   string    `json:"stat_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Notes      string    `json:"notes"`
	RecordedBy uuid.UUID `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

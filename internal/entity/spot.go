package entity

import (
	"time"
)

type SpotStatus string

const (
	SpotStatusAvailable SpotStatus = "available"
	SpotStatusOccupied  SpotStatus = "occupied"
)

type Spot struct {
	ID         int64      `json:"id" db:"id"`
	LotID      int64      `json:"lot_id" db:"lot_id"`
	SpotNumber int        `json:"spot_number" db:"spot_number"`
	Status     SpotStatus `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// SpotDetails — место вместе с текущим живым бронированием (если есть)
type SpotDetails struct {
	Spot
	LotName            string       `json:"lot_name"`
	CurrentReservation *Reservation `json:"current_reservation,omitempty"`
}

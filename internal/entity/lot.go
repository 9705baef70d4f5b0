package entity

import (
	"time"
)

type Lot struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	PricePerHour float64   `json:"price_per_hour" db:"price_per_hour"`
	Address      string    `json:"address" db:"address"`
	PinCode      string    `json:"pin_code" db:"pin_code"`
	TotalSpots   int       `json:"total_spots" db:"total_spots"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type LotWithAvailability struct {
	Lot
	AvailableSpots int `json:"available_spots"`
	OccupiedSpots  int `json:"occupied_spots"`
}

// HasFreeSpots сообщает, остались ли свободные места в паркинге
func (l *LotWithAvailability) HasFreeSpots() bool {
	return l.AvailableSpots > 0
}

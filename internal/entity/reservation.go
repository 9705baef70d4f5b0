package entity

import (
	"fmt"
	"math"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "reserved"
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// IsLive сообщает, удерживает ли бронирование место (ещё не завершено)
func (s ReservationStatus) IsLive() bool {
	return s == ReservationStatusReserved || s == ReservationStatusActive
}

type Reservation struct {
	ID         int64             `json:"id" db:"id"`
	SpotID     int64             `json:"spot_id" db:"spot_id"`
	UserID     int64             `json:"user_id" db:"user_id"`
	ReservedAt time.Time         `json:"reserved_at" db:"reserved_at"`
	ParkingAt  *time.Time        `json:"parking_at,omitempty" db:"parking_at"`
	LeavingAt  *time.Time        `json:"leaving_at,omitempty" db:"leaving_at"`
	Status     ReservationStatus `json:"status" db:"status"`
	Cost       *float64          `json:"cost,omitempty" db:"cost"`
	Remarks    string            `json:"remarks,omitempty" db:"remarks"`
}

// ReservationRecord — бронирование вместе с данными паркинга и места,
// используется для истории и экспорта
type ReservationRecord struct {
	Reservation
	LotName      string  `json:"lot_name"`
	LotAddress   string  `json:"lot_address,omitempty"`
	SpotNumber   int     `json:"spot_number"`
	PricePerHour float64 `json:"price_per_hour"`
	Username     string  `json:"username,omitempty"`
}

// DurationHours возвращает длительность парковки в часах.
// Ноль, если какая-то из отметок времени отсутствует.
func (r *Reservation) DurationHours() float64 {
	if r.ParkingAt == nil || r.LeavingAt == nil {
		return 0
	}
	return r.LeavingAt.Sub(*r.ParkingAt).Hours()
}

// BillableHours округляет длительность вверх до целого часа.
// Нулевая длительность не тарифицируется, любая положительная — минимум час.
func (r *Reservation) BillableHours() int {
	hours := r.DurationHours()
	if hours <= 0 {
		return 0
	}
	return int(math.Ceil(hours))
}

// CalculateCost считает стоимость по текущему тарифу паркинга
func (r *Reservation) CalculateCost(pricePerHour float64) float64 {
	return float64(r.BillableHours()) * pricePerHour
}

// DurationString возвращает человекочитаемую длительность вида "2h 30m"
func (r *Reservation) DurationString() string {
	if r.ParkingAt == nil || r.LeavingAt == nil {
		return "Not yet completed"
	}

	diff := r.LeavingAt.Sub(*r.ParkingAt)
	hours := int(diff.Hours())
	minutes := int(diff.Minutes()) % 60

	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// CostString форматирует стоимость для экспорта, "N/A" если не посчитана
func (r *Reservation) CostString() string {
	if r.Cost == nil {
		return "N/A"
	}
	return fmt.Sprintf("₹%.2f", *r.Cost)
}

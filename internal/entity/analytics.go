package entity

import (
	"fmt"
	"time"
)

// LotRevenue — выручка по одному паркингу
type LotRevenue struct {
	LotID   int64   `json:"lot_id"`
	LotName string  `json:"lot_name"`
	Revenue float64 `json:"revenue"`
}

// RevenueReport содержит аналитику выручки для администратора
type RevenueReport struct {
	TotalRevenue          float64       `json:"total_revenue"`
	CompletedReservations int64         `json:"total_completed_reservations"`
	RevenueByLot          []*LotRevenue `json:"revenue_by_lot"`
}

// LotOccupancy — загруженность одного паркинга
type LotOccupancy struct {
	LotID          int64   `json:"lot_id"`
	LotName        string  `json:"lot_name"`
	TotalSpots     int     `json:"total_spots"`
	OccupiedSpots  int     `json:"occupied_spots"`
	AvailableSpots int     `json:"available_spots"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}

// PopularLot — паркинг с количеством бронирований
type PopularLot struct {
	LotID            int64  `json:"lot_id"`
	LotName          string `json:"lot_name"`
	ReservationCount int64  `json:"reservation_count"`
}

// MonthlySpending — траты пользователя за один месяц
type MonthlySpending struct {
	Month  string  `json:"month"` // формат "2006-01"
	Amount float64 `json:"amount"`
}

// SpendingReport содержит аналитику трат пользователя
type SpendingReport struct {
	TotalSpent        float64            `json:"total_spent"`
	CompletedParkings int64              `json:"total_completed_parkings"`
	MonthlySpending   []*MonthlySpending `json:"monthly_spending"`
}

// LotUsage — сколько раз пользователь бронировал конкретный паркинг
type LotUsage struct {
	LotName    string `json:"lot_name"`
	UsageCount int64  `json:"usage_count"`
}

// UsageReport содержит паттерны использования для пользователя
type UsageReport struct {
	MostUsedLots         []*LotUsage                 `json:"most_used_lots"`
	ReservationsByStatus map[ReservationStatus]int64 `json:"reservations_by_status"`
}

// SystemReport — сводка активности всей системы для месячного отчёта
type SystemReport struct {
	TotalUsers         int64     `json:"total_users"`
	TotalReservations  int64     `json:"total_reservations"`
	ActiveReservations int64     `json:"active_reservations"`
	TotalRevenue       float64   `json:"total_revenue"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// OccupancyRate вычисляет коэффициент загруженности (0.0 до 100.0)
func CalcOccupancyRate(occupied, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(occupied) / float64(total) * 100
}

// String возвращает текст отчёта для письма администратору
func (r *SystemReport) String() string {
	return fmt.Sprintf(
		"Monthly Parking Activity Report\n\n"+
			"Total Registered Users: %d\n"+
			"Total Reservations Made: %d\n"+
			"Current Active Parkings: %d\n"+
			"Total Revenue Generated: ₹%.2f\n",
		r.TotalUsers,
		r.TotalReservations,
		r.ActiveReservations,
		r.TotalRevenue,
	)
}

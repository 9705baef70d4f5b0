package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad time literal %q: %v", value, err)
	}
	return parsed
}

// TestBillableHours проверяет округление длительности вверх до целого часа
func TestBillableHours(t *testing.T) {
	start := ts(t, "2025-03-01T10:00:00Z")

	tests := []struct {
		name     string
		duration time.Duration
		want     int
	}{
		{name: "zero duration is free", duration: 0, want: 0},
		{name: "ten minutes rounds to one hour", duration: 10 * time.Minute, want: 1},
		{name: "exactly one hour", duration: time.Hour, want: 1},
		{name: "61 minutes rounds to two hours", duration: 61 * time.Minute, want: 2},
		{name: "two and a half hours", duration: 150 * time.Minute, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := start.Add(tt.duration)
			r := &Reservation{ParkingAt: &start, LeavingAt: &end}

			assert.Equal(t, tt.want, r.BillableHours())
		})
	}
}

func TestBillableHours_MissingTimestamps(t *testing.T) {
	start := ts(t, "2025-03-01T10:00:00Z")

	r := &Reservation{}
	assert.Equal(t, 0, r.BillableHours())

	r = &Reservation{ParkingAt: &start}
	assert.Equal(t, 0, r.BillableHours())
}

// TestCalculateCost проверяет расчет стоимости по тарифу
func TestCalculateCost(t *testing.T) {
	start := ts(t, "2025-03-01T10:00:00Z")

	tests := []struct {
		name         string
		duration     time.Duration
		pricePerHour float64
		want         float64
	}{
		{name: "zero duration costs nothing", duration: 0, pricePerHour: 50, want: 0},
		{name: "partial hour billed in full", duration: 10 * time.Minute, pricePerHour: 50, want: 50},
		{name: "61 minutes billed as two hours", duration: 61 * time.Minute, pricePerHour: 50, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := start.Add(tt.duration)
			r := &Reservation{ParkingAt: &start, LeavingAt: &end}

			assert.Equal(t, tt.want, r.CalculateCost(tt.pricePerHour))
		})
	}
}

func TestDurationString(t *testing.T) {
	start := ts(t, "2025-03-01T10:00:00Z")
	end := start.Add(2*time.Hour + 30*time.Minute)

	r := &Reservation{ParkingAt: &start, LeavingAt: &end}
	assert.Equal(t, "2h 30m", r.DurationString())

	r = &Reservation{ParkingAt: &start}
	assert.Equal(t, "Not yet completed", r.DurationString())
}

func TestCostString(t *testing.T) {
	cost := 150.0
	r := &Reservation{Cost: &cost}
	assert.Equal(t, "₹150.00", r.CostString())

	r = &Reservation{}
	assert.Equal(t, "N/A", r.CostString())
}

func TestReservationStatusIsLive(t *testing.T) {
	assert.True(t, ReservationStatusReserved.IsLive())
	assert.True(t, ReservationStatusActive.IsLive())
	assert.False(t, ReservationStatusCompleted.IsLive())
}

func TestCalcOccupancyRate(t *testing.T) {
	assert.Equal(t, 0.0, CalcOccupancyRate(5, 0))
	assert.Equal(t, 50.0, CalcOccupancyRate(1, 2))
	assert.Equal(t, 100.0, CalcOccupancyRate(3, 3))
}

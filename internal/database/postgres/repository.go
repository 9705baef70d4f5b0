package repository

import (
	"context"
	"time"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

type LotRepository interface {
	// CRUD операции
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id int64) (*entity.LotWithAvailability, error)
	GetAll(ctx context.Context) ([]*entity.LotWithAvailability, error)
	Update(ctx context.Context, lot *entity.Lot) error
	Delete(ctx context.Context, id int64) error

	// Resize меняет вместимость паркинга, добавляя или убирая места
	Resize(ctx context.Context, lotID int64, newTotal int) error

	// Операции с местами
	GetSpots(ctx context.Context, lotID int64, status entity.SpotStatus) ([]*entity.SpotDetails, error)
	GetSpotByID(ctx context.Context, spotID int64) (*entity.SpotDetails, error)
}

type ReservationRepository interface {
	// Allocation operations, each runs as a single transaction
	Reserve(ctx context.Context, userID, lotID int64) (*entity.Reservation, error)
	Occupy(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error)
	Release(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error)

	// Query operations
	GetByID(ctx context.Context, id int64) (*entity.Reservation, error)
	GetCurrentByUser(ctx context.Context, userID int64) (*entity.Reservation, error)
	GetHistoryByUser(ctx context.Context, userID int64, status entity.ReservationStatus) ([]*entity.ReservationRecord, error)
	GetAll(ctx context.Context, status entity.ReservationStatus) ([]*entity.ReservationRecord, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)

	// GetInactive возвращает обычных пользователей без бронирований после отметки
	GetInactive(ctx context.Context, before time.Time) ([]*entity.User, error)
	GetFirstAdmin(ctx context.Context) (*entity.User, error)
}

type AnalyticsRepository interface {
	RevenueReport(ctx context.Context) (*entity.RevenueReport, error)
	OccupancyReport(ctx context.Context) ([]*entity.LotOccupancy, error)
	PopularLots(ctx context.Context, limit int) ([]*entity.PopularLot, error)
	SpendingReport(ctx context.Context, userID int64) (*entity.SpendingReport, error)
	UsageReport(ctx context.Context, userID int64) (*entity.UsageReport, error)
	SystemReport(ctx context.Context) (*entity.SystemReport, error)
}

package service

import (
	"context"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

// AuthService defines registration and token operations
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, req *LoginRequest) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
}

type LotService interface {
	// Основные операции
	CreateLot(ctx context.Context, req *CreateLotRequest) (*entity.Lot, error)
	GetLot(ctx context.Context, id int64) (*entity.LotWithAvailability, error)
	GetAllLots(ctx context.Context) ([]*entity.LotWithAvailability, error)
	GetAvailableLots(ctx context.Context) ([]*entity.LotWithAvailability, error)
	UpdateLot(ctx context.Context, id int64, req *UpdateLotRequest) (*entity.Lot, error)
	DeleteLot(ctx context.Context, id int64) error

	// Операции с местами
	GetLotSpots(ctx context.Context, lotID int64, status entity.SpotStatus) ([]*entity.SpotDetails, error)
	GetSpot(ctx context.Context, spotID int64) (*entity.SpotDetails, error)
}

// ReservationService определяет интерфейс жизненного цикла бронирования
type ReservationService interface {
	// Жизненный цикл: reserved -> active -> completed
	Reserve(ctx context.Context, userID, lotID int64) (*entity.Reservation, error)
	Occupy(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error)
	Release(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error)

	// Запросы
	GetReservation(ctx context.Context, id int64) (*entity.Reservation, error)
	GetCurrent(ctx context.Context, userID int64) (*entity.Reservation, error)
	GetHistory(ctx context.Context, userID int64, status entity.ReservationStatus) ([]*entity.ReservationRecord, error)
	GetAllReservations(ctx context.Context, status entity.ReservationStatus) ([]*entity.ReservationRecord, error)

	// Асинхронный экспорт истории в CSV
	RequestExport(ctx context.Context, userID int64) (string, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetAllUsers(ctx context.Context) ([]*entity.User, error)
}

// AnalyticsService defines the reporting operations
type AnalyticsService interface {
	// Административная аналитика
	GetRevenueReport(ctx context.Context) (*entity.RevenueReport, error)
	GetOccupancyReport(ctx context.Context) ([]*entity.LotOccupancy, error)
	GetPopularLots(ctx context.Context, limit int) ([]*entity.PopularLot, error)
	GetSystemReport(ctx context.Context) (*entity.SystemReport, error)

	// Пользовательская аналитика
	GetSpendingReport(ctx context.Context, userID int64) (*entity.SpendingReport, error)
	GetUsageReport(ctx context.Context, userID int64) (*entity.UsageReport, error)
}

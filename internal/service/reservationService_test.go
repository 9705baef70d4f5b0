package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rediscache "github.com/ds124wfegd/parking-system/internal/database/redis"
	"github.com/ds124wfegd/parking-system/internal/entity"
)

func freeLot(id int64, available int) *entity.LotWithAvailability {
	return &entity.LotWithAvailability{
		Lot:            entity.Lot{ID: id, Name: "Central", PricePerHour: 50, TotalSpots: 10},
		AvailableSpots: available,
	}
}

// TestReserve_Success проверяет успешное бронирование и сброс кэша
func TestReserve_Success(t *testing.T) {
	lotRepo := &stubLotRepo{lots: []*entity.LotWithAvailability{freeLot(1, 3)}}
	resRepo := &stubReservationRepo{
		reservation: &entity.Reservation{ID: 7, SpotID: 12, UserID: 42, Status: entity.ReservationStatusReserved},
	}
	cache := newMemoryCache()
	svc := NewReservationService(resRepo, lotRepo, cache, &stubPublisher{}, testLogger())

	reservation, err := svc.Reserve(context.Background(), 42, 1)

	require.NoError(t, err)
	require.NotNil(t, reservation)
	assert.Equal(t, int64(7), reservation.ID)
	assert.Equal(t, entity.ReservationStatusReserved, reservation.Status)
	assert.Contains(t, cache.invalidated, rediscache.PatternLots)
	assert.Contains(t, cache.invalidated, rediscache.SpotsPattern(1))
}

func TestReserve_NoFreeSpots(t *testing.T) {
	lotRepo := &stubLotRepo{lots: []*entity.LotWithAvailability{freeLot(1, 0)}}
	resRepo := &stubReservationRepo{}
	svc := NewReservationService(resRepo, lotRepo, newMemoryCache(), &stubPublisher{}, testLogger())

	_, err := svc.Reserve(context.Background(), 42, 1)

	assert.ErrorIs(t, err, entity.ErrNoAvailableSpots)
	assert.Zero(t, resRepo.reserves, "репозиторий не должен вызываться при заполненном паркинге")
}

func TestReserve_ActiveReservationExists(t *testing.T) {
	lotRepo := &stubLotRepo{lots: []*entity.LotWithAvailability{freeLot(1, 3)}}
	resRepo := &stubReservationRepo{
		current: &entity.Reservation{ID: 5, UserID: 42, Status: entity.ReservationStatusActive},
	}
	svc := NewReservationService(resRepo, lotRepo, newMemoryCache(), &stubPublisher{}, testLogger())

	_, err := svc.Reserve(context.Background(), 42, 1)

	assert.ErrorIs(t, err, entity.ErrActiveReservationExists)
	assert.Zero(t, resRepo.reserves)
}

func TestReserve_LotNotFound(t *testing.T) {
	lotRepo := &stubLotRepo{}
	svc := NewReservationService(&stubReservationRepo{}, lotRepo, newMemoryCache(), &stubPublisher{}, testLogger())

	_, err := svc.Reserve(context.Background(), 42, 99)

	assert.ErrorIs(t, err, entity.ErrLotNotFound)
}

// TestReserve_RepoConflict: предварительная проверка прошла, но транзакция
// в репозитории обнаружила гонку
func TestReserve_RepoConflict(t *testing.T) {
	lotRepo := &stubLotRepo{lots: []*entity.LotWithAvailability{freeLot(1, 1)}}
	resRepo := &stubReservationRepo{reserveErr: entity.ErrNoAvailableSpots}
	svc := NewReservationService(resRepo, lotRepo, newMemoryCache(), &stubPublisher{}, testLogger())

	_, err := svc.Reserve(context.Background(), 42, 1)

	assert.ErrorIs(t, err, entity.ErrNoAvailableSpots)
}

func TestOccupy_ForbiddenForForeignReservation(t *testing.T) {
	resRepo := &stubReservationRepo{occupyErr: entity.ErrForbidden}
	svc := NewReservationService(resRepo, &stubLotRepo{}, newMemoryCache(), &stubPublisher{}, testLogger())

	_, err := svc.Occupy(context.Background(), 42, 7)

	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestOccupy_InvalidStatus(t *testing.T) {
	resRepo := &stubReservationRepo{occupyErr: entity.ErrInvalidReservationStatus}
	svc := NewReservationService(resRepo, &stubLotRepo{}, newMemoryCache(), &stubPublisher{}, testLogger())

	_, err := svc.Occupy(context.Background(), 42, 7)

	assert.ErrorIs(t, err, entity.ErrInvalidReservationStatus)
}

// TestRelease_Success проверяет завершение парковки с посчитанной стоимостью
func TestRelease_Success(t *testing.T) {
	cost := 100.0
	resRepo := &stubReservationRepo{
		reservation: &entity.Reservation{ID: 7, SpotID: 12, UserID: 42, Status: entity.ReservationStatusCompleted, Cost: &cost},
	}
	lotRepo := &stubLotRepo{spot: &entity.SpotDetails{Spot: entity.Spot{ID: 12, LotID: 1}}}
	cache := newMemoryCache()
	svc := NewReservationService(resRepo, lotRepo, cache, &stubPublisher{}, testLogger())

	reservation, err := svc.Release(context.Background(), 42, 7)

	require.NoError(t, err)
	require.NotNil(t, reservation.Cost)
	assert.Equal(t, 100.0, *reservation.Cost)
	assert.Contains(t, cache.invalidated, rediscache.SpotsPattern(1))
}

// TestRelease_UnknownSpotInvalidatesAllSpots: если паркинг места определить
// не удалось, сбрасываются все кэши мест
func TestRelease_UnknownSpotInvalidatesAllSpots(t *testing.T) {
	resRepo := &stubReservationRepo{
		reservation: &entity.Reservation{ID: 7, SpotID: 12, UserID: 42, Status: entity.ReservationStatusCompleted},
	}
	lotRepo := &stubLotRepo{spotErr: entity.ErrSpotNotFound}
	cache := newMemoryCache()
	svc := NewReservationService(resRepo, lotRepo, cache, &stubPublisher{}, testLogger())

	_, err := svc.Release(context.Background(), 42, 7)

	require.NoError(t, err)
	assert.Contains(t, cache.invalidated, rediscache.PatternSpots)
}

func TestGetCurrent_NotFound(t *testing.T) {
	svc := NewReservationService(&stubReservationRepo{}, &stubLotRepo{}, newMemoryCache(), &stubPublisher{}, testLogger())

	_, err := svc.GetCurrent(context.Background(), 42)

	assert.ErrorIs(t, err, entity.ErrReservationNotFound)
}

// TestRequestExport_PublishesTask проверяет постановку задачи экспорта в очередь
func TestRequestExport_PublishesTask(t *testing.T) {
	publisher := &stubPublisher{}
	svc := NewReservationService(&stubReservationRepo{}, &stubLotRepo{}, newMemoryCache(), publisher, testLogger())

	taskID, err := svc.RequestExport(context.Background(), 42)

	require.NoError(t, err)
	assert.NotEmpty(t, taskID)
	require.Len(t, publisher.published, 1)

	task := publisher.published[0]
	assert.Equal(t, TaskTypeExportHistory, task.Type)
	assert.Equal(t, int64(42), task.Data["user_id"])
	assert.Equal(t, 3, task.MaxRetries)
	assert.WithinDuration(t, time.Now(), task.ExecuteAt, time.Minute)
}

func TestRequestExport_QueueUnavailable(t *testing.T) {
	svc := NewReservationService(&stubReservationRepo{}, &stubLotRepo{}, newMemoryCache(), nil, testLogger())

	_, err := svc.RequestExport(context.Background(), 42)

	assert.Error(t, err)
}

func TestRequestExport_PublishError(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("redis down")}
	svc := NewReservationService(&stubReservationRepo{}, &stubLotRepo{}, newMemoryCache(), publisher, testLogger())

	_, err := svc.RequestExport(context.Background(), 42)

	assert.Error(t, err)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	repository "github.com/ds124wfegd/parking-system/internal/database/postgres"
	rediscache "github.com/ds124wfegd/parking-system/internal/database/redis"
	"github.com/ds124wfegd/parking-system/internal/entity"
)

// TaskPublisher интерфейс для публикации задач в очередь
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task представляет задачу для очереди
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// Константы типов задач
const (
	TaskTypeSendReminders = "send_reminders"
	TaskTypeMonthlyReport = "monthly_report"
	TaskTypeExportHistory = "export_history"
)

type reservationService struct {
	reservationRepo repository.ReservationRepository
	lotRepo         repository.LotRepository
	cache           rediscache.Cache
	queue           TaskPublisher
	logger          *logrus.Logger
}

// NewReservationService создает новый экземпляр ReservationService
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	lotRepo repository.LotRepository,
	cache rediscache.Cache,
	queue TaskPublisher,
	logger *logrus.Logger,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		lotRepo:         lotRepo,
		cache:           cache,
		queue:           queue,
		logger:          logger,
	}
}

// Reserve бронирует первое свободное место в паркинге.
// Предварительные проверки дают читаемые ошибки, окончательное решение
// принимает транзакция в репозитории.
func (s *reservationService) Reserve(ctx context.Context, userID, lotID int64) (*entity.Reservation, error) {
	lot, err := s.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !lot.HasFreeSpots() {
		return nil, entity.ErrNoAvailableSpots
	}

	existing, err := s.reservationRepo.GetCurrentByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при проверке существующих бронирований: %w", err)
	}
	if existing != nil {
		return nil, entity.ErrActiveReservationExists
	}

	reservation, err := s.reservationRepo.Reserve(ctx, userID, lotID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"user_id":        userID,
		"lot_id":         lotID,
		"spot_id":        reservation.SpotID,
	}).Info("Место забронировано")

	s.invalidateAfterWrite(ctx, lotID)
	return reservation, nil
}

// Occupy отмечает заезд: reserved -> active
func (s *reservationService) Occupy(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error) {
	reservation, err := s.reservationRepo.Occupy(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"user_id":        userID,
		"spot_id":        reservation.SpotID,
	}).Info("Парковка началась")

	s.invalidateAfterWrite(ctx, s.lotIDOfSpot(ctx, reservation.SpotID))
	return reservation, nil
}

// Release отмечает выезд: active -> completed, считает стоимость
func (s *reservationService) Release(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error) {
	reservation, err := s.reservationRepo.Release(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"user_id":        userID,
		"cost":           reservation.Cost,
	}).Info("Парковка завершена")

	s.invalidateAfterWrite(ctx, s.lotIDOfSpot(ctx, reservation.SpotID))
	return reservation, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id int64) (*entity.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

func (s *reservationService) GetCurrent(ctx context.Context, userID int64) (*entity.Reservation, error) {
	reservation, err := s.reservationRepo.GetCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, entity.ErrReservationNotFound
	}
	return reservation, nil
}

func (s *reservationService) GetHistory(ctx context.Context, userID int64, status entity.ReservationStatus) ([]*entity.ReservationRecord, error) {
	return s.reservationRepo.GetHistoryByUser(ctx, userID, status)
}

func (s *reservationService) GetAllReservations(ctx context.Context, status entity.ReservationStatus) ([]*entity.ReservationRecord, error) {
	return s.reservationRepo.GetAll(ctx, status)
}

// RequestExport ставит задачу экспорта истории в CSV и возвращает её ID
func (s *reservationService) RequestExport(ctx context.Context, userID int64) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("очередь задач недоступна")
	}

	taskID := fmt.Sprintf("export_history_%d_%d", userID, time.Now().Unix())
	task := &Task{
		ID:   taskID,
		Type: TaskTypeExportHistory,
		Data: map[string]interface{}{
			"user_id": userID,
		},
		ExecuteAt:  time.Now(),
		MaxRetries: 3,
	}

	if err := s.queue.Publish(ctx, task); err != nil {
		return "", fmt.Errorf("ошибка при постановке задачи экспорта: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"user_id": userID,
	}).Info("Экспорт истории поставлен в очередь")

	return taskID, nil
}

// lotIDOfSpot возвращает паркинг места для точечного сброса кэша,
// ноль при ошибке — тогда сбрасываются все кэши мест
func (s *reservationService) lotIDOfSpot(ctx context.Context, spotID int64) int64 {
	spot, err := s.lotRepo.GetSpotByID(ctx, spotID)
	if err != nil {
		return 0
	}
	return spot.LotID
}

func (s *reservationService) invalidateAfterWrite(ctx context.Context, lotID int64) {
	if err := s.cache.Invalidate(ctx, rediscache.PatternLots); err != nil {
		s.logger.WithError(err).Warn("Не удалось сбросить кэш паркингов")
	}

	pattern := rediscache.PatternSpots
	if lotID != 0 {
		pattern = rediscache.SpotsPattern(lotID)
	}
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.WithError(err).Warn("Не удалось сбросить кэш мест")
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	repository "github.com/ds124wfegd/parking-system/internal/database/postgres"
	rediscache "github.com/ds124wfegd/parking-system/internal/database/redis"
	"github.com/ds124wfegd/parking-system/internal/entity"
)

// CreateLotRequest представляет данные для создания паркинга
type CreateLotRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=100"`
	PricePerHour float64 `json:"price_per_hour" binding:"required,gt=0"`
	Address      string  `json:"address" binding:"required,min=2,max=255"`
	PinCode      string  `json:"pin_code" binding:"required,min=4,max=10"`
	TotalSpots   int     `json:"total_spots" binding:"required,min=1,max=10000"`
}

// UpdateLotRequest представляет данные для обновления паркинга.
// Изменение total_spots добавляет или убирает места.
type UpdateLotRequest struct {
	Name         *string  `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	PricePerHour *float64 `json:"price_per_hour,omitempty" binding:"omitempty,gt=0"`
	Address      *string  `json:"address,omitempty" binding:"omitempty,min=2,max=255"`
	PinCode      *string  `json:"pin_code,omitempty" binding:"omitempty,min=4,max=10"`
	TotalSpots   *int     `json:"total_spots,omitempty" binding:"omitempty,min=1,max=10000"`
}

type lotService struct {
	lotRepo repository.LotRepository
	cache   rediscache.Cache
	logger  *logrus.Logger
}

// NewLotService создает новый экземпляр LotService
func NewLotService(lotRepo repository.LotRepository, cache rediscache.Cache, logger *logrus.Logger) LotService {
	return &lotService{
		lotRepo: lotRepo,
		cache:   cache,
		logger:  logger,
	}
}

func (s *lotService) CreateLot(ctx context.Context, req *CreateLotRequest) (*entity.Lot, error) {
	lot := &entity.Lot{
		Name:         req.Name,
		PricePerHour: req.PricePerHour,
		Address:      req.Address,
		PinCode:      req.PinCode,
		TotalSpots:   req.TotalSpots,
	}

	if err := s.lotRepo.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("ошибка при создании паркинга: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"lot_id":      lot.ID,
		"total_spots": lot.TotalSpots,
	}).Info("Паркинг создан")

	s.invalidateLotCaches(ctx, lot.ID)
	return lot, nil
}

func (s *lotService) GetLot(ctx context.Context, id int64) (*entity.LotWithAvailability, error) {
	return s.lotRepo.GetByID(ctx, id)
}

func (s *lotService) GetAllLots(ctx context.Context) ([]*entity.LotWithAvailability, error) {
	return s.lotRepo.GetAll(ctx)
}

// GetAvailableLots возвращает паркинги со свободными местами, через кэш
func (s *lotService) GetAvailableLots(ctx context.Context) ([]*entity.LotWithAvailability, error) {
	var cached []*entity.LotWithAvailability
	if err := s.cache.Get(ctx, rediscache.KeyAvailableLots, &cached); err == nil {
		return cached, nil
	}

	lots, err := s.lotRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*entity.LotWithAvailability, 0, len(lots))
	for _, lot := range lots {
		if lot.HasFreeSpots() {
			available = append(available, lot)
		}
	}

	if err := s.cache.Set(ctx, rediscache.KeyAvailableLots, available); err != nil {
		s.logger.WithError(err).Warn("Не удалось сохранить список паркингов в кэш")
	}

	return available, nil
}

func (s *lotService) UpdateLot(ctx context.Context, id int64, req *UpdateLotRequest) (*entity.Lot, error) {
	current, err := s.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lot := current.Lot
	if req.Name != nil {
		lot.Name = *req.Name
	}
	if req.PricePerHour != nil {
		lot.PricePerHour = *req.PricePerHour
	}
	if req.Address != nil {
		lot.Address = *req.Address
	}
	if req.PinCode != nil {
		lot.PinCode = *req.PinCode
	}

	if err := s.lotRepo.Update(ctx, &lot); err != nil {
		return nil, fmt.Errorf("ошибка при обновлении паркинга: %w", err)
	}

	// Изменение вместимости идет отдельной транзакцией с блокировкой
	if req.TotalSpots != nil && *req.TotalSpots != lot.TotalSpots {
		if err := s.lotRepo.Resize(ctx, id, *req.TotalSpots); err != nil {
			return nil, err
		}
		lot.TotalSpots = *req.TotalSpots

		s.logger.WithFields(logrus.Fields{
			"lot_id":    id,
			"old_total": current.TotalSpots,
			"new_total": *req.TotalSpots,
		}).Info("Вместимость паркинга изменена")
	}

	s.invalidateLotCaches(ctx, id)
	return &lot, nil
}

func (s *lotService) DeleteLot(ctx context.Context, id int64) error {
	if err := s.lotRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("lot_id", id).Info("Паркинг удален")
	s.invalidateLotCaches(ctx, id)
	return nil
}

// GetLotSpots возвращает места паркинга с фильтром по статусу, через кэш
func (s *lotService) GetLotSpots(ctx context.Context, lotID int64, status entity.SpotStatus) ([]*entity.SpotDetails, error) {
	key := rediscache.SpotsKey(lotID, string(status))

	var cached []*entity.SpotDetails
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	spots, err := s.lotRepo.GetSpots(ctx, lotID, status)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, spots); err != nil {
		s.logger.WithError(err).Warn("Не удалось сохранить список мест в кэш")
	}

	return spots, nil
}

func (s *lotService) GetSpot(ctx context.Context, spotID int64) (*entity.SpotDetails, error) {
	return s.lotRepo.GetSpotByID(ctx, spotID)
}

// invalidateLotCaches сбрасывает кэши списков после успешной записи
func (s *lotService) invalidateLotCaches(ctx context.Context, lotID int64) {
	if err := s.cache.Invalidate(ctx, rediscache.PatternLots); err != nil {
		s.logger.WithError(err).Warn("Не удалось сбросить кэш паркингов")
	}
	if err := s.cache.Invalidate(ctx, rediscache.SpotsPattern(lotID)); err != nil {
		s.logger.WithError(err).Warn("Не удалось сбросить кэш мест")
	}
}

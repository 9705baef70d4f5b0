package service

import (
	"context"

	repository "github.com/ds124wfegd/parking-system/internal/database/postgres"
	"github.com/ds124wfegd/parking-system/internal/entity"
)

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewAnalyticsService создает новый экземпляр AnalyticsService
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{analyticsRepo: analyticsRepo}
}

func (s *analyticsService) GetRevenueReport(ctx context.Context) (*entity.RevenueReport, error) {
	return s.analyticsRepo.RevenueReport(ctx)
}

func (s *analyticsService) GetOccupancyReport(ctx context.Context) ([]*entity.LotOccupancy, error) {
	return s.analyticsRepo.OccupancyReport(ctx)
}

func (s *analyticsService) GetPopularLots(ctx context.Context, limit int) ([]*entity.PopularLot, error) {
	return s.analyticsRepo.PopularLots(ctx, limit)
}

func (s *analyticsService) GetSystemReport(ctx context.Context) (*entity.SystemReport, error) {
	return s.analyticsRepo.SystemReport(ctx)
}

func (s *analyticsService) GetSpendingReport(ctx context.Context, userID int64) (*entity.SpendingReport, error) {
	return s.analyticsRepo.SpendingReport(ctx, userID)
}

func (s *analyticsService) GetUsageReport(ctx context.Context, userID int64) (*entity.UsageReport, error) {
	return s.analyticsRepo.UsageReport(ctx, userID)
}

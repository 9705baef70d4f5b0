package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

type stubAnalyticsService struct {
	lastLimit int
}

func (s *stubAnalyticsService) GetRevenueReport(ctx context.Context) (*entity.RevenueReport, error) {
	return &entity.RevenueReport{}, nil
}

func (s *stubAnalyticsService) GetOccupancyReport(ctx context.Context) ([]*entity.LotOccupancy, error) {
	return nil, nil
}

func (s *stubAnalyticsService) GetPopularLots(ctx context.Context, limit int) ([]*entity.PopularLot, error) {
	s.lastLimit = limit
	return []*entity.PopularLot{}, nil
}

func (s *stubAnalyticsService) GetSystemReport(ctx context.Context) (*entity.SystemReport, error) {
	return &entity.SystemReport{}, nil
}

func (s *stubAnalyticsService) GetSpendingReport(ctx context.Context, userID int64) (*entity.SpendingReport, error) {
	return &entity.SpendingReport{}, nil
}

func (s *stubAnalyticsService) GetUsageReport(ctx context.Context, userID int64) (*entity.UsageReport, error) {
	return &entity.UsageReport{}, nil
}

// TestGetPopularLots_Limit проверяет разбор параметра limit, по умолчанию топ-10
func TestGetPopularLots_Limit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "default is ten", query: "", want: 10},
		{name: "explicit limit", query: "?limit=3", want: 3},
		{name: "garbage falls back to default", query: "?limit=abc", want: 10},
		{name: "non-positive falls back to default", query: "?limit=0", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAnalyticsService{}
			handler := NewAnalyticsHandler(svc)

			router := gin.New()
			router.GET("/analytics/popular", handler.GetPopularLots)

			req := httptest.NewRequest(http.MethodGet, "/analytics/popular"+tt.query, nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.want, svc.lastLimit)
		})
	}
}

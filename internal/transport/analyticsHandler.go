package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/parking-system/internal/service"
	"github.com/ds124wfegd/parking-system/internal/transport/middleware"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) GetRevenueReport(c *gin.Context) {
	report, err := h.analyticsService.GetRevenueReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) GetOccupancyReport(c *gin.Context) {
	report, err := h.analyticsService.GetOccupancyReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// defaultPopularLotsLimit — сколько паркингов попадает в топ по умолчанию
const defaultPopularLotsLimit = 10

func (h *AnalyticsHandler) GetPopularLots(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPopularLotsLimit)))
	if err != nil || limit <= 0 {
		limit = defaultPopularLotsLimit
	}

	lots, err := h.analyticsService.GetPopularLots(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lots)
}

// GetSpendingReport возвращает траты текущего пользователя
func (h *AnalyticsHandler) GetSpendingReport(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	report, err := h.analyticsService.GetSpendingReport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetUsageReport возвращает паттерны использования текущего пользователя
func (h *AnalyticsHandler) GetUsageReport(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	report, err := h.analyticsService.GetUsageReport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

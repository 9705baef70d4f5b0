package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/parking-system/internal/entity"
	"github.com/ds124wfegd/parking-system/internal/service"
)

type LotHandler struct {
	lotService service.LotService
}

func NewLotHandler(lotService service.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

func (h *LotHandler) CreateLot(c *gin.Context) {
	var req service.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	lot, err := h.lotService.CreateLot(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lot)
}

// GetAvailableLots возвращает паркинги со свободными местами
func (h *LotHandler) GetAvailableLots(c *gin.Context) {
	lots, err := h.lotService.GetAvailableLots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lots)
}

// GetAllLots возвращает все паркинги, включая заполненные
func (h *LotHandler) GetAllLots(c *gin.Context) {
	lots, err := h.lotService.GetAllLots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lots)
}

func (h *LotHandler) GetLot(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "invalid lot id")
		return
	}

	lot, err := h.lotService.GetLot(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) UpdateLot(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "invalid lot id")
		return
	}

	var req service.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	lot, err := h.lotService.UpdateLot(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) DeleteLot(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "invalid lot id")
		return
	}

	if err := h.lotService.DeleteLot(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "lot deleted"})
}

// GetLotSpots возвращает места паркинга с фильтром ?status=available|occupied
func (h *LotHandler) GetLotSpots(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "invalid lot id")
		return
	}

	status := entity.SpotStatus(c.Query("status"))
	if status != "" && status != entity.SpotStatusAvailable && status != entity.SpotStatusOccupied {
		respondBadRequest(c, "invalid spot status")
		return
	}

	spots, err := h.lotService.GetLotSpots(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, spots)
}

func (h *LotHandler) GetSpot(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "invalid spot id")
		return
	}

	spot, err := h.lotService.GetSpot(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, spot)
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/parking-system/internal/entity"
	"github.com/ds124wfegd/parking-system/internal/service"
	"github.com/ds124wfegd/parking-system/internal/transport/middleware"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// ReserveRequest представляет запрос на бронирование места
type ReserveRequest struct {
	LotID int64 `json:"lot_id" binding:"required"`
}

// Reserve бронирует первое свободное место в выбранном паркинге
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	reservation, err := h.reservationService.Reserve(c.Request.Context(), userID, req.LotID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// Occupy отмечает заезд на забронированное место
func (h *ReservationHandler) Occupy(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "invalid reservation id")
		return
	}

	userID := middleware.CurrentUserID(c)
	reservation, err := h.reservationService.Occupy(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// Release отмечает выезд, в ответе посчитанная стоимость
func (h *ReservationHandler) Release(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "invalid reservation id")
		return
	}

	userID := middleware.CurrentUserID(c)
	reservation, err := h.reservationService.Release(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// GetCurrent возвращает живое бронирование пользователя
func (h *ReservationHandler) GetCurrent(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	reservation, err := h.reservationService.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// GetHistory возвращает историю бронирований с фильтром ?status=
func (h *ReservationHandler) GetHistory(c *gin.Context) {
	status, ok := parseReservationStatus(c)
	if !ok {
		return
	}

	userID := middleware.CurrentUserID(c)
	records, err := h.reservationService.GetHistory(c.Request.Context(), userID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// RequestExport ставит асинхронную задачу экспорта истории в CSV
func (h *ReservationHandler) RequestExport(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	taskID, err := h.reservationService.RequestExport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{
		Success: true,
		Message: "export scheduled",
		Data:    gin.H{"task_id": taskID},
	})
}

// GetAllReservations возвращает все бронирования, только для администратора
func (h *ReservationHandler) GetAllReservations(c *gin.Context) {
	status, ok := parseReservationStatus(c)
	if !ok {
		return
	}

	records, err := h.reservationService.GetAllReservations(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func parseReservationStatus(c *gin.Context) (entity.ReservationStatus, bool) {
	status := entity.ReservationStatus(c.Query("status"))
	switch status {
	case "", entity.ReservationStatusReserved, entity.ReservationStatusActive, entity.ReservationStatusCompleted:
		return status, true
	default:
		respondBadRequest(c, "invalid reservation status")
		return "", false
	}
}

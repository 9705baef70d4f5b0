package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// respondError переводит доменные ошибки в HTTP статусы.
// Неизвестные ошибки уходят в лог, клиент видит только общий текст.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, entity.ErrLotNotFound),
		errors.Is(err, entity.ErrSpotNotFound),
		errors.Is(err, entity.ErrReservationNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrNoAvailableSpots),
		errors.Is(err, entity.ErrActiveReservationExists),
		errors.Is(err, entity.ErrInvalidReservationStatus),
		errors.Is(err, entity.ErrSpotOccupied),
		errors.Is(err, entity.ErrLotHasOccupiedSpots),
		errors.Is(err, entity.ErrUserAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden):
		status = http.StatusForbidden
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Unhandled error")
		message = "internal server error"
	}

	c.JSON(status, ErrorResponse{Success: false, Error: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: message})
}

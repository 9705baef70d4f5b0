package entity

import "errors"

var (
	// Lot errors
	ErrLotNotFound         = errors.New("parking lot not found")
	ErrLotHasOccupiedSpots = errors.New("parking lot has occupied spots")

	// Spot errors
	ErrSpotNotFound     = errors.New("parking spot not found")
	ErrSpotOccupied     = errors.New("parking spot is occupied")
	ErrNoAvailableSpots = errors.New("no available spots in this parking lot")

	// Reservation errors
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrActiveReservationExists  = errors.New("user already has an active reservation")
	ErrInvalidReservationStatus = errors.New("reservation is not in the required state")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden operation")
)

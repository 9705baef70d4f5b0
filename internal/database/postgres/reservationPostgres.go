package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// Reserve allocates the lowest-numbered free spot with transaction to ensure data consistency
func (r *reservationRepository) Reserve(ctx context.Context, userID, lotID int64) (*entity.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// Блокировка строки паркинга сериализует конкурентные бронирования в нём
	var dummy int
	query := `SELECT 1 FROM parking_lots WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, lotID).Scan(&dummy)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock parking lot: %v", err)
	}

	// Check if user already has a live reservation
	var existingCount int
	query = `SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND status IN ('reserved', 'active')`
	err = tx.QueryRowContext(ctx, query, userID).Scan(&existingCount)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reservations: %v", err)
	}
	if existingCount > 0 {
		return nil, entity.ErrActiveReservationExists
	}

	// Первое свободное место по возрастанию номера, без живых бронирований
	var spotID int64
	query = `
		SELECT s.id FROM parking_spots s
		WHERE s.lot_id = $1 AND s.status = 'available'
		  AND NOT EXISTS (
			SELECT 1 FROM reservations r 
			WHERE r.spot_id = s.id AND r.status IN ('reserved', 'active')
		  )
		ORDER BY s.spot_number
		LIMIT 1
		FOR UPDATE OF s
	`
	err = tx.QueryRowContext(ctx, query, lotID).Scan(&spotID)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNoAvailableSpots
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select available spot: %v", err)
	}

	now := time.Now()
	reservation := &entity.Reservation{
		SpotID:     spotID,
		UserID:     userID,
		ReservedAt: now,
		Status:     entity.ReservationStatusReserved,
	}

	query = `
		INSERT INTO reservations (spot_id, user_id, reserved_at, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		reservation.SpotID,
		reservation.UserID,
		reservation.ReservedAt,
		reservation.Status,
	).Scan(&reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return reservation, nil
}

// Occupy marks the reservation active and its spot occupied
func (r *reservationRepository) Occupy(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	reservation, err := getReservationWithLock(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, entity.ErrForbidden
	}
	if reservation.Status != entity.ReservationStatusReserved {
		return nil, entity.ErrInvalidReservationStatus
	}

	now := time.Now()

	query := `UPDATE reservations SET parking_at = $1, status = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, now, entity.ReservationStatusActive, reservationID); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %v", err)
	}

	query = `UPDATE parking_spots SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, entity.SpotStatusOccupied, now, reservation.SpotID); err != nil {
		return nil, fmt.Errorf("failed to update spot status: %v", err)
	}

	// Отметка для рассылки напоминаний неактивным пользователям
	query = `UPDATE users SET last_booking_at = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, now, userID); err != nil {
		return nil, fmt.Errorf("failed to update user activity: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	reservation.ParkingAt = &now
	reservation.Status = entity.ReservationStatusActive
	return reservation, nil
}

// Release completes the reservation, computes the cost at the lot's current
// rate and frees the spot
func (r *reservationRepository) Release(ctx context.Context, userID, reservationID int64) (*entity.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	reservation, err := getReservationWithLock(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, entity.ErrForbidden
	}
	if reservation.Status != entity.ReservationStatusActive {
		return nil, entity.ErrInvalidReservationStatus
	}

	var pricePerHour float64
	query := `
		SELECT l.price_per_hour
		FROM parking_spots s
		JOIN parking_lots l ON l.id = s.lot_id
		WHERE s.id = $1
	`
	if err := tx.QueryRowContext(ctx, query, reservation.SpotID).Scan(&pricePerHour); err != nil {
		return nil, fmt.Errorf("failed to get lot rate: %v", err)
	}

	now := time.Now()
	reservation.LeavingAt = &now
	cost := reservation.CalculateCost(pricePerHour)

	query = `UPDATE reservations SET leaving_at = $1, status = $2, cost = $3 WHERE id = $4`
	if _, err := tx.ExecContext(ctx, query, now, entity.ReservationStatusCompleted, cost, reservationID); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %v", err)
	}

	query = `UPDATE parking_spots SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, entity.SpotStatusAvailable, now, reservation.SpotID); err != nil {
		return nil, fmt.Errorf("failed to update spot status: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	reservation.Status = entity.ReservationStatusCompleted
	reservation.Cost = &cost
	return reservation, nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	query := `
		SELECT id, spot_id, user_id, reserved_at, parking_at, leaving_at, status, cost, remarks
		FROM reservations 
		WHERE id = $1
	`

	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %v", err)
	}

	return reservation, nil
}

// GetCurrentByUser returns the user's live reservation, nil if none
func (r *reservationRepository) GetCurrentByUser(ctx context.Context, userID int64) (*entity.Reservation, error) {
	query := `
		SELECT id, spot_id, user_id, reserved_at, parking_at, leaving_at, status, cost, remarks
		FROM reservations 
		WHERE user_id = $1 AND status IN ('reserved', 'active')
		ORDER BY reserved_at DESC
		LIMIT 1
	`

	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current reservation: %v", err)
	}

	return reservation, nil
}

func (r *reservationRepository) GetHistoryByUser(ctx context.Context, userID int64, status entity.ReservationStatus) ([]*entity.ReservationRecord, error) {
	query := `
		SELECT 
			r.id, r.spot_id, r.user_id, r.reserved_at, r.parking_at, r.leaving_at, r.status, r.cost, r.remarks,
			l.name, l.address, s.spot_number, l.price_per_hour, u.username
		FROM reservations r
		JOIN parking_spots s ON s.id = r.spot_id
		JOIN parking_lots l ON l.id = s.lot_id
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND ($2 = '' OR r.status = $2)
		ORDER BY r.reserved_at DESC
	`

	return r.queryRecords(ctx, query, userID, string(status))
}

func (r *reservationRepository) GetAll(ctx context.Context, status entity.ReservationStatus) ([]*entity.ReservationRecord, error) {
	query := `
		SELECT 
			r.id, r.spot_id, r.user_id, r.reserved_at, r.parking_at, r.leaving_at, r.status, r.cost, r.remarks,
			l.name, l.address, s.spot_number, l.price_per_hour, u.username
		FROM reservations r
		JOIN parking_spots s ON s.id = r.spot_id
		JOIN parking_lots l ON l.id = s.lot_id
		JOIN users u ON u.id = r.user_id
		WHERE $1 = '' OR r.status = $1
		ORDER BY r.reserved_at DESC
	`

	return r.queryRecords(ctx, query, string(status))
}

func (r *reservationRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*entity.ReservationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %v", err)
	}
	defer rows.Close()

	var records []*entity.ReservationRecord
	for rows.Next() {
		var (
			rec       entity.ReservationRecord
			parkingAt sql.NullTime
			leavingAt sql.NullTime
			cost      sql.NullFloat64
			remarks   sql.NullString
		)
		err := rows.Scan(
			&rec.ID,
			&rec.SpotID,
			&rec.UserID,
			&rec.ReservedAt,
			&parkingAt,
			&leavingAt,
			&rec.Status,
			&cost,
			&remarks,
			&rec.LotName,
			&rec.LotAddress,
			&rec.SpotNumber,
			&rec.PricePerHour,
			&rec.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation record: %v", err)
		}
		if parkingAt.Valid {
			rec.ParkingAt = &parkingAt.Time
		}
		if leavingAt.Valid {
			rec.LeavingAt = &leavingAt.Time
		}
		if cost.Valid {
			rec.Cost = &cost.Float64
		}
		rec.Remarks = remarks.String
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservation records: %v", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*entity.Reservation, error) {
	var (
		reservation entity.Reservation
		parkingAt   sql.NullTime
		leavingAt   sql.NullTime
		cost        sql.NullFloat64
		remarks     sql.NullString
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.SpotID,
		&reservation.UserID,
		&reservation.ReservedAt,
		&parkingAt,
		&leavingAt,
		&reservation.Status,
		&cost,
		&remarks,
	)
	if err != nil {
		return nil, err
	}

	if parkingAt.Valid {
		reservation.ParkingAt = &parkingAt.Time
	}
	if leavingAt.Valid {
		reservation.LeavingAt = &leavingAt.Time
	}
	if cost.Valid {
		reservation.Cost = &cost.Float64
	}
	reservation.Remarks = remarks.String

	return &reservation, nil
}

// getReservationWithLock retrieves a reservation with a lock for update
func getReservationWithLock(ctx context.Context, tx *sql.Tx, id int64) (*entity.Reservation, error) {
	query := `
		SELECT id, spot_id, user_id, reserved_at, parking_at, leaving_at, status, cost, remarks
		FROM reservations 
		WHERE id = $1
		FOR UPDATE
	`

	reservation, err := scanReservation(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation with lock: %v", err)
	}

	return reservation, nil
}

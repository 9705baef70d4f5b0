package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

type lotRepository struct {
	db *sql.DB
}

func NewLotRepository(db *sql.DB) LotRepository {
	return &lotRepository{db: db}
}

// Create inserts the lot and provisions its spots in a single transaction
func (r *lotRepository) Create(ctx context.Context, lot *entity.Lot) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := `
		INSERT INTO parking_lots (name, price_per_hour, address, pin_code, total_spots, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		lot.Name,
		lot.PricePerHour,
		lot.Address,
		lot.PinCode,
		lot.TotalSpots,
		now,
		now,
	).Scan(&lot.ID)
	if err != nil {
		return fmt.Errorf("failed to create parking lot: %v", err)
	}

	// Места нумеруются с единицы
	query = `
		INSERT INTO parking_spots (lot_id, spot_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for n := 1; n <= lot.TotalSpots; n++ {
		if _, err := tx.ExecContext(ctx, query, lot.ID, n, entity.SpotStatusAvailable, now, now); err != nil {
			return fmt.Errorf("failed to create spot %d: %v", n, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	lot.CreatedAt = now
	lot.UpdatedAt = now
	return nil
}

func (r *lotRepository) GetByID(ctx context.Context, id int64) (*entity.LotWithAvailability, error) {
	query := `
		SELECT 
			l.id, l.name, l.price_per_hour, l.address, l.pin_code, l.total_spots, l.created_at, l.updated_at,
			COALESCE(SUM(CASE WHEN s.status = 'available' THEN 1 ELSE 0 END), 0) as available_spots,
			COALESCE(SUM(CASE WHEN s.status = 'occupied' THEN 1 ELSE 0 END), 0) as occupied_spots
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		WHERE l.id = $1
		GROUP BY l.id
	`

	var lot entity.LotWithAvailability
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lot.ID,
		&lot.Name,
		&lot.PricePerHour,
		&lot.Address,
		&lot.PinCode,
		&lot.TotalSpots,
		&lot.CreatedAt,
		&lot.UpdatedAt,
		&lot.AvailableSpots,
		&lot.OccupiedSpots,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrLotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parking lot: %v", err)
	}

	return &lot, nil
}

func (r *lotRepository) GetAll(ctx context.Context) ([]*entity.LotWithAvailability, error) {
	query := `
		SELECT 
			l.id, l.name, l.price_per_hour, l.address, l.pin_code, l.total_spots, l.created_at, l.updated_at,
			COALESCE(SUM(CASE WHEN s.status = 'available' THEN 1 ELSE 0 END), 0) as available_spots,
			COALESCE(SUM(CASE WHEN s.status = 'occupied' THEN 1 ELSE 0 END), 0) as occupied_spots
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		GROUP BY l.id
		ORDER BY l.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query parking lots: %v", err)
	}
	defer rows.Close()

	var lots []*entity.LotWithAvailability
	for rows.Next() {
		var lot entity.LotWithAvailability
		err := rows.Scan(
			&lot.ID,
			&lot.Name,
			&lot.PricePerHour,
			&lot.Address,
			&lot.PinCode,
			&lot.TotalSpots,
			&lot.CreatedAt,
			&lot.UpdatedAt,
			&lot.AvailableSpots,
			&lot.OccupiedSpots,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parking lot: %v", err)
		}
		lots = append(lots, &lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parking lots: %v", err)
	}

	return lots, nil
}

// Update changes lot attributes; capacity is changed through Resize only
func (r *lotRepository) Update(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE parking_lots 
		SET name = $1, price_per_hour = $2, address = $3, pin_code = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		lot.Name,
		lot.PricePerHour,
		lot.Address,
		lot.PinCode,
		time.Now(),
		lot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update parking lot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrLotNotFound
	}

	return nil
}

// Resize grows or shrinks the lot. Shrinking removes spots with the highest
// numbers first and refuses to touch an occupied spot.
func (r *lotRepository) Resize(ctx context.Context, lotID int64, newTotal int) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// Блокируем паркинг, чтобы сериализовать изменение вместимости с бронированием
	var currentTotal int
	query := `SELECT total_spots FROM parking_lots WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, lotID).Scan(&currentTotal)
	if err == sql.ErrNoRows {
		return entity.ErrLotNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock parking lot: %v", err)
	}

	now := time.Now()

	switch {
	case newTotal > currentTotal:
		query = `
			INSERT INTO parking_spots (lot_id, spot_number, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		for n := currentTotal + 1; n <= newTotal; n++ {
			if _, err := tx.ExecContext(ctx, query, lotID, n, entity.SpotStatusAvailable, now, now); err != nil {
				return fmt.Errorf("failed to add spot %d: %v", n, err)
			}
		}

	case newTotal < currentTotal:
		// Кандидаты на удаление, начиная с самых больших номеров.
		// Место с живым бронированием остаётся в статусе available до заезда,
		// поэтому проверки одного статуса недостаточно.
		query = `
			SELECT s.id, s.spot_number, s.status,
				EXISTS (
					SELECT 1 FROM reservations r
					WHERE r.spot_id = s.id AND r.status IN ('reserved', 'active')
				) AS has_live_reservation
			FROM parking_spots s
			WHERE s.lot_id = $1
			ORDER BY s.spot_number DESC
			LIMIT $2
			FOR UPDATE OF s
		`
		rows, err := tx.QueryContext(ctx, query, lotID, currentTotal-newTotal)
		if err != nil {
			return fmt.Errorf("failed to select spots for removal: %v", err)
		}

		var removeIDs []int64
		for rows.Next() {
			var (
				spotID     int64
				spotNumber int
				status     entity.SpotStatus
				hasLive    bool
			)
			if err := rows.Scan(&spotID, &spotNumber, &status, &hasLive); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan spot: %v", err)
			}
			if status == entity.SpotStatusOccupied || hasLive {
				rows.Close()
				return fmt.Errorf("spot %d is occupied: %w", spotNumber, entity.ErrSpotOccupied)
			}
			removeIDs = append(removeIDs, spotID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating spots: %v", err)
		}

		for _, spotID := range removeIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = $1`, spotID); err != nil {
				return fmt.Errorf("failed to remove spot: %v", err)
			}
		}
	}

	query = `UPDATE parking_lots SET total_spots = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, newTotal, now, lotID); err != nil {
		return fmt.Errorf("failed to update lot capacity: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Delete removes the lot and its spots, refusing if any spot is occupied
func (r *lotRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var dummy int
	query := `SELECT 1 FROM parking_lots WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, id).Scan(&dummy)
	if err == sql.ErrNoRows {
		return entity.ErrLotNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock parking lot: %v", err)
	}

	var occupied int
	query = `SELECT COUNT(*) FROM parking_spots WHERE lot_id = $1 AND status = 'occupied'`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&occupied); err != nil {
		return fmt.Errorf("failed to count occupied spots: %v", err)
	}
	if occupied > 0 {
		return entity.ErrLotHasOccupiedSpots
	}

	// Места удаляются каскадом вместе с паркингом
	if _, err := tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete parking lot: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *lotRepository) GetSpots(ctx context.Context, lotID int64, status entity.SpotStatus) ([]*entity.SpotDetails, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM parking_lots WHERE id = $1)`, lotID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check parking lot: %v", err)
	}
	if !exists {
		return nil, entity.ErrLotNotFound
	}

	query := `
		SELECT 
			s.id, s.lot_id, s.spot_number, s.status, s.created_at, s.updated_at,
			l.name,
			r.id, r.spot_id, r.user_id, r.reserved_at, r.parking_at, r.leaving_at, r.status, r.cost, r.remarks
		FROM parking_spots s
		JOIN parking_lots l ON l.id = s.lot_id
		LEFT JOIN reservations r ON r.spot_id = s.id AND r.status IN ('reserved', 'active')
		WHERE s.lot_id = $1 AND ($2 = '' OR s.status = $2)
		ORDER BY s.spot_number
	`

	rows, err := r.db.QueryContext(ctx, query, lotID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query spots: %v", err)
	}
	defer rows.Close()

	var spots []*entity.SpotDetails
	for rows.Next() {
		spot, err := scanSpotDetails(rows)
		if err != nil {
			return nil, err
		}
		spots = append(spots, spot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spots: %v", err)
	}

	return spots, nil
}

func (r *lotRepository) GetSpotByID(ctx context.Context, spotID int64) (*entity.SpotDetails, error) {
	query := `
		SELECT 
			s.id, s.lot_id, s.spot_number, s.status, s.created_at, s.updated_at,
			l.name,
			r.id, r.spot_id, r.user_id, r.reserved_at, r.parking_at, r.leaving_at, r.status, r.cost, r.remarks
		FROM parking_spots s
		JOIN parking_lots l ON l.id = s.lot_id
		LEFT JOIN reservations r ON r.spot_id = s.id AND r.status IN ('reserved', 'active')
		WHERE s.id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spot: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get spot: %v", err)
		}
		return nil, entity.ErrSpotNotFound
	}

	return scanSpotDetails(rows)
}

func scanSpotDetails(rows *sql.Rows) (*entity.SpotDetails, error) {
	var (
		spot entity.SpotDetails

		resID      sql.NullInt64
		resSpotID  sql.NullInt64
		resUserID  sql.NullInt64
		reservedAt sql.NullTime
		parkingAt  sql.NullTime
		leavingAt  sql.NullTime
		resStatus  sql.NullString
		resCost    sql.NullFloat64
		resRemarks sql.NullString
	)

	err := rows.Scan(
		&spot.ID,
		&spot.LotID,
		&spot.SpotNumber,
		&spot.Status,
		&spot.CreatedAt,
		&spot.UpdatedAt,
		&spot.LotName,
		&resID,
		&resSpotID,
		&resUserID,
		&reservedAt,
		&parkingAt,
		&leavingAt,
		&resStatus,
		&resCost,
		&resRemarks,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan spot: %v", err)
	}

	if resID.Valid {
		res := &entity.Reservation{
			ID:         resID.Int64,
			SpotID:     resSpotID.Int64,
			UserID:     resUserID.Int64,
			ReservedAt: reservedAt.Time,
			Status:     entity.ReservationStatus(resStatus.String),
			Remarks:    resRemarks.String,
		}
		if parkingAt.Valid {
			res.ParkingAt = &parkingAt.Time
		}
		if leavingAt.Valid {
			res.LeavingAt = &leavingAt.Time
		}
		if resCost.Valid {
			res.Cost = &resCost.Float64
		}
		spot.CurrentReservation = res
	}

	return &spot, nil
}

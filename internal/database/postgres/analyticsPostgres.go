package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/parking-system/internal/entity"
)

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) RevenueReport(ctx context.Context) (*entity.RevenueReport, error) {
	report := &entity.RevenueReport{}

	query := `
		SELECT COALESCE(SUM(cost), 0), COUNT(*)
		FROM reservations 
		WHERE status = 'completed'
	`
	err := r.db.QueryRowContext(ctx, query).Scan(&report.TotalRevenue, &report.CompletedReservations)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue totals: %v", err)
	}

	query = `
		SELECT l.id, l.name, COALESCE(SUM(r.cost), 0) as revenue
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		LEFT JOIN reservations r ON r.spot_id = s.id AND r.status = 'completed'
		GROUP BY l.id, l.name
		ORDER BY revenue DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by lot: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lr entity.LotRevenue
		if err := rows.Scan(&lr.LotID, &lr.LotName, &lr.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan lot revenue: %v", err)
		}
		report.RevenueByLot = append(report.RevenueByLot, &lr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot revenue: %v", err)
	}

	return report, nil
}

func (r *analyticsRepository) OccupancyReport(ctx context.Context) ([]*entity.LotOccupancy, error) {
	query := `
		SELECT 
			l.id, l.name, l.total_spots,
			COALESCE(SUM(CASE WHEN s.status = 'occupied' THEN 1 ELSE 0 END), 0) as occupied,
			COALESCE(SUM(CASE WHEN s.status = 'available' THEN 1 ELSE 0 END), 0) as available
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		GROUP BY l.id, l.name, l.total_spots
		ORDER BY l.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query occupancy: %v", err)
	}
	defer rows.Close()

	var report []*entity.LotOccupancy
	for rows.Next() {
		var lo entity.LotOccupancy
		err := rows.Scan(&lo.LotID, &lo.LotName, &lo.TotalSpots, &lo.OccupiedSpots, &lo.AvailableSpots)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot occupancy: %v", err)
		}
		lo.OccupancyRate = entity.CalcOccupancyRate(lo.OccupiedSpots, lo.TotalSpots)
		report = append(report, &lo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occupancy: %v", err)
	}

	return report, nil
}

func (r *analyticsRepository) PopularLots(ctx context.Context, limit int) ([]*entity.PopularLot, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT l.id, l.name, COUNT(r.id) as reservation_count
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		LEFT JOIN reservations r ON r.spot_id = s.id
		GROUP BY l.id, l.name
		ORDER BY reservation_count DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular lots: %v", err)
	}
	defer rows.Close()

	var lots []*entity.PopularLot
	for rows.Next() {
		var pl entity.PopularLot
		if err := rows.Scan(&pl.LotID, &pl.LotName, &pl.ReservationCount); err != nil {
			return nil, fmt.Errorf("failed to scan popular lot: %v", err)
		}
		lots = append(lots, &pl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popular lots: %v", err)
	}

	return lots, nil
}

func (r *analyticsRepository) SpendingReport(ctx context.Context, userID int64) (*entity.SpendingReport, error) {
	report := &entity.SpendingReport{}

	query := `
		SELECT COALESCE(SUM(cost), 0), COUNT(*)
		FROM reservations 
		WHERE user_id = $1 AND status = 'completed'
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&report.TotalSpent, &report.CompletedParkings)
	if err != nil {
		return nil, fmt.Errorf("failed to get spending totals: %v", err)
	}

	query = `
		SELECT to_char(leaving_at, 'YYYY-MM') as month, COALESCE(SUM(cost), 0)
		FROM reservations 
		WHERE user_id = $1 AND status = 'completed'
		GROUP BY month
		ORDER BY month
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly spending: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ms entity.MonthlySpending
		if err := rows.Scan(&ms.Month, &ms.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly spending: %v", err)
		}
		report.MonthlySpending = append(report.MonthlySpending, &ms)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly spending: %v", err)
	}

	return report, nil
}

func (r *analyticsRepository) UsageReport(ctx context.Context, userID int64) (*entity.UsageReport, error) {
	report := &entity.UsageReport{
		ReservationsByStatus: make(map[entity.ReservationStatus]int64),
	}

	query := `
		SELECT l.name, COUNT(*) as usage_count
		FROM reservations r
		JOIN parking_spots s ON s.id = r.spot_id
		JOIN parking_lots l ON l.id = s.lot_id
		WHERE r.user_id = $1
		GROUP BY l.name
		ORDER BY usage_count DESC
		LIMIT 5
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot usage: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lu entity.LotUsage
		if err := rows.Scan(&lu.LotName, &lu.UsageCount); err != nil {
			return nil, fmt.Errorf("failed to scan lot usage: %v", err)
		}
		report.MostUsedLots = append(report.MostUsedLots, &lu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot usage: %v", err)
	}

	query = `SELECT status, COUNT(*) FROM reservations WHERE user_id = $1 GROUP BY status`
	statusRows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations by status: %v", err)
	}
	defer statusRows.Close()

	for statusRows.Next() {
		var (
			status entity.ReservationStatus
			count  int64
		)
		if err := statusRows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %v", err)
		}
		report.ReservationsByStatus[status] = count
	}
	if err := statusRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %v", err)
	}

	return report, nil
}

// SystemReport собирает сводку по всей системе для месячного отчёта
func (r *analyticsRepository) SystemReport(ctx context.Context) (*entity.SystemReport, error) {
	report := &entity.SystemReport{GeneratedAt: time.Now()}

	query := `
		SELECT 
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM reservations),
			(SELECT COUNT(*) FROM reservations WHERE status = 'active'),
			(SELECT COALESCE(SUM(cost), 0) FROM reservations WHERE status = 'completed')
	`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&report.TotalUsers,
		&report.TotalReservations,
		&report.ActiveReservations,
		&report.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get system report: %v", err)
	}

	return report, nil
}

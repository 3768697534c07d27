// internal/storage/report_repo.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ConsumptionRow is one vehicle's aggregated fuel usage.
type ConsumptionRow struct {
	VehicleID     int64   `json:"vehicleId"`
	VehRegNo      string  `json:"vehRegNo"`
	FuelType      string  `json:"fuelType"`
	FillCount     int64   `json:"fillCount"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalAmount   float64 `json:"totalAmount"`
}

// FuelConsumptionByVehicle aggregates approved fuel logs per vehicle and fuel
// type, optionally bounded by fill date (inclusive, 'YYYY-MM-DD').
func FuelConsumptionByVehicle(ctx context.Context, db *sql.DB, from, to string) ([]ConsumptionRow, error) {
	query := `SELECT fl.vehicleId, v.vehRegNo, fl.fuelType,
		COUNT(*), COALESCE(SUM(fl.quantity), 0), COALESCE(SUM(fl.totalAmount), 0)
		FROM fuel_logs fl
		JOIN vehicles v ON v.id = fl.vehicleId
		WHERE fl.approvalStatus = 'approved'`
	args := []any{}
	if from != "" {
		query += ` AND date(fl.fillDate) >= date(?)`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date(fl.fillDate) <= date(?)`
		args = append(args, to)
	}
	query += ` GROUP BY fl.vehicleId, v.vehRegNo, fl.fuelType ORDER BY fl.vehicleId`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error building consumption report: %w", err)
	}
	defer rows.Close()

	report := []ConsumptionRow{}
	for rows.Next() {
		var row ConsumptionRow
		if err := rows.Scan(&row.VehicleID, &row.VehRegNo, &row.FuelType,
			&row.FillCount, &row.TotalQuantity, &row.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan consumption row: %w", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed for consumption report: %w", err)
	}
	return report, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo agregados de folios e inventario para el tablero de gerencia.
type StatsRepo struct {
	q Querier
}

// NewStatsRepository construye el adaptador.
func NewStatsRepository(q Querier) *StatsRepo {
	return &StatsRepo{q: q}
}

func (r *StatsRepo) CountFoliosByStatus(ctx context.Context, hospitalID string) ([]repository.FolioStatusCount, error) {
	query := `
		SELECT hospital_id, status, COUNT(*)
		FROM folio_requests`
	var args []any
	if hospitalID != "" {
		if !validID(hospitalID) {
			return nil, nil
		}
		query += ` WHERE hospital_id = $1`
		args = append(args, hospitalID)
	}
	query += ` GROUP BY hospital_id, status`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stats.CountFoliosByStatus: %w", err)
	}
	defer rows.Close()

	var out []repository.FolioStatusCount
	for rows.Next() {
		var c repository.FolioStatusCount
		if err := rows.Scan(&c.HospitalID, &c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("stats.CountFoliosByStatus scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *StatsRepo) CountLowStock(ctx context.Context, locationID string) ([]repository.LowStockCount, error) {
	query := `
		SELECT i.location_id, COUNT(*)
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.quantity <= p.min_stock`
	var args []any
	if locationID != "" {
		if !validID(locationID) {
			return nil, nil
		}
		query += ` AND i.location_id = $1`
		args = append(args, locationID)
	}
	query += ` GROUP BY i.location_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stats.CountLowStock: %w", err)
	}
	defer rows.Close()

	var out []repository.LowStockCount
	for rows.Next() {
		var c repository.LowStockCount
		if err := rows.Scan(&c.LocationID, &c.Count); err != nil {
			return nil, fmt.Errorf("stats.CountLowStock scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

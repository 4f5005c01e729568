package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `location_id, product_id, quantity, lot, expires_at, updated_at`

// InventoryRepo existencias por (ubicación, producto) sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := row.Scan(&rec.LocationID, &rec.ProductID, &rec.Quantity, &rec.Lot, &rec.ExpiresAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get existencia actual; registro en 0 si no hay fila.
func (r *InventoryRepo) Get(ctx context.Context, locationID, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, locationID, productID, "")
}

// GetForUpdate obtiene la existencia y bloquea la fila (SELECT FOR UPDATE).
// Sin fila no hay nada que bloquear; la primera entrada la crea AddQuantity con ON CONFLICT.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, locationID, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, locationID, productID, " FOR UPDATE")
}

func (r *InventoryRepo) get(ctx context.Context, locationID, productID, suffix string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE location_id = $1 AND product_id = $2` + suffix
	rec, err := scanRecord(r.q.QueryRow(ctx, query, locationID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryRecord{LocationID: locationID, ProductID: productID}, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return rec, nil
}

// AddQuantity suma delta en una sola sentencia; dos entradas concurrentes sobre una fila
// inexistente no pueden crear dos registros.
func (r *InventoryRepo) AddQuantity(ctx context.Context, locationID, productID string, delta int64) (*entity.InventoryRecord, error) {
	query := `
		INSERT INTO inventory (location_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT ON CONSTRAINT inventory_location_product_key
		DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING ` + inventoryColumns
	rec, err := scanRecord(r.q.QueryRow(ctx, query, locationID, productID, delta))
	if err != nil {
		return nil, mapWriteError("add inventory", err)
	}
	return rec, nil
}

// Upsert inserta o actualiza la cantidad (por ubicación y producto).
func (r *InventoryRepo) Upsert(ctx context.Context, rec *entity.InventoryRecord) error {
	if rec.Quantity < 0 {
		return fmt.Errorf("%w: la existencia no puede quedar negativa", domain.ErrInsufficientStock)
	}
	query := `
		INSERT INTO inventory (location_id, product_id, quantity, lot, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT ON CONSTRAINT inventory_location_product_key
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, rec.LocationID, rec.ProductID, rec.Quantity, rec.Lot, rec.ExpiresAt)
	if err != nil {
		return mapWriteError("upsert inventory", err)
	}
	return nil
}

func (r *InventoryRepo) UpdateLot(ctx context.Context, locationID, productID, lot string, expiresAt *time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory SET lot = $3, expires_at = $4, updated_at = now() WHERE location_id = $1 AND product_id = $2`,
		locationID, productID, lot, expiresAt)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InventoryRepo) Delete(ctx context.Context, locationID, productID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM inventory WHERE location_id = $1 AND product_id = $2`, locationID, productID)
	if err != nil {
		return fmt.Errorf("delete inventory: %w", err)
	}
	return nil
}

func (r *InventoryRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if locationID == "" {
		rows, err = r.q.Query(ctx, `SELECT `+inventoryColumns+`
			FROM inventory ORDER BY location_id, product_id LIMIT $1 OFFSET $2`,
			listLimit(limit), offset)
	} else {
		rows, err = r.q.Query(ctx, `SELECT `+inventoryColumns+`
			FROM inventory WHERE location_id = $1
			ORDER BY product_id LIMIT $2 OFFSET $3`,
			locationID, listLimit(limit), offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list inventory by location: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// GetProductsBelowMinStock productos cuya existencia en la ubicación es menor que su mínimo.
// Los productos sin fila cuentan con existencia 0.
func (r *InventoryRepo) GetProductsBelowMinStock(ctx context.Context, locationID string) ([]repository.ReplenishmentItem, error) {
	query := `
		SELECT
			p.id,
			p.name,
			p.unit,
			COALESCE(i.quantity, 0) AS current_stock,
			p.min_stock,
			p.max_stock
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id AND i.location_id = $1
		WHERE p.min_stock > 0
		  AND COALESCE(i.quantity, 0) < p.min_stock
		ORDER BY p.name`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("get products below min stock: %w", err)
	}
	defer rows.Close()

	var items []repository.ReplenishmentItem
	for rows.Next() {
		var item repository.ReplenishmentItem
		if err := rows.Scan(
			&item.ProductID, &item.ProductName, &item.Unit,
			&item.CurrentStock, &item.MinStock, &item.MaxStock,
		); err != nil {
			return nil, fmt.Errorf("scan replenishment item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// mapWriteError traduce violaciones de constraints a errores de dominio.
func mapWriteError(op string, err error) error {
	switch {
	case isCheckViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, op)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

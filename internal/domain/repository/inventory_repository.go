package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// ReplenishmentItem resultado crudo del repositorio para un producto bajo su mínimo.
type ReplenishmentItem struct {
	ProductID    string
	ProductName  string
	Unit         string
	CurrentStock int64
	MinStock     int64
	MaxStock     int64
}

// InventoryRepository puerto del ledger de existencias por (ubicación, producto).
// Dentro de una transacción, GetForUpdate bloquea la fila hasta el commit/rollback.
type InventoryRepository interface {
	// Get devuelve la existencia; si no hay fila devuelve un registro con Quantity 0.
	Get(ctx context.Context, locationID, productID string) (*entity.InventoryRecord, error)
	// GetForUpdate igual que Get pero bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, locationID, productID string) (*entity.InventoryRecord, error)
	// AddQuantity suma delta (>0) de forma atómica creando la fila si no existe.
	AddQuantity(ctx context.Context, locationID, productID string, delta int64) (*entity.InventoryRecord, error)
	// Upsert fija la cantidad del registro (insert o update por la llave única).
	Upsert(ctx context.Context, rec *entity.InventoryRecord) error
	// UpdateLot actualiza lote y caducidad de una fila existente.
	UpdateLot(ctx context.Context, locationID, productID, lot string, expiresAt *time.Time) error
	Delete(ctx context.Context, locationID, productID string) error
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.InventoryRecord, error)

	// GetProductsBelowMinStock devuelve los productos cuya existencia en la ubicación es inferior
	// a su mínimo (incluye productos sin fila, con existencia 0).
	GetProductsBelowMinStock(ctx context.Context, locationID string) ([]ReplenishmentItem, error)
}

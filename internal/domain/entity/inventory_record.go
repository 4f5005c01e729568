package entity

import "time"

// InventoryRecord es la existencia de un producto en una ubicación.
// Hay exactamente un registro por (LocationID, ProductID); Quantity nunca es negativa.
type InventoryRecord struct {
	LocationID string
	ProductID  string
	Quantity   int64
	Lot        string
	ExpiresAt  *time.Time // solo para insumos controlados por lote
	UpdatedAt  time.Time
}

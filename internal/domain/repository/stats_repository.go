package repository

import "context"

// FolioStatusCount número de folios de un hospital en un estado.
type FolioStatusCount struct {
	HospitalID string
	Status     string
	Count      int64
}

// LowStockCount número de insumos de una ubicación con existencia igual o menor a su mínimo.
type LowStockCount struct {
	LocationID string
	Count      int64
}

// StatsRepository consultas agregadas de solo lectura para el tablero de gerencia.
type StatsRepository interface {
	// CountFoliosByStatus agrupa los folios por (hospital, estado). hospitalID vacío = todos.
	CountFoliosByStatus(ctx context.Context, hospitalID string) ([]FolioStatusCount, error)

	// CountLowStock cuenta por ubicación las filas de inventario con quantity <= min_stock.
	// locationID vacío = todas.
	CountLowStock(ctx context.Context, locationID string) ([]LowStockCount, error)
}

package inventory

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// TxRepositories repositorios atados a una misma transacción.
type TxRepositories struct {
	Inventory repository.InventoryRepository
	Movements repository.InventoryMovementRepository
	Folios    repository.FolioRepository
	History   repository.FolioHistoryRepository
	Transfers repository.TransferRepository
	Products  repository.ProductRepository
	Locations repository.LocationRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún cambio queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepositories) error) error
}

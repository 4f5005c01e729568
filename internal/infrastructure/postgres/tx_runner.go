package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con todos los repositorios atados a la tx
// y hace Commit, o Rollback si fn devuelve error.
// Las filas leídas con GetForUpdate quedan bloqueadas hasta el fin de la tx; si la espera
// supera lock_timeout el error se reporta como ErrConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Repositories(tx)); err != nil {
		if isLockTimeout(err) {
			return fmt.Errorf("%w: filas de inventario ocupadas, reintente: %v", domain.ErrConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repositories arma el juego de repositorios sobre q (pool o tx).
func Repositories(q Querier) inventory.TxRepositories {
	return inventory.TxRepositories{
		Inventory: NewInventoryRepository(q),
		Movements: NewInventoryMovementRepository(q),
		Folios:    NewFolioRepository(q),
		History:   NewFolioHistoryRepository(q),
		Transfers: NewTransferRepository(q),
		Products:  NewProductRepository(q),
		Locations: NewLocationRepository(q),
	}
}

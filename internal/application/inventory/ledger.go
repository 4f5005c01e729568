package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Suministros-api/internal/domain/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// Ledger es la única primitiva que modifica existencias.
// Debe construirse con el InventoryRepository de la transacción en curso.
type Ledger struct {
	repo repository.InventoryRepository
	now  func() time.Time
}

// NewLedger construye el ledger sobre un repositorio atado a la tx.
func NewLedger(repo repository.InventoryRepository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// GetQuantity existencia actual sin bloqueo; 0 si no hay fila.
func (l *Ledger) GetQuantity(ctx context.Context, locationID, productID string) (int64, error) {
	rec, err := l.repo.Get(ctx, locationID, productID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// GetQuantityForUpdate existencia actual bloqueando la fila hasta el fin de la tx.
func (l *Ledger) GetQuantityForUpdate(ctx context.Context, locationID, productID string) (int64, error) {
	rec, err := l.repo.GetForUpdate(ctx, locationID, productID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// Adjust aplica delta a la existencia de (locationID, productID).
// Las entradas se suman de forma atómica creando la fila si hace falta; las salidas bloquean la fila
// y fallan con ErrInsufficientStock si la existencia quedaría negativa.
func (l *Ledger) Adjust(ctx context.Context, locationID, productID string, delta int64) (*entity.InventoryRecord, error) {
	if locationID == "" || productID == "" {
		return nil, fmt.Errorf("%w: ubicación y producto son obligatorios", domain.ErrValidation)
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta no puede ser cero", domain.ErrValidation)
	}
	if delta > 0 {
		return l.repo.AddQuantity(ctx, locationID, productID, delta)
	}

	rec, err := l.repo.GetForUpdate(ctx, locationID, productID)
	if err != nil {
		return nil, err
	}
	next, err := domaininv.ApplyDelta(rec.Quantity, delta)
	if err != nil {
		return nil, err
	}
	rec.Quantity = next
	rec.UpdatedAt = l.now()
	if err := l.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SetAbsolute fija la existencia en quantity y devuelve el registro y la cantidad previa.
func (l *Ledger) SetAbsolute(ctx context.Context, locationID, productID string, quantity int64) (*entity.InventoryRecord, int64, error) {
	if locationID == "" || productID == "" {
		return nil, 0, fmt.Errorf("%w: ubicación y producto son obligatorios", domain.ErrValidation)
	}
	if quantity < 0 {
		return nil, 0, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrValidation)
	}
	rec, err := l.repo.GetForUpdate(ctx, locationID, productID)
	if err != nil {
		return nil, 0, err
	}
	previous := rec.Quantity
	rec.Quantity = quantity
	rec.UpdatedAt = l.now()
	if err := l.repo.Upsert(ctx, rec); err != nil {
		return nil, 0, err
	}
	return rec, previous, nil
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	"github.com/jhoicas/Suministros-api/pkg/metrics"
)

// AdjustInventoryUseCase entradas, retiros y ajustes manuales de existencias.
// Cada operación corre en su propia transacción con la fila bloqueada (SELECT FOR UPDATE).
type AdjustInventoryUseCase struct {
	txRunner     TxRunner
	inventory    repository.InventoryRepository
	movements    repository.InventoryMovementRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	metrics      *metrics.WorkflowMetrics
	log          *logger.Logger
}

// NewAdjustInventoryUseCase construye el caso de uso.
func NewAdjustInventoryUseCase(
	txRunner TxRunner,
	inventory repository.InventoryRepository,
	movements repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	m *metrics.WorkflowMetrics,
	log *logger.Logger,
) *AdjustInventoryUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustInventoryUseCase{
		txRunner:     txRunner,
		inventory:    inventory,
		movements:    movements,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		metrics:      m,
		log:          log.Component("inventory"),
	}
}

// AdjustInventoryInput entrada para un ajuste manual.
// Delta > 0 es entrada (puede fijar Lot/ExpiresAt); Delta < 0 es retiro.
type AdjustInventoryInput struct {
	ActorID    string
	LocationID string
	ProductID  string
	Delta      int64
	Reason     string
	Lot        string
	ExpiresAt  *time.Time
}

// SetInventoryInput entrada para fijar la existencia absoluta.
type SetInventoryInput struct {
	ActorID    string
	LocationID string
	ProductID  string
	Quantity   int64
	Reason     string
}

// Adjust aplica el delta, registra el movimiento IN/OUT y, si un retiro deja la existencia en cero,
// elimina la fila. ErrInsufficientStock se propaga sin modificar nada.
func (uc *AdjustInventoryUseCase) Adjust(ctx context.Context, in AdjustInventoryInput) (*entity.InventoryRecord, error) {
	if in.Delta == 0 {
		return nil, fmt.Errorf("%w: delta no puede ser cero", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: el motivo es obligatorio", domain.ErrValidation)
	}
	if in.Delta < 0 && (in.Lot != "" || in.ExpiresAt != nil) {
		return nil, fmt.Errorf("%w: lote y caducidad solo aplican a entradas", domain.ErrValidation)
	}
	if err := uc.ensureRefs(ctx, in.LocationID, in.ProductID); err != nil {
		return nil, err
	}

	movType := entity.MovementTypeIN
	if in.Delta < 0 {
		movType = entity.MovementTypeOUT
	}

	var out *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(repos TxRepositories) error {
		rec, err := NewLedger(repos.Inventory).Adjust(ctx, in.LocationID, in.ProductID, in.Delta)
		if err != nil {
			return err
		}
		switch {
		case in.Delta > 0 && (in.Lot != "" || in.ExpiresAt != nil):
			if err := repos.Inventory.UpdateLot(ctx, in.LocationID, in.ProductID, in.Lot, in.ExpiresAt); err != nil {
				return err
			}
			rec.Lot = in.Lot
			rec.ExpiresAt = in.ExpiresAt
		case in.Delta < 0 && rec.Quantity == 0:
			if err := repos.Inventory.Delete(ctx, in.LocationID, in.ProductID); err != nil {
				return err
			}
		}
		out = rec
		return repos.Movements.Create(ctx, NewMovement(uuid.NewString(), in.LocationID, in.ProductID, movType, in.Delta, in.Reason, "", in.ActorID))
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.IncInsufficientStock("adjust")
		}
		return nil, err
	}

	uc.metrics.IncAdjustment(movType)
	uc.log.Info().
		Str("location_id", in.LocationID).
		Str("product_id", in.ProductID).
		Int64("delta", in.Delta).
		Int64("quantity", out.Quantity).
		Str("actor_id", in.ActorID).
		Msg("existencia ajustada")
	return out, nil
}

// SetAbsolute fija la existencia y registra un movimiento ADJUSTMENT con la diferencia.
// Si la cantidad no cambia no se escribe movimiento.
func (uc *AdjustInventoryUseCase) SetAbsolute(ctx context.Context, in SetInventoryInput) (*entity.InventoryRecord, error) {
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("%w: el motivo es obligatorio", domain.ErrValidation)
	}
	if err := uc.ensureRefs(ctx, in.LocationID, in.ProductID); err != nil {
		return nil, err
	}

	var out *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(repos TxRepositories) error {
		rec, previous, err := NewLedger(repos.Inventory).SetAbsolute(ctx, in.LocationID, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		out = rec
		diff := in.Quantity - previous
		if diff == 0 {
			return nil
		}
		return repos.Movements.Create(ctx, NewMovement(uuid.NewString(), in.LocationID, in.ProductID, entity.MovementTypeADJUSTMENT, diff, in.Reason, "", in.ActorID))
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncAdjustment(entity.MovementTypeADJUSTMENT)
	return out, nil
}

// GetRecord devuelve la existencia (Quantity 0 si no hay fila).
func (uc *AdjustInventoryUseCase) GetRecord(ctx context.Context, locationID, productID string) (*entity.InventoryRecord, error) {
	if locationID == "" || productID == "" {
		return nil, domain.ErrValidation
	}
	return uc.inventory.Get(ctx, locationID, productID)
}

// InventoryLine existencia con datos del producto.
type InventoryLine struct {
	Record   *entity.InventoryRecord
	Product  *entity.Product
	LowStock bool
}

// ListByLocation lista existencias de una ubicación con el producto y la marca de bajo mínimo.
// Con locationID vacío devuelve la vista global de todas las ubicaciones.
func (uc *AdjustInventoryUseCase) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]InventoryLine, error) {
	if locationID != "" {
		loc, err := uc.locationRepo.GetByID(ctx, locationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, domain.ErrNotFound
		}
	}
	records, err := uc.inventory.ListByLocation(ctx, locationID, limit, offset)
	if err != nil {
		return nil, err
	}
	products := make(map[string]*entity.Product, len(records))
	lines := make([]InventoryLine, 0, len(records))
	for _, rec := range records {
		p, ok := products[rec.ProductID]
		if !ok {
			p, err = uc.productRepo.GetByID(ctx, rec.ProductID)
			if err != nil {
				return nil, err
			}
			products[rec.ProductID] = p
		}
		line := InventoryLine{Record: rec, Product: p}
		if p != nil {
			line.LowStock = rec.Quantity < p.MinStock
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ListMovements lista el diario de movimientos.
func (uc *AdjustInventoryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	return uc.movements.List(ctx, filter)
}

func (uc *AdjustInventoryUseCase) ensureRefs(ctx context.Context, locationID, productID string) error {
	if locationID == "" || productID == "" {
		return fmt.Errorf("%w: ubicación y producto son obligatorios", domain.ErrValidation)
	}
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return nil
}

// NewMovement arma un movimiento del diario; lo usan también entregas y traspasos.
func NewMovement(txID, locationID, productID, movType string, qty int64, reason, reference, actorID string) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:            uuid.NewString(),
		TransactionID: txID,
		LocationID:    locationID,
		ProductID:     productID,
		Type:          movType,
		Quantity:      qty,
		Reason:        reason,
		Reference:     reference,
		CreatedBy:     actorID,
		CreatedAt:     time.Now(),
	}
}

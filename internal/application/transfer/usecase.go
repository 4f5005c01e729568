// Package transfer casos de uso de traspasos de insumos entre ubicaciones.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	domaintransfer "github.com/jhoicas/Suministros-api/internal/domain/transfer"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	"github.com/jhoicas/Suministros-api/pkg/metrics"
)

// ItemInput línea a traspasar.
type ItemInput struct {
	ProductID string
	Quantity  int64
}

// CreateTransferInput entrada para crear un traspaso.
type CreateTransferInput struct {
	ActorID       string
	SourceID      string
	DestinationID string
	Notes         string
	Items         []ItemInput
}

// UseCase crea, despacha y completa traspasos.
type UseCase struct {
	txRunner     inventory.TxRunner
	transferRepo repository.TransferRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	metrics      *metrics.WorkflowMetrics
	log          *logger.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso de traspasos.
func NewUseCase(
	txRunner inventory.TxRunner,
	transferRepo repository.TransferRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	m *metrics.WorkflowMetrics,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:     txRunner,
		transferRepo: transferRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		metrics:      m,
		log:          log.Component("transfer"),
		now:          time.Now,
	}
}

// Create registra un traspaso en estado pending. No mueve inventario.
func (uc *UseCase) Create(ctx context.Context, in CreateTransferInput) (*entity.TransferOrder, error) {
	in.SourceID = strings.TrimSpace(in.SourceID)
	in.DestinationID = strings.TrimSpace(in.DestinationID)
	if in.SourceID == "" || in.DestinationID == "" {
		return nil, fmt.Errorf("%w: origen y destino son obligatorios", domain.ErrValidation)
	}
	if in.SourceID == in.DestinationID {
		return nil, fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el traspaso requiere al menos una línea", domain.ErrValidation)
	}
	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" {
			return nil, fmt.Errorf("%w: product_id es obligatorio", domain.ErrValidation)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cantidad debe ser mayor que cero (%s)", domain.ErrValidation, it.ProductID)
		}
		if _, dup := seen[it.ProductID]; dup {
			return nil, fmt.Errorf("%w: producto repetido %s", domain.ErrValidation, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}

	for _, id := range []string{in.SourceID, in.DestinationID} {
		loc, err := uc.locationRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
		}
	}
	for _, it := range in.Items {
		p, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
	}

	now := uc.now()
	order := &entity.TransferOrder{
		ID:            uuid.NewString(),
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		Status:        entity.TransferStatusPending,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedBy:     in.ActorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, it := range in.Items {
		order.Items = append(order.Items, &entity.TransferOrderItem{
			ID:         uuid.NewString(),
			TransferID: order.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
		})
	}
	if err := uc.transferRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", order.ID).
		Str("source_id", order.SourceID).
		Str("destination_id", order.DestinationID).
		Int("items", len(order.Items)).
		Msg("traspaso creado")
	return order, nil
}

// MarkInTransit pasa el traspaso de pending a in_transit. Solo cambia el estado.
func (uc *UseCase) MarkInTransit(ctx context.Context, id, actorID string) (*entity.TransferOrder, error) {
	var out *entity.TransferOrder
	err := uc.txRunner.Run(ctx, func(repos inventory.TxRepositories) error {
		order, err := loadForUpdate(ctx, repos.Transfers, id)
		if err != nil {
			return err
		}
		to, err := domaintransfer.Next(domaintransfer.ActionDispatch, order.Status)
		if err != nil {
			return err
		}
		order.Status = to
		order.UpdatedAt = uc.now()
		if err := repos.Transfers.UpdateStatus(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", id).Str("actor_id", actorID).Msg("traspaso en tránsito")
	return out, nil
}

type ledgerOp struct {
	locationID string
	productID  string
	delta      int64
	movType    string
}

// Complete descuenta del origen y suma al destino cada línea en una sola transacción.
// Un faltante en cualquier línea revierte el traspaso completo.
func (uc *UseCase) Complete(ctx context.Context, id, actorID string) (*entity.TransferOrder, error) {
	var out *entity.TransferOrder
	err := uc.txRunner.Run(ctx, func(repos inventory.TxRepositories) error {
		order, err := loadForUpdate(ctx, repos.Transfers, id)
		if err != nil {
			return err
		}
		to, err := domaintransfer.Next(domaintransfer.ActionComplete, order.Status)
		if err != nil {
			return err
		}

		ops := make([]ledgerOp, 0, 2*len(order.Items))
		for _, it := range order.Items {
			ops = append(ops,
				ledgerOp{order.SourceID, it.ProductID, -it.Quantity, entity.MovementTypeTransferOut},
				ledgerOp{order.DestinationID, it.ProductID, it.Quantity, entity.MovementTypeTransferIn},
			)
		}
		// Orden determinista de bloqueo (ubicación, producto).
		sort.Slice(ops, func(i, j int) bool {
			if ops[i].locationID != ops[j].locationID {
				return ops[i].locationID < ops[j].locationID
			}
			return ops[i].productID < ops[j].productID
		})

		ledger := inventory.NewLedger(repos.Inventory)
		txID := uuid.NewString()
		reason := "traspaso " + order.ID
		for _, op := range ops {
			if _, err := ledger.Adjust(ctx, op.locationID, op.productID, op.delta); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return fmt.Errorf("producto %s en %s: %w", op.productID, op.locationID, err)
				}
				return err
			}
			mov := inventory.NewMovement(txID, op.locationID, op.productID, op.movType, op.delta, reason, order.ID, actorID)
			if err := repos.Movements.Create(ctx, mov); err != nil {
				return err
			}
		}

		now := uc.now()
		order.Status = to
		order.CompletedBy = actorID
		order.CompletedAt = &now
		order.UpdatedAt = now
		if err := repos.Transfers.UpdateStatus(ctx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.IncInsufficientStock("transfer")
		}
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", out.ID).
		Str("actor_id", actorID).
		Int("items", len(out.Items)).
		Msg("traspaso completado")
	return out, nil
}

// Get devuelve el traspaso con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.TransferOrder, error) {
	order, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: traspaso %s", domain.ErrNotFound, id)
	}
	return order, nil
}

// List lista traspasos, opcionalmente filtrados por estado.
func (uc *UseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.TransferOrder, error) {
	if status != "" && !domaintransfer.ValidStatus(status) {
		return nil, fmt.Errorf("%w: estado de traspaso desconocido %q", domain.ErrValidation, status)
	}
	return uc.transferRepo.List(ctx, status, limit, offset)
}

func loadForUpdate(ctx context.Context, repo repository.TransferRepository, id string) (*entity.TransferOrder, error) {
	order, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: traspaso %s", domain.ErrNotFound, id)
	}
	return order, nil
}

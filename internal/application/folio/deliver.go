package folio

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
	domainfolio "github.com/jhoicas/Suministros-api/internal/domain/folio"
	domaininv "github.com/jhoicas/Suministros-api/internal/domain/inventory"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	"github.com/jhoicas/Suministros-api/pkg/metrics"
)

// ReceivedQuantity cantidad que almacén confirma entregar para una línea.
type ReceivedQuantity struct {
	ItemID   string
	Quantity int64
}

// DeliverFolioInput entrada para entregar un folio aprobado por supervisor.
// Received es opcional: sin él se intenta entregar lo aprobado de cada línea.
type DeliverFolioInput struct {
	Actor    entity.Actor
	FolioID  string
	Notes    string
	Received []ReceivedQuantity
}

// DeliverFolioUseCase entrega y concilia un folio contra el inventario del hospital.
type DeliverFolioUseCase struct {
	txRunner inventory.TxRunner
	machine  *domainfolio.Machine
	metrics  *metrics.WorkflowMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewDeliverFolioUseCase construye el caso de uso.
func NewDeliverFolioUseCase(txRunner inventory.TxRunner, machine *domainfolio.Machine, m *metrics.WorkflowMetrics, log *logger.Logger) *DeliverFolioUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DeliverFolioUseCase{
		txRunner: txRunner,
		machine:  machine,
		metrics:  m,
		log:      log.Component("folio"),
		now:      time.Now,
	}
}

// Deliver descuenta del inventario del hospital min(existencia, objetivo) por línea, con la fila
// bloqueada, y cierra el folio como entregado o entregado_parcial.
// Un faltante en una línea la deja en 0 recibido sin abortar; cualquier otro error revierte todo.
func (uc *DeliverFolioUseCase) Deliver(ctx context.Context, in DeliverFolioInput) (*entity.FolioRequest, error) {
	if in.FolioID == "" {
		return nil, fmt.Errorf("%w: folio_id es obligatorio", domain.ErrValidation)
	}

	var (
		out       *entity.FolioRequest
		from      string
		shortages int
	)
	err := uc.txRunner.Run(ctx, func(repos inventory.TxRepositories) error {
		shortages = 0
		f, err := repos.Folios.GetForUpdate(ctx, in.FolioID)
		if err != nil {
			return err
		}
		if f == nil {
			return fmt.Errorf("%w: folio %s", domain.ErrNotFound, in.FolioID)
		}
		if err := checkHospitalScope(in.Actor, f); err != nil {
			return err
		}
		if _, err := uc.machine.Next(in.Actor.Role, domainfolio.ActionDeliver, f.Status); err != nil {
			return err
		}
		from = f.Status

		targets, err := receivedTargets(f, in.Received)
		if err != nil {
			return err
		}

		// Orden determinista de bloqueo por producto para evitar deadlocks entre entregas.
		items := append([]*entity.FolioItem(nil), f.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		ledger := inventory.NewLedger(repos.Inventory)
		txID := uuid.NewString()
		complete := true
		for _, it := range items {
			approved := it.ApprovedOrRequested()
			if it.QuantityApproved == nil {
				it.QuantityApproved = &approved
			}
			target := approved
			if t, ok := targets[it.ID]; ok {
				target = t
			}

			onHand, err := ledger.GetQuantityForUpdate(ctx, f.HospitalID, it.ProductID)
			if err != nil {
				return err
			}
			delivered := domaininv.Deliverable(onHand, target)
			if delivered > 0 {
				if _, err := ledger.Adjust(ctx, f.HospitalID, it.ProductID, -delivered); err != nil {
					if !errors.Is(err, domain.ErrInsufficientStock) {
						return err
					}
					delivered = 0
				}
			}
			if delivered < target {
				shortages++
			}
			if delivered > 0 {
				mov := inventory.NewMovement(txID, f.HospitalID, it.ProductID, entity.MovementTypeDELIVERY, -delivered, "entrega de folio "+f.FolioNumber, f.ID, in.Actor.ID)
				if err := repos.Movements.Create(ctx, mov); err != nil {
					return err
				}
			}
			received := delivered
			it.QuantityReceived = &received
			if received != approved {
				complete = false
			}
		}

		now := uc.now()
		f.Status = domainfolio.DeliveredStatus(complete)
		f.UpdatedAt = now
		if err := repos.Folios.UpdateItems(ctx, f.Items); err != nil {
			return err
		}
		if err := repos.Folios.UpdateStatus(ctx, f); err != nil {
			return err
		}
		if err := repos.History.Append(ctx, &entity.FolioHistoryEntry{
			ID:             uuid.NewString(),
			FolioID:        f.ID,
			ActorID:        in.Actor.ID,
			Action:         domainfolio.HistoryAction(f.Status),
			PreviousStatus: from,
			NewStatus:      f.Status,
			Notes:          strings.TrimSpace(in.Notes),
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		uc.metrics.IncDelivery(metrics.DeliveryOutcomeFailed)
		return nil, err
	}

	outcome := metrics.DeliveryOutcomeComplete
	if out.Status == entity.FolioStatusDeliveredPartial {
		outcome = metrics.DeliveryOutcomePartial
	}
	uc.metrics.IncDelivery(outcome)
	for i := 0; i < shortages; i++ {
		uc.metrics.IncInsufficientStock("deliver")
	}
	uc.log.Info().
		Str("folio_id", out.ID).
		Str("actor_id", in.Actor.ID).
		Str("from", from).
		Str("status", out.Status).
		Int("short_items", shortages).
		Msg("folio entregado")
	return out, nil
}

// receivedTargets valida las cantidades capturadas y las recorta a [0, aprobado].
func receivedTargets(f *entity.FolioRequest, received []ReceivedQuantity) (map[string]int64, error) {
	targets := make(map[string]int64, len(received))
	for _, r := range received {
		it := f.Item(r.ItemID)
		if it == nil {
			return nil, fmt.Errorf("%w: la línea %s no pertenece al folio", domain.ErrValidation, r.ItemID)
		}
		if r.Quantity < 0 {
			return nil, fmt.Errorf("%w: cantidad recibida negativa para %s", domain.ErrValidation, r.ItemID)
		}
		if _, dup := targets[r.ItemID]; dup {
			return nil, fmt.Errorf("%w: línea repetida %s", domain.ErrValidation, r.ItemID)
		}
		q := r.Quantity
		if approved := it.ApprovedOrRequested(); q > approved {
			q = approved
		}
		targets[r.ItemID] = q
	}
	return targets, nil
}

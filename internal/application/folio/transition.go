package folio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	domainfolio "github.com/jhoicas/Suministros-api/internal/domain/folio"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	"github.com/jhoicas/Suministros-api/pkg/metrics"
)

// ApprovedQuantity cantidad aprobada para una línea.
type ApprovedQuantity struct {
	ItemID   string
	Quantity int64
}

// TransitionInput entrada para aprobar o rechazar un folio.
type TransitionInput struct {
	Actor    entity.Actor
	FolioID  string
	Action   domainfolio.Action
	Reason   string // opcional; se guarda como motivo de rechazo
	Notes    string
	Approved []ApprovedQuantity
}

// TransitionUseCase aprobaciones y rechazos de líder, supervisor y almacén.
// Nunca modifica inventario.
type TransitionUseCase struct {
	txRunner inventory.TxRunner
	machine  *domainfolio.Machine
	metrics  *metrics.WorkflowMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewTransitionUseCase construye el caso de uso.
func NewTransitionUseCase(txRunner inventory.TxRunner, machine *domainfolio.Machine, m *metrics.WorkflowMetrics, log *logger.Logger) *TransitionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransitionUseCase{
		txRunner: txRunner,
		machine:  machine,
		metrics:  m,
		log:      log.Component("folio"),
		now:      time.Now,
	}
}

// Transition valida la acción contra el estado persistido (fila bloqueada) y aplica el cambio
// junto con su entrada de bitácora. Si la transición no es válida no se persiste nada.
func (uc *TransitionUseCase) Transition(ctx context.Context, in TransitionInput) (*entity.FolioRequest, error) {
	switch in.Action {
	case domainfolio.ActionApprove:
	case domainfolio.ActionReject:
	case domainfolio.ActionDeliver:
		return nil, fmt.Errorf("%w: la entrega se registra con deliver", domain.ErrValidation)
	default:
		return nil, fmt.Errorf("%w: acción %q", domain.ErrValidation, in.Action)
	}
	if in.FolioID == "" {
		return nil, fmt.Errorf("%w: folio_id es obligatorio", domain.ErrValidation)
	}

	var (
		out  *entity.FolioRequest
		from string
	)
	err := uc.txRunner.Run(ctx, func(repos inventory.TxRepositories) error {
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
		to, err := uc.machine.Next(in.Actor.Role, in.Action, f.Status)
		if err != nil {
			return err
		}
		from = f.Status

		switch in.Action {
		case domainfolio.ActionApprove:
			if err := applyApproved(f, in.Approved); err != nil {
				return err
			}
		case domainfolio.ActionReject:
			f.RejectedBy = in.Actor.ID
			f.RejectionReason = strings.TrimSpace(in.Reason)
			if in.Actor.Role == entity.RoleAlmacen {
				for _, it := range f.Items {
					zero := int64(0)
					it.QuantityReceived = &zero
				}
			}
		}

		now := uc.now()
		f.Status = to
		f.UpdatedAt = now
		if err := repos.Folios.UpdateItems(ctx, f.Items); err != nil {
			return err
		}
		if err := repos.Folios.UpdateStatus(ctx, f); err != nil {
			return err
		}
		notes := strings.TrimSpace(in.Notes)
		if in.Action == domainfolio.ActionReject && notes == "" {
			notes = f.RejectionReason
		}
		if err := repos.History.Append(ctx, &entity.FolioHistoryEntry{
			ID:             uuid.NewString(),
			FolioID:        f.ID,
			ActorID:        in.Actor.ID,
			Action:         domainfolio.HistoryAction(to),
			PreviousStatus: from,
			NewStatus:      to,
			Notes:          notes,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.IncTransition(in.Actor.Role, string(in.Action), out.Status)
	uc.log.Info().
		Str("folio_id", out.ID).
		Str("actor_id", in.Actor.ID).
		Str("role", in.Actor.Role).
		Str("from", from).
		Str("status", out.Status).
		Msg("transición de folio")
	return out, nil
}

// applyApproved fija las cantidades aprobadas. Las líneas sin valor explícito conservan la
// aprobación previa o, si no la hay, aprueban lo solicitado.
func applyApproved(f *entity.FolioRequest, approved []ApprovedQuantity) error {
	seen := make(map[string]struct{}, len(approved))
	for _, a := range approved {
		it := f.Item(a.ItemID)
		if it == nil {
			return fmt.Errorf("%w: la línea %s no pertenece al folio", domain.ErrValidation, a.ItemID)
		}
		if _, dup := seen[a.ItemID]; dup {
			return fmt.Errorf("%w: línea repetida %s", domain.ErrValidation, a.ItemID)
		}
		seen[a.ItemID] = struct{}{}
		if a.Quantity <= 0 || a.Quantity > it.QuantityRequested {
			return fmt.Errorf("%w: cantidad aprobada %d fuera de rango (1..%d)", domain.ErrValidation, a.Quantity, it.QuantityRequested)
		}
		q := a.Quantity
		it.QuantityApproved = &q
	}
	for _, it := range f.Items {
		if it.QuantityApproved == nil {
			q := it.QuantityRequested
			it.QuantityApproved = &q
		}
	}
	return nil
}

// checkHospitalScope impide que un actor asignado a un hospital opere folios de otro.
func checkHospitalScope(actor entity.Actor, f *entity.FolioRequest) error {
	if actor.HospitalID != "" && actor.HospitalID != f.HospitalID {
		return fmt.Errorf("%w: el folio pertenece a otro hospital", domain.ErrForbidden)
	}
	return nil
}

// Package folio contiene los casos de uso del ciclo de vida de folios de insumos:
// creación, aprobaciones, rechazo y entrega con conciliación de inventario.
package folio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Suministros-api/internal/domain/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/pkg/logger"
)

// ItemInput línea solicitada.
type ItemInput struct {
	ProductID string
	Quantity  int64
}

// CreateFolioInput entrada para crear un folio.
// HospitalID vacío toma el hospital del actor.
type CreateFolioInput struct {
	Actor      entity.Actor
	HospitalID string
	Priority   string
	Metadata   entity.FolioMetadata
	Notes      string
	Items      []ItemInput
}

// Shortage existencia insuficiente detectada al crear el folio. Es informativa.
type Shortage struct {
	ProductID string
	Requested int64
	Available int64
}

// CreateFolioResult folio creado y faltantes detectados en ese momento.
type CreateFolioResult struct {
	Folio     *entity.FolioRequest
	Shortages []Shortage
}

// CreateFolioUseCase crea folios en estado pendiente.
type CreateFolioUseCase struct {
	txRunner      inventory.TxRunner
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
	locationRepo  repository.LocationRepository
	log           *logger.Logger
	now           func() time.Time
}

// NewCreateFolioUseCase construye el caso de uso.
func NewCreateFolioUseCase(
	txRunner inventory.TxRunner,
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	log *logger.Logger,
) *CreateFolioUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CreateFolioUseCase{
		txRunner:      txRunner,
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		locationRepo:  locationRepo,
		log:           log.Component("folio"),
		now:           time.Now,
	}
}

// Create valida la solicitud, consulta disponibilidad (sin reservar) y persiste el folio con su
// primera entrada de bitácora en una sola transacción.
func (uc *CreateFolioUseCase) Create(ctx context.Context, in CreateFolioInput) (*CreateFolioResult, error) {
	if in.Actor.Role != entity.RoleAuxiliar {
		return nil, fmt.Errorf("%w: solo auxiliar crea folios", domain.ErrForbidden)
	}
	hospitalID := in.HospitalID
	if hospitalID == "" {
		hospitalID = in.Actor.HospitalID
	}
	if hospitalID == "" {
		return nil, fmt.Errorf("%w: hospital_id es obligatorio", domain.ErrValidation)
	}
	if in.Actor.HospitalID != "" && hospitalID != in.Actor.HospitalID {
		return nil, fmt.Errorf("%w: el auxiliar solo solicita para su hospital", domain.ErrForbidden)
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if missing := in.Metadata.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: faltan datos del procedimiento: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	priority := in.Priority
	if priority == "" {
		priority = entity.FolioPriorityNormal
		if in.Metadata.IsEmergency {
			priority = entity.FolioPriorityUrgent
		}
	}
	if !entity.ValidFolioPriority(priority) {
		return nil, fmt.Errorf("%w: prioridad %q", domain.ErrValidation, priority)
	}

	hospital, err := uc.locationRepo.GetByID(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, fmt.Errorf("%w: hospital %s", domain.ErrNotFound, hospitalID)
	}
	if !hospital.IsHospital() {
		return nil, fmt.Errorf("%w: la ubicación %s no es un hospital", domain.ErrValidation, hospitalID)
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

	// Consulta de disponibilidad: solo lectura, no reserva existencias.
	var shortages []Shortage
	for _, it := range in.Items {
		rec, err := uc.inventoryRepo.Get(ctx, hospitalID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if domaininv.Shortage(rec.Quantity, it.Quantity) > 0 {
			shortages = append(shortages, Shortage{ProductID: it.ProductID, Requested: it.Quantity, Available: rec.Quantity})
		}
	}

	now := uc.now()
	f := &entity.FolioRequest{
		ID:          uuid.NewString(),
		FolioNumber: NewFolioNumber(hospitalID, now),
		RequesterID: in.Actor.ID,
		HospitalID:  hospitalID,
		Status:      entity.FolioStatusPending,
		Priority:    priority,
		Metadata:    in.Metadata,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range in.Items {
		f.Items = append(f.Items, &entity.FolioItem{
			ID:                uuid.NewString(),
			FolioID:           f.ID,
			ProductID:         it.ProductID,
			QuantityRequested: it.Quantity,
			CreatedAt:         now,
		})
	}

	err = uc.txRunner.Run(ctx, func(repos inventory.TxRepositories) error {
		if err := repos.Folios.Create(ctx, f); err != nil {
			return err
		}
		return repos.History.Append(ctx, &entity.FolioHistoryEntry{
			ID:        uuid.NewString(),
			FolioID:   f.ID,
			ActorID:   in.Actor.ID,
			Action:    entity.HistoryActionCreated,
			NewStatus: entity.FolioStatusPending,
			Notes:     f.Notes,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	ev := uc.log.Info().
		Str("folio_id", f.ID).
		Str("folio_number", f.FolioNumber).
		Str("hospital_id", hospitalID).
		Str("actor_id", in.Actor.ID).
		Int("items", len(f.Items))
	if len(shortages) > 0 {
		ev = ev.Int("shortages", len(shortages))
	}
	ev.Msg("folio creado")

	return &CreateFolioResult{Folio: f, Shortages: shortages}, nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: el folio requiere al menos una línea", domain.ErrValidation)
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: product_id es obligatorio", domain.ErrValidation)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: cantidad inválida %d para %s", domain.ErrValidation, it.Quantity, it.ProductID)
		}
		if _, dup := seen[it.ProductID]; dup {
			return fmt.Errorf("%w: producto repetido %s", domain.ErrValidation, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// NewFolioNumber arma el número visible del folio: F-<hospital>-<unix ms>-<sufijo aleatorio>.
// El sufijo evita colisiones entre folios creados en el mismo milisegundo.
func NewFolioNumber(hospitalID string, now time.Time) string {
	prefix := hospitalID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	var b [2]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("F-%s-%d-%s", prefix, now.UnixMilli(), hex.EncodeToString(b[:]))
}

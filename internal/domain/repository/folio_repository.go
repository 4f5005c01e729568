package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// FolioFilter filtros de listado de folios.
type FolioFilter struct {
	HospitalID  string
	RequesterID string
	Statuses    []string
	Limit       int
	Offset      int
}

// FolioRepository puerto de persistencia del agregado FolioRequest (con sus FolioItem).
type FolioRepository interface {
	// Create persiste encabezado y líneas. ErrDuplicate si el folio_number ya existe.
	Create(ctx context.Context, folio *entity.FolioRequest) error
	// GetByID devuelve el folio con sus líneas o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.FolioRequest, error)
	// GetForUpdate igual que GetByID bloqueando la fila del encabezado.
	GetForUpdate(ctx context.Context, id string) (*entity.FolioRequest, error)
	// UpdateStatus persiste status, rejected_by, rejection_reason y updated_at.
	UpdateStatus(ctx context.Context, folio *entity.FolioRequest) error
	// UpdateItems persiste quantity_approved y quantity_received de las líneas.
	UpdateItems(ctx context.Context, items []*entity.FolioItem) error
	List(ctx context.Context, filter FolioFilter) ([]*entity.FolioRequest, error)
}

// FolioHistoryRepository bitácora append-only de transiciones.
type FolioHistoryRepository interface {
	Append(ctx context.Context, entry *entity.FolioHistoryEntry) error
	ListByFolio(ctx context.Context, folioID string) ([]*entity.FolioHistoryEntry, error)
}

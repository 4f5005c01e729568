package folio

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// QueryUseCase consultas de folios y su bitácora.
type QueryUseCase struct {
	folioRepo   repository.FolioRepository
	historyRepo repository.FolioHistoryRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(folioRepo repository.FolioRepository, historyRepo repository.FolioHistoryRepository) *QueryUseCase {
	return &QueryUseCase{folioRepo: folioRepo, historyRepo: historyRepo}
}

// Get devuelve el folio con sus líneas.
func (uc *QueryUseCase) Get(ctx context.Context, id string) (*entity.FolioRequest, error) {
	f, err := uc.folioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: folio %s", domain.ErrNotFound, id)
	}
	return f, nil
}

// List lista folios según el filtro, más recientes primero.
func (uc *QueryUseCase) List(ctx context.Context, filter repository.FolioFilter) ([]*entity.FolioRequest, error) {
	return uc.folioRepo.List(ctx, filter)
}

// History devuelve la bitácora del folio en orden cronológico.
func (uc *QueryUseCase) History(ctx context.Context, folioID string) ([]*entity.FolioHistoryEntry, error) {
	if _, err := uc.Get(ctx, folioID); err != nil {
		return nil, err
	}
	return uc.historyRepo.ListByFolio(ctx, folioID)
}

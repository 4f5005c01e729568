package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// LocationRepository acceso de solo lectura a hospitales y almacenes centrales.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	List(ctx context.Context, kind string, limit, offset int) ([]*entity.Location, error)
}

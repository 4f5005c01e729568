package repository

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// TransferRepository puerto de persistencia de órdenes de traspaso.
type TransferRepository interface {
	Create(ctx context.Context, order *entity.TransferOrder) error
	GetByID(ctx context.Context, id string) (*entity.TransferOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.TransferOrder, error)
	UpdateStatus(ctx context.Context, order *entity.TransferOrder) error
	List(ctx context.Context, status string, limit, offset int) ([]*entity.TransferOrder, error)
}

package transfer

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// CreateFromRequest adapta POST /api/transfers al caso de uso Create.
func (uc *UseCase) CreateFromRequest(ctx context.Context, actorID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	items := make([]ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := uc.Create(ctx, CreateTransferInput{
		ActorID:       actorID,
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		Notes:         in.Notes,
		Items:         items,
	})
	if err != nil {
		return nil, err
	}
	return ToTransferResponse(order), nil
}

// ToTransferResponse convierte la orden a su DTO.
func ToTransferResponse(o *entity.TransferOrder) *dto.TransferResponse {
	if o == nil {
		return nil
	}
	out := &dto.TransferResponse{
		ID:            o.ID,
		SourceID:      o.SourceID,
		DestinationID: o.DestinationID,
		Status:        o.Status,
		Notes:         o.Notes,
		CreatedBy:     o.CreatedBy,
		CompletedBy:   o.CompletedBy,
		Items:         make([]dto.TransferItemResponse, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		CompletedAt:   o.CompletedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return out
}

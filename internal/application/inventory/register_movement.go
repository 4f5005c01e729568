package inventory

import (
	"context"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// AdjustFromRequest adapta el request HTTP al caso de uso Adjust(ctx, AdjustInventoryInput).
func (uc *AdjustInventoryUseCase) AdjustFromRequest(ctx context.Context, actorID string, in dto.AdjustInventoryRequest) (*dto.InventoryRecordResponse, error) {
	rec, err := uc.Adjust(ctx, AdjustInventoryInput{
		ActorID:    actorID,
		LocationID: in.LocationID,
		ProductID:  in.ProductID,
		Delta:      in.Delta,
		Reason:     in.Reason,
		Lot:        in.Lot,
		ExpiresAt:  in.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	return ToInventoryRecordResponse(InventoryLine{Record: rec}), nil
}

// SetAbsoluteFromRequest adapta PUT /api/inventory/:location_id/:product_id.
func (uc *AdjustInventoryUseCase) SetAbsoluteFromRequest(ctx context.Context, actorID, locationID, productID string, in dto.SetInventoryRequest) (*dto.InventoryRecordResponse, error) {
	rec, err := uc.SetAbsolute(ctx, SetInventoryInput{
		ActorID:    actorID,
		LocationID: locationID,
		ProductID:  productID,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
	})
	if err != nil {
		return nil, err
	}
	return ToInventoryRecordResponse(InventoryLine{Record: rec}), nil
}

// ToInventoryRecordResponse convierte una línea de existencia a su DTO.
func ToInventoryRecordResponse(line InventoryLine) *dto.InventoryRecordResponse {
	rec := line.Record
	if rec == nil {
		return nil
	}
	out := &dto.InventoryRecordResponse{
		LocationID: rec.LocationID,
		ProductID:  rec.ProductID,
		Quantity:   rec.Quantity,
		LowStock:   line.LowStock,
		Lot:        rec.Lot,
		ExpiresAt:  rec.ExpiresAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if line.Product != nil {
		out.ProductName = line.Product.Name
		out.Unit = line.Product.Unit
		out.MinStock = line.Product.MinStock
	}
	return out
}

// ToMovementResponse convierte un movimiento del diario a su DTO.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		LocationID:    m.LocationID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		Reference:     m.Reference,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

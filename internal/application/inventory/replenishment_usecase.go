package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de una ubicación.
// La usa cadena de suministro para decidir traspasos desde el almacén central.
type ReplenishmentUseCase struct {
	inventoryRepo repository.InventoryRepository
	locationRepo  repository.LocationRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	inventoryRepo repository.InventoryRepository,
	locationRepo repository.LocationRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		inventoryRepo: inventoryRepo,
		locationRepo:  locationRepo,
	}
}

// GenerateReplenishmentList devuelve los insumos bajo su mínimo con la cantidad sugerida de pedido,
// ordenados por déficit relativo (el más crítico primero).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, locationID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	if locationID == "" {
		return nil, fmt.Errorf("%w: location_id es obligatorio", domain.ErrValidation)
	}
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	// 1. Productos por debajo del mínimo
	rawItems, err := uc.inventoryRepo.GetProductsBelowMinStock(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Cantidad sugerida hasta el máximo (o el doble del mínimo si no hay máximo)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		target := TargetStock(item.MinStock, item.MaxStock)
		suggested := target - item.CurrentStock
		if suggested < 0 {
			suggested = 0
		}
		var deficitPct float64
		if item.MinStock > 0 {
			deficitPct = float64(item.MinStock-item.CurrentStock) / float64(item.MinStock) * 100
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Unit:              item.Unit,
			CurrentStock:      item.CurrentStock,
			MinStock:          item.MinStock,
			TargetStock:       target,
			SuggestedOrderQty: suggested,
			DeficitPct:        deficitPct,
		})
	}

	// 3. Ordenar: mayor déficit relativo, luego mayor cantidad sugerida
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.DeficitPct != b.DeficitPct {
			return a.DeficitPct > b.DeficitPct
		}
		return a.SuggestedOrderQty > b.SuggestedOrderQty
	})

	// 4. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// TargetStock existencia objetivo de reposición.
func TargetStock(minStock, maxStock int64) int64 {
	if maxStock > 0 {
		return maxStock
	}
	return 2 * minStock
}

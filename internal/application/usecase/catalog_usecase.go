package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// CatalogUseCase consultas de solo lectura del catálogo de insumos y ubicaciones.
type CatalogUseCase struct {
	products  repository.ProductRepository
	locations repository.LocationRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(products repository.ProductRepository, locations repository.LocationRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products, locations: locations}
}

// GetProduct obtiene un producto por ID.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return toProductResponse(p), nil
}

// ListProducts lista productos con paginación.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.products.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  page.Response(len(items)),
	}, nil
}

// GetLocation obtiene un hospital o almacén por ID.
func (uc *CatalogUseCase) GetLocation(ctx context.Context, id string) (*dto.LocationResponse, error) {
	l, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return toLocationResponse(l), nil
}

// ListLocations lista ubicaciones, opcionalmente por tipo.
func (uc *CatalogUseCase) ListLocations(ctx context.Context, kind string, page dto.PageRequest) (*dto.LocationListResponse, error) {
	if kind != "" && !entity.ValidLocationKind(kind) {
		return nil, fmt.Errorf("%w: tipo de ubicación desconocido %q", domain.ErrValidation, kind)
	}
	page.DefaultPage()
	list, err := uc.locations.List(ctx, kind, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  page.Response(len(items)),
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		Category:    p.Category,
		MinStock:    p.MinStock,
		MaxStock:    p.MaxStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Kind:      l.Kind,
		Address:   l.Address,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

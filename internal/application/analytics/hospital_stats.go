// Package analytics contiene los casos de uso de reportes para gerencia.
package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// maxHospitals tope de hospitales que se listan en el tablero.
const maxHospitals = 500

// HospitalStatsUseCase resume folios y existencias bajas por hospital.
//
// Fuente de datos: StatsRepository (agregados read-only) y el catálogo de ubicaciones.
type HospitalStatsUseCase struct {
	statsRepo    repository.StatsRepository
	locationRepo repository.LocationRepository
}

// NewHospitalStatsUseCase construye el caso de uso.
func NewHospitalStatsUseCase(statsRepo repository.StatsRepository, locationRepo repository.LocationRepository) *HospitalStatsUseCase {
	return &HospitalStatsUseCase{statsRepo: statsRepo, locationRepo: locationRepo}
}

// GetHospitalStats arma el resumen de cada hospital (o solo de hospitalID si no está vacío).
//
// Tres llamadas en paralelo:
//  1. hospitales del catálogo
//  2. CountFoliosByStatus  → folios por estado
//  3. CountLowStock        → insumos en o bajo el mínimo
func (uc *HospitalStatsUseCase) GetHospitalStats(ctx context.Context, hospitalID string) (*dto.HospitalStatsResponse, error) {
	type hospitalsResult struct {
		list []*entity.Location
		err  error
	}
	type foliosResult struct {
		counts []repository.FolioStatusCount
		err    error
	}
	type lowStockResult struct {
		counts []repository.LowStockCount
		err    error
	}

	hospitalsCh := make(chan hospitalsResult, 1)
	foliosCh := make(chan foliosResult, 1)
	lowCh := make(chan lowStockResult, 1)

	go func() {
		list, err := uc.hospitals(ctx, hospitalID)
		hospitalsCh <- hospitalsResult{list, err}
	}()
	go func() {
		counts, err := uc.statsRepo.CountFoliosByStatus(ctx, hospitalID)
		foliosCh <- foliosResult{counts, err}
	}()
	go func() {
		counts, err := uc.statsRepo.CountLowStock(ctx, hospitalID)
		lowCh <- lowStockResult{counts, err}
	}()

	hospitals := <-hospitalsCh
	folios := <-foliosCh
	low := <-lowCh

	if hospitals.err != nil {
		return nil, fmt.Errorf("estadísticas: hospitales: %w", hospitals.err)
	}
	if folios.err != nil {
		return nil, fmt.Errorf("estadísticas: folios: %w", folios.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("estadísticas: existencias bajas: %w", low.err)
	}

	byHospital := make(map[string]*dto.HospitalStatsDTO, len(hospitals.list))
	out := make([]dto.HospitalStatsDTO, len(hospitals.list))
	for i, h := range hospitals.list {
		out[i] = dto.HospitalStatsDTO{HospitalID: h.ID, HospitalName: h.Name, Address: h.Address}
		byHospital[h.ID] = &out[i]
	}
	for _, c := range folios.counts {
		s, ok := byHospital[c.HospitalID]
		if !ok {
			continue
		}
		s.TotalFolios += c.Count
		switch c.Status {
		case entity.FolioStatusPending, entity.FolioStatusApprovedLeader, entity.FolioStatusApprovedSupervisor:
			s.InProcess += c.Count
		case entity.FolioStatusDelivered:
			s.Delivered += c.Count
		case entity.FolioStatusDeliveredPartial:
			s.DeliveredPartial += c.Count
		case entity.FolioStatusRejected:
			s.Rejected += c.Count
		}
	}
	for _, c := range low.counts {
		if s, ok := byHospital[c.LocationID]; ok {
			s.LowStockItems = c.Count
		}
	}
	for i := range out {
		out[i].DeliveryRate = deliveryRate(out[i].Delivered, out[i].TotalFolios)
	}

	return &dto.HospitalStatsResponse{Total: len(out), Hospitals: out}, nil
}

func (uc *HospitalStatsUseCase) hospitals(ctx context.Context, hospitalID string) ([]*entity.Location, error) {
	if hospitalID == "" {
		return uc.locationRepo.List(ctx, entity.LocationKindHospital, maxHospitals, 0)
	}
	loc, err := uc.locationRepo.GetByID(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.Kind != entity.LocationKindHospital {
		return nil, fmt.Errorf("%w: hospital %s", domain.ErrNotFound, hospitalID)
	}
	return []*entity.Location{loc}, nil
}

// deliveryRate porcentaje con un decimal; 0 sin folios.
func deliveryRate(delivered, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(delivered)*1000/float64(total)) / 10
}

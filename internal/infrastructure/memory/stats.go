package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo agregados sobre el estado confirmado.
type StatsRepo struct{ a access }

// Stats repositorio de agregados para el tablero de gerencia.
func (s *Store) Stats() repository.StatsRepository { return &StatsRepo{a: storeAccess{s}} }

func (r *StatsRepo) CountFoliosByStatus(_ context.Context, hospitalID string) ([]repository.FolioStatusCount, error) {
	type key struct{ hospital, status string }
	counts := map[key]int64{}
	err := r.a.read(func(st *state) error {
		for _, f := range st.folios {
			if hospitalID != "" && f.HospitalID != hospitalID {
				continue
			}
			counts[key{f.HospitalID, f.Status}]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.FolioStatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, repository.FolioStatusCount{HospitalID: k.hospital, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HospitalID != out[j].HospitalID {
			return out[i].HospitalID < out[j].HospitalID
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

func (r *StatsRepo) CountLowStock(_ context.Context, locationID string) ([]repository.LowStockCount, error) {
	counts := map[string]int64{}
	err := r.a.read(func(st *state) error {
		for k, rec := range st.inventory {
			if locationID != "" && k.location != locationID {
				continue
			}
			p, ok := st.products[k.product]
			if ok && rec.Quantity <= p.MinStock {
				counts[k.location]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.LowStockCount, 0, len(counts))
	for loc, n := range counts {
		out = append(out, repository.LowStockCount{LocationID: loc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var (
	_ repository.InventoryRepository         = (*InventoryRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
	_ repository.FolioRepository             = (*FolioRepo)(nil)
	_ repository.FolioHistoryRepository      = (*HistoryRepo)(nil)
	_ repository.TransferRepository          = (*TransferRepo)(nil)
	_ repository.ProductRepository           = (*ProductRepo)(nil)
	_ repository.LocationRepository          = (*LocationRepo)(nil)
)

const defaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

// ── Inventario ───────────────────────────────────────────────────────────────

// InventoryRepo existencias por (ubicación, producto).
type InventoryRepo struct{ a access }

func (r *InventoryRepo) Get(_ context.Context, locationID, productID string) (*entity.InventoryRecord, error) {
	var out entity.InventoryRecord
	err := r.a.read(func(st *state) error {
		rec, ok := st.inventory[invKey{locationID, productID}]
		if !ok {
			out = entity.InventoryRecord{LocationID: locationID, ProductID: productID}
			return nil
		}
		out = cloneRecord(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate equivale a Get: la transacción en memoria ya tiene el estado en exclusiva.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, locationID, productID string) (*entity.InventoryRecord, error) {
	return r.Get(ctx, locationID, productID)
}

func (r *InventoryRepo) AddQuantity(_ context.Context, locationID, productID string, delta int64) (*entity.InventoryRecord, error) {
	var out entity.InventoryRecord
	err := r.a.write(func(st *state) error {
		key := invKey{locationID, productID}
		rec, ok := st.inventory[key]
		if !ok {
			rec = entity.InventoryRecord{LocationID: locationID, ProductID: productID}
		}
		if rec.Quantity+delta < 0 {
			return fmt.Errorf("%w: la existencia no puede quedar negativa", domain.ErrInsufficientStock)
		}
		rec.Quantity += delta
		rec.UpdatedAt = time.Now()
		st.inventory[key] = rec
		out = cloneRecord(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *InventoryRepo) Upsert(_ context.Context, rec *entity.InventoryRecord) error {
	if rec.Quantity < 0 {
		return fmt.Errorf("%w: la existencia no puede quedar negativa", domain.ErrInsufficientStock)
	}
	return r.a.write(func(st *state) error {
		cp := cloneRecord(*rec)
		if cp.UpdatedAt.IsZero() {
			cp.UpdatedAt = time.Now()
		}
		st.inventory[invKey{rec.LocationID, rec.ProductID}] = cp
		return nil
	})
}

func (r *InventoryRepo) UpdateLot(_ context.Context, locationID, productID, lot string, expiresAt *time.Time) error {
	return r.a.write(func(st *state) error {
		key := invKey{locationID, productID}
		rec, ok := st.inventory[key]
		if !ok {
			return domain.ErrNotFound
		}
		rec.Lot = lot
		rec.ExpiresAt = cloneTime(expiresAt)
		st.inventory[key] = rec
		return nil
	})
}

func (r *InventoryRepo) Delete(_ context.Context, locationID, productID string) error {
	return r.a.write(func(st *state) error {
		delete(st.inventory, invKey{locationID, productID})
		return nil
	})
}

func (r *InventoryRepo) ListByLocation(_ context.Context, locationID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	err := r.a.read(func(st *state) error {
		var all []entity.InventoryRecord
		for k, rec := range st.inventory {
			if locationID == "" || k.location == locationID {
				all = append(all, rec)
			}
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].LocationID != all[j].LocationID {
				return all[i].LocationID < all[j].LocationID
			}
			return all[i].ProductID < all[j].ProductID
		})
		from, to := paginate(len(all), listLimit(limit), offset)
		out = make([]*entity.InventoryRecord, 0, to-from)
		for _, rec := range all[from:to] {
			cp := cloneRecord(rec)
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *InventoryRepo) GetProductsBelowMinStock(_ context.Context, locationID string) ([]repository.ReplenishmentItem, error) {
	var out []repository.ReplenishmentItem
	err := r.a.read(func(st *state) error {
		for _, p := range st.products {
			if p.MinStock <= 0 {
				continue
			}
			qty := st.inventory[invKey{locationID, p.ID}].Quantity
			if qty >= p.MinStock {
				continue
			}
			out = append(out, repository.ReplenishmentItem{
				ProductID:    p.ID,
				ProductName:  p.Name,
				Unit:         p.Unit,
				CurrentStock: qty,
				MinStock:     p.MinStock,
				MaxStock:     p.MaxStock,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
		return nil
	})
	return out, err
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// MovementRepo diario de movimientos (append-only).
type MovementRepo struct{ a access }

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.a.write(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

// List devuelve los movimientos más recientes primero.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.a.read(func(st *state) error {
		var all []entity.InventoryMovement
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.LocationID != "" && m.LocationID != f.LocationID {
				continue
			}
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Reference != "" && m.Reference != f.Reference {
				continue
			}
			all = append(all, m)
		}
		from, to := paginate(len(all), listLimit(f.Limit), f.Offset)
		out = make([]*entity.InventoryMovement, 0, to-from)
		for i := from; i < to; i++ {
			m := all[i]
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}

// ── Folios ───────────────────────────────────────────────────────────────────

// FolioRepo agregado de folios con sus líneas.
type FolioRepo struct{ a access }

func (r *FolioRepo) Create(_ context.Context, f *entity.FolioRequest) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.folios[f.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.folioNumbers[f.FolioNumber]; ok {
			return fmt.Errorf("%w: folio_number %s", domain.ErrDuplicate, f.FolioNumber)
		}
		head := *f
		head.Items = nil
		st.folios[f.ID] = head
		st.folioNumbers[f.FolioNumber] = f.ID
		items := make([]entity.FolioItem, 0, len(f.Items))
		for _, it := range f.Items {
			items = append(items, cloneFolioItem(*it))
		}
		st.folioItems[f.ID] = items
		return nil
	})
}

func (r *FolioRepo) GetByID(_ context.Context, id string) (*entity.FolioRequest, error) {
	var out *entity.FolioRequest
	err := r.a.read(func(st *state) error {
		out = loadFolio(st, id)
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID dentro de la transacción en memoria.
func (r *FolioRepo) GetForUpdate(ctx context.Context, id string) (*entity.FolioRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *FolioRepo) UpdateStatus(_ context.Context, f *entity.FolioRequest) error {
	return r.a.write(func(st *state) error {
		head, ok := st.folios[f.ID]
		if !ok {
			return domain.ErrNotFound
		}
		head.Status = f.Status
		head.RejectedBy = f.RejectedBy
		head.RejectionReason = f.RejectionReason
		head.UpdatedAt = f.UpdatedAt
		st.folios[f.ID] = head
		return nil
	})
}

func (r *FolioRepo) UpdateItems(_ context.Context, items []*entity.FolioItem) error {
	return r.a.write(func(st *state) error {
		for _, it := range items {
			lines, ok := st.folioItems[it.FolioID]
			if !ok {
				return fmt.Errorf("%w: folio %s", domain.ErrNotFound, it.FolioID)
			}
			found := false
			for i := range lines {
				if lines[i].ID == it.ID {
					lines[i].QuantityApproved = cloneInt64(it.QuantityApproved)
					lines[i].QuantityReceived = cloneInt64(it.QuantityReceived)
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: línea %s", domain.ErrNotFound, it.ID)
			}
		}
		return nil
	})
}

// List devuelve los folios más recientes primero.
func (r *FolioRepo) List(_ context.Context, f repository.FolioFilter) ([]*entity.FolioRequest, error) {
	var out []*entity.FolioRequest
	err := r.a.read(func(st *state) error {
		var all []*entity.FolioRequest
		for id, head := range st.folios {
			if f.HospitalID != "" && head.HospitalID != f.HospitalID {
				continue
			}
			if f.RequesterID != "" && head.RequesterID != f.RequesterID {
				continue
			}
			if len(f.Statuses) > 0 && !containsString(f.Statuses, head.Status) {
				continue
			}
			all = append(all, loadFolio(st, id))
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].FolioNumber > all[j].FolioNumber
		})
		from, to := paginate(len(all), listLimit(f.Limit), f.Offset)
		out = all[from:to]
		return nil
	})
	return out, err
}

func loadFolio(st *state, id string) *entity.FolioRequest {
	head, ok := st.folios[id]
	if !ok {
		return nil
	}
	f := head
	lines := st.folioItems[id]
	f.Items = make([]*entity.FolioItem, 0, len(lines))
	for _, it := range lines {
		cp := cloneFolioItem(it)
		f.Items = append(f.Items, &cp)
	}
	return &f
}

// HistoryRepo bitácora de folios.
type HistoryRepo struct{ a access }

func (r *HistoryRepo) Append(_ context.Context, e *entity.FolioHistoryEntry) error {
	return r.a.write(func(st *state) error {
		st.history = append(st.history, *e)
		return nil
	})
}

// ListByFolio devuelve la bitácora en orden cronológico.
func (r *HistoryRepo) ListByFolio(_ context.Context, folioID string) ([]*entity.FolioHistoryEntry, error) {
	var out []*entity.FolioHistoryEntry
	err := r.a.read(func(st *state) error {
		for _, e := range st.history {
			if e.FolioID == folioID {
				cp := e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// ── Traspasos ────────────────────────────────────────────────────────────────

// TransferRepo órdenes de traspaso.
type TransferRepo struct{ a access }

func (r *TransferRepo) Create(_ context.Context, o *entity.TransferOrder) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.transfers[o.ID]; ok {
			return domain.ErrDuplicate
		}
		head := *o
		head.Items = nil
		head.CompletedAt = cloneTime(o.CompletedAt)
		st.transfers[o.ID] = head
		items := make([]entity.TransferOrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, *it)
		}
		st.transferItems[o.ID] = items
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.TransferOrder, error) {
	var out *entity.TransferOrder
	err := r.a.read(func(st *state) error {
		out = loadTransfer(st, id)
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID dentro de la transacción en memoria.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) UpdateStatus(_ context.Context, o *entity.TransferOrder) error {
	return r.a.write(func(st *state) error {
		head, ok := st.transfers[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		head.Status = o.Status
		head.CompletedBy = o.CompletedBy
		head.CompletedAt = cloneTime(o.CompletedAt)
		head.UpdatedAt = o.UpdatedAt
		st.transfers[o.ID] = head
		return nil
	})
}

func (r *TransferRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.TransferOrder, error) {
	var out []*entity.TransferOrder
	err := r.a.read(func(st *state) error {
		var all []*entity.TransferOrder
		for id, head := range st.transfers {
			if status != "" && head.Status != status {
				continue
			}
			all = append(all, loadTransfer(st, id))
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID > all[j].ID
		})
		from, to := paginate(len(all), listLimit(limit), offset)
		out = all[from:to]
		return nil
	})
	return out, err
}

func loadTransfer(st *state, id string) *entity.TransferOrder {
	head, ok := st.transfers[id]
	if !ok {
		return nil
	}
	o := head
	o.CompletedAt = cloneTime(head.CompletedAt)
	lines := st.transferItems[id]
	o.Items = make([]*entity.TransferOrderItem, 0, len(lines))
	for _, it := range lines {
		cp := it
		o.Items = append(o.Items, &cp)
	}
	return &o
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

// ProductRepo catálogo de productos (solo lectura).
type ProductRepo struct{ a access }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.a.read(func(st *state) error {
		all := make([]entity.Product, 0, len(st.products))
		for _, p := range st.products {
			all = append(all, p)
		}
		sort.Slice(all, func(i, j int) bool { return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name) })
		from, to := paginate(len(all), listLimit(limit), offset)
		for i := from; i < to; i++ {
			p := all[i]
			out = append(out, &p)
		}
		return nil
	})
	return out, err
}

// LocationRepo hospitales y almacenes centrales (solo lectura).
type LocationRepo struct{ a access }

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.a.read(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) List(_ context.Context, kind string, limit, offset int) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.a.read(func(st *state) error {
		var all []entity.Location
		for _, l := range st.locations {
			if kind != "" && l.Kind != kind {
				continue
			}
			all = append(all, l)
		}
		sort.Slice(all, func(i, j int) bool { return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name) })
		from, to := paginate(len(all), listLimit(limit), offset)
		for i := from; i < to; i++ {
			l := all[i]
			out = append(out, &l)
		}
		return nil
	})
	return out, err
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

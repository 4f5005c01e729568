// Package memory implementa los repositorios sobre un estado en memoria con transacciones
// serializadas. Se usa en pruebas y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type invKey struct {
	location string
	product  string
}

type state struct {
	products      map[string]entity.Product
	locations     map[string]entity.Location
	inventory     map[invKey]entity.InventoryRecord
	movements     []entity.InventoryMovement
	folios        map[string]entity.FolioRequest
	folioItems    map[string][]entity.FolioItem
	folioNumbers  map[string]string
	history       []entity.FolioHistoryEntry
	transfers     map[string]entity.TransferOrder
	transferItems map[string][]entity.TransferOrderItem
}

func newState() state {
	return state{
		products:      map[string]entity.Product{},
		locations:     map[string]entity.Location{},
		inventory:     map[invKey]entity.InventoryRecord{},
		folios:        map[string]entity.FolioRequest{},
		folioItems:    map[string][]entity.FolioItem{},
		folioNumbers:  map[string]string{},
		transfers:     map[string]entity.TransferOrder{},
		transferItems: map[string][]entity.TransferOrderItem{},
	}
}

func (s state) clone() state {
	out := newState()
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.locations {
		out.locations[k] = v
	}
	for k, v := range s.inventory {
		out.inventory[k] = cloneRecord(v)
	}
	out.movements = append(make([]entity.InventoryMovement, 0, len(s.movements)), s.movements...)
	for k, v := range s.folios {
		v.Items = nil
		out.folios[k] = v
	}
	for k, items := range s.folioItems {
		cp := make([]entity.FolioItem, len(items))
		for i, it := range items {
			cp[i] = cloneFolioItem(it)
		}
		out.folioItems[k] = cp
	}
	for k, v := range s.folioNumbers {
		out.folioNumbers[k] = v
	}
	out.history = append(make([]entity.FolioHistoryEntry, 0, len(s.history)), s.history...)
	for k, v := range s.transfers {
		v.Items = nil
		v.CompletedAt = cloneTime(v.CompletedAt)
		out.transfers[k] = v
	}
	for k, items := range s.transferItems {
		out.transferItems[k] = append([]entity.TransferOrderItem(nil), items...)
	}
	return out
}

// access abstrae cómo se llega al estado: dentro de una tx (lock ya tomado) o directo al
// estado confirmado (lock por llamada).
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type txAccess struct{ st *state }

func (a txAccess) read(fn func(st *state) error) error  { return fn(a.st) }
func (a txAccess) write(fn func(st *state) error) error { return fn(a.st) }

type storeAccess struct{ s *Store }

func (a storeAccess) read(fn func(st *state) error) error {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return fn(&a.s.state)
}

func (a storeAccess) write(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	// Igual que una tx de una sola sentencia: si falla no queda nada aplicado.
	next := a.s.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	a.s.state = next
	return nil
}

// Store estado en memoria con semántica transaccional.
// Run serializa las transacciones completas y confirma una copia del estado solo si fn no falla.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn con repositorios atados a una copia del estado; la copia reemplaza al estado
// confirmado solo si fn devuelve nil.
// fn no debe usar los repositorios no transaccionales del mismo Store.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	if err := fn(reposFor(txAccess{st: &tx})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.state = tx
	return nil
}

func reposFor(a access) inventory.TxRepositories {
	return inventory.TxRepositories{
		Inventory: &InventoryRepo{a: a},
		Movements: &MovementRepo{a: a},
		Folios:    &FolioRepo{a: a},
		History:   &HistoryRepo{a: a},
		Transfers: &TransferRepo{a: a},
		Products:  &ProductRepo{a: a},
		Locations: &LocationRepo{a: a},
	}
}

// Inventory repositorio de existencias fuera de transacción.
func (s *Store) Inventory() repository.InventoryRepository { return &InventoryRepo{a: storeAccess{s}} }

// Movements repositorio del diario fuera de transacción.
func (s *Store) Movements() repository.InventoryMovementRepository {
	return &MovementRepo{a: storeAccess{s}}
}

// Folios repositorio de folios fuera de transacción.
func (s *Store) Folios() repository.FolioRepository { return &FolioRepo{a: storeAccess{s}} }

// History repositorio de bitácora fuera de transacción.
func (s *Store) History() repository.FolioHistoryRepository { return &HistoryRepo{a: storeAccess{s}} }

// Transfers repositorio de traspasos fuera de transacción.
func (s *Store) Transfers() repository.TransferRepository { return &TransferRepo{a: storeAccess{s}} }

// Products catálogo de productos.
func (s *Store) Products() repository.ProductRepository { return &ProductRepo{a: storeAccess{s}} }

// Locations catálogo de ubicaciones.
func (s *Store) Locations() repository.LocationRepository { return &LocationRepo{a: storeAccess{s}} }

// SeedProduct registra un producto del catálogo.
func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
	}
	s.state.products[p.ID] = p
}

// SeedLocation registra un hospital o almacén central.
func (s *Store) SeedLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
		l.UpdatedAt = l.CreatedAt
	}
	s.state.locations[l.ID] = l
}

// SeedInventory fija una existencia inicial sin registrar movimiento.
func (s *Store) SeedInventory(locationID, productID string, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.inventory[invKey{locationID, productID}] = entity.InventoryRecord{
		LocationID: locationID,
		ProductID:  productID,
		Quantity:   quantity,
		UpdatedAt:  time.Now(),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRecord(r entity.InventoryRecord) entity.InventoryRecord {
	r.ExpiresAt = cloneTime(r.ExpiresAt)
	return r
}

func cloneFolioItem(it entity.FolioItem) entity.FolioItem {
	it.QuantityApproved = cloneInt64(it.QuantityApproved)
	it.QuantityReceived = cloneInt64(it.QuantityReceived)
	return it
}

func paginate(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		return n, n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

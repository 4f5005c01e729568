// Package seed carga un catálogo inicial de ubicaciones, insumos y existencias desde JSON,
// ya sea al almacén en memoria o a PostgreSQL.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
)

// Location ubicación a sembrar.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Address string `json:"address,omitempty"`
}

// Product insumo a sembrar.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Category    string `json:"category,omitempty"`
	MinStock    int64  `json:"min_stock"`
	MaxStock    int64  `json:"max_stock"`
}

// Stock existencia inicial.
type Stock struct {
	LocationID string `json:"location_id"`
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
}

// Catalog archivo de semilla.
type Catalog struct {
	Locations []Location `json:"locations"`
	Products  []Product  `json:"products"`
	Inventory []Stock    `json:"inventory"`
}

// LoadFile lee y valida el catálogo en path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodifica y valida el catálogo.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: catálogo: %v", domain.ErrValidation, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate revisa ids, tipos y referencias de las existencias.
func (c *Catalog) Validate() error {
	locs := make(map[string]struct{}, len(c.Locations))
	for _, l := range c.Locations {
		if l.ID == "" || l.Name == "" {
			return fmt.Errorf("%w: ubicación sin id o nombre", domain.ErrValidation)
		}
		if !entity.ValidLocationKind(l.Kind) {
			return fmt.Errorf("%w: ubicación %s con tipo %q", domain.ErrValidation, l.ID, l.Kind)
		}
		if _, dup := locs[l.ID]; dup {
			return fmt.Errorf("%w: ubicación repetida %s", domain.ErrValidation, l.ID)
		}
		locs[l.ID] = struct{}{}
	}
	prods := make(map[string]struct{}, len(c.Products))
	for _, p := range c.Products {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("%w: insumo sin id o nombre", domain.ErrValidation)
		}
		if p.MinStock < 0 || p.MaxStock < 0 || (p.MaxStock > 0 && p.MaxStock < p.MinStock) {
			return fmt.Errorf("%w: insumo %s con mínimo/máximo inválidos", domain.ErrValidation, p.ID)
		}
		if _, dup := prods[p.ID]; dup {
			return fmt.Errorf("%w: insumo repetido %s", domain.ErrValidation, p.ID)
		}
		prods[p.ID] = struct{}{}
	}
	for _, s := range c.Inventory {
		if _, ok := locs[s.LocationID]; !ok {
			return fmt.Errorf("%w: existencia en ubicación desconocida %s", domain.ErrValidation, s.LocationID)
		}
		if _, ok := prods[s.ProductID]; !ok {
			return fmt.Errorf("%w: existencia de insumo desconocido %s", domain.ErrValidation, s.ProductID)
		}
		if s.Quantity < 0 {
			return fmt.Errorf("%w: existencia negativa %s/%s", domain.ErrValidation, s.LocationID, s.ProductID)
		}
	}
	return nil
}

// ApplyMemory registra el catálogo en el almacén en memoria.
func ApplyMemory(s *memory.Store, c *Catalog) {
	for _, l := range c.Locations {
		s.SeedLocation(entity.Location{ID: l.ID, Name: l.Name, Kind: l.Kind, Address: l.Address})
	}
	for _, p := range c.Products {
		s.SeedProduct(entity.Product{
			ID: p.ID, Name: p.Name, Description: p.Description, Unit: unitOrDefault(p.Unit),
			Category: p.Category, MinStock: p.MinStock, MaxStock: p.MaxStock,
		})
	}
	for _, st := range c.Inventory {
		s.SeedInventory(st.LocationID, st.ProductID, st.Quantity)
	}
}

// ApplyPostgres inserta o actualiza el catálogo en una sola transacción.
// Las existencias se fijan al valor del archivo sin registrar movimientos.
func ApplyPostgres(ctx context.Context, pool *pgxpool.Pool, c *Catalog) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("iniciar transacción: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, l := range c.Locations {
		if _, err := tx.Exec(ctx, `
			INSERT INTO locations (id, name, kind, address)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, kind = EXCLUDED.kind, address = EXCLUDED.address, updated_at = now()`,
			l.ID, l.Name, l.Kind, l.Address); err != nil {
			return fmt.Errorf("ubicación %s: %w", l.ID, err)
		}
	}
	for _, p := range c.Products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (id, name, description, unit, category, min_stock, max_stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, description = EXCLUDED.description, unit = EXCLUDED.unit,
			    category = EXCLUDED.category, min_stock = EXCLUDED.min_stock,
			    max_stock = EXCLUDED.max_stock, updated_at = now()`,
			p.ID, p.Name, p.Description, unitOrDefault(p.Unit), p.Category, p.MinStock, p.MaxStock); err != nil {
			return fmt.Errorf("insumo %s: %w", p.ID, err)
		}
	}
	for _, s := range c.Inventory {
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory (location_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT ON CONSTRAINT inventory_location_product_key DO UPDATE
			SET quantity = EXCLUDED.quantity, updated_at = now()`,
			s.LocationID, s.ProductID, s.Quantity); err != nil {
			return fmt.Errorf("existencia %s/%s: %w", s.LocationID, s.ProductID, err)
		}
	}
	return tx.Commit(ctx)
}

func unitOrDefault(u string) string {
	if u == "" {
		return "pieza"
	}
	return u
}

package entity

import "time"

// Product representa un insumo del catálogo. Es dato de referencia de solo lectura para el núcleo:
// lo administra el catálogo y aquí solo se consulta.
type Product struct {
	ID          string
	Name        string
	Description string
	Unit        string // pieza, caja, paquete...
	Category    string
	MinStock    int64 // punto de reorden
	MaxStock    int64 // 0 = sin máximo definido
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package entity

import "time"

// Tipos de ubicación de inventario.
const (
	LocationKindHospital       = "hospital"
	LocationKindCentralStorage = "central_storage" // almacén central de distribución
)

// Location representa un lugar con existencias: un hospital o un almacén central.
type Location struct {
	ID        string
	Name      string
	Kind      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsHospital indica si la ubicación es un hospital.
func (l *Location) IsHospital() bool {
	return l != nil && l.Kind == LocationKindHospital
}

// ValidLocationKind indica si kind es un tipo de ubicación conocido.
func ValidLocationKind(kind string) bool {
	return kind == LocationKindHospital || kind == LocationKindCentralStorage
}

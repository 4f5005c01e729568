package entity

import "time"

// Estados de un traspaso.
const (
	TransferStatusPending   = "pending"
	TransferStatusInTransit = "in_transit"
	TransferStatusCompleted = "completed"
)

// TransferOrder orden de traspaso de insumos entre dos ubicaciones
// (almacén central ↔ hospital u hospital ↔ hospital).
type TransferOrder struct {
	ID            string
	SourceID      string
	DestinationID string
	Status        string
	Notes         string
	CreatedBy     string
	CompletedBy   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
	Items         []*TransferOrderItem
}

// TransferOrderItem línea de un traspaso.
type TransferOrderItem struct {
	ID         string
	TransferID string
	ProductID  string
	Quantity   int64
}

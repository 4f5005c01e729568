package dto

import "time"

// AdjustInventoryRequest body para POST /api/inventory/adjustments.
// Delta positivo es entrada de insumos, negativo es retiro manual.
type AdjustInventoryRequest struct {
	LocationID string     `json:"location_id" validate:"required"`
	ProductID  string     `json:"product_id" validate:"required"`
	Delta      int64      `json:"delta" validate:"required"`
	Reason     string     `json:"reason" validate:"required,max=500"`
	Lot        string     `json:"lot,omitempty" validate:"max=100"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// SetInventoryRequest body para PUT /api/inventory/:location_id/:product_id.
type SetInventoryRequest struct {
	Quantity int64  `json:"quantity" validate:"min=0"`
	Reason   string `json:"reason" validate:"required,max=500"`
}

// InventoryRecordResponse existencia de un producto en una ubicación.
type InventoryRecordResponse struct {
	LocationID  string     `json:"location_id"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Quantity    int64      `json:"quantity"`
	MinStock    int64      `json:"min_stock"`
	LowStock    bool       `json:"low_stock"`
	Lot         string     `json:"lot,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// InventoryListResponse lista paginada de existencias.
type InventoryListResponse struct {
	Items []InventoryRecordResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// MovementResponse salida de un movimiento de inventario.
type MovementResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	LocationID    string    `json:"location_id"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"type"`
	Quantity      int64     `json:"quantity"`
	Reason        string    `json:"reason,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un insumo bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	Unit              string  `json:"unit"`
	CurrentStock      int64   `json:"current_stock"`
	MinStock          int64   `json:"min_stock"`
	TargetStock       int64   `json:"target_stock"`        // MaxStock, o 2*MinStock si no hay máximo
	SuggestedOrderQty int64   `json:"suggested_order_qty"` // TargetStock - CurrentStock
	DeficitPct        float64 `json:"deficit_pct"`         // % bajo el mínimo
	Priority          int     `json:"priority"`            // 1 = más urgente
}

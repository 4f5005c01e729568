package dto

import "time"

// TransferItemRequest línea de un traspaso.
type TransferItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceID      string                `json:"source_id" validate:"required"`
	DestinationID string                `json:"destination_id" validate:"required,nefield=SourceID"`
	Notes         string                `json:"notes,omitempty" validate:"max=1000"`
	Items         []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferItemResponse línea de un traspaso.
type TransferItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// TransferResponse salida de una orden de traspaso.
type TransferResponse struct {
	ID            string                 `json:"id"`
	SourceID      string                 `json:"source_id"`
	DestinationID string                 `json:"destination_id"`
	Status        string                 `json:"status"`
	Notes         string                 `json:"notes,omitempty"`
	CreatedBy     string                 `json:"created_by"`
	CompletedBy   string                 `json:"completed_by,omitempty"`
	Items         []TransferItemResponse `json:"items"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
}

// TransferListResponse lista paginada de traspasos.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

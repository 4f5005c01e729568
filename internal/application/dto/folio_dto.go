package dto

import "time"

// FolioMetadataDTO datos del paciente y del procedimiento quirúrgico.
type FolioMetadataDTO struct {
	PatientName          string `json:"patient_name" validate:"required,max=200"`
	PatientAge           *int   `json:"patient_age,omitempty" validate:"omitempty,min=0,max=150"`
	PatientGender        string `json:"patient_gender,omitempty" validate:"omitempty,oneof=masculino femenino otro"`
	PatientNSS           string `json:"patient_nss,omitempty" validate:"max=50"`
	SurgeryType          string `json:"surgery_type" validate:"required,max=200"`
	IsEmergency          bool   `json:"is_emergency"`
	AnesthesiaType       string `json:"anesthesia_type" validate:"required,max=100"`
	SurgeonName          string `json:"surgeon_name" validate:"required,max=200"`
	AnesthesiologistName string `json:"anesthesiologist_name" validate:"required,max=200"`
	ProcedureTime        string `json:"procedure_time" validate:"required,max=50"`
}

// FolioItemRequest línea solicitada.
type FolioItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateFolioRequest body para POST /api/folios.
// HospitalID es opcional si el token del auxiliar ya trae hospital.
type CreateFolioRequest struct {
	HospitalID string             `json:"hospital_id,omitempty"`
	Priority   string             `json:"priority,omitempty" validate:"omitempty,oneof=normal urgente"`
	Notes      string             `json:"notes,omitempty" validate:"max=1000"`
	Metadata   FolioMetadataDTO   `json:"metadata"`
	Items      []FolioItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ApprovedQuantityRequest cantidad aprobada para una línea.
type ApprovedQuantityRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
}

// TransitionFolioRequest body para POST /api/folios/:id/transition.
type TransitionFolioRequest struct {
	Action   string                    `json:"action" validate:"required,oneof=approve reject"`
	Reason   string                    `json:"reason,omitempty" validate:"max=1000"`
	Notes    string                    `json:"notes,omitempty" validate:"max=1000"`
	Approved []ApprovedQuantityRequest `json:"approved,omitempty" validate:"omitempty,dive"`
}

// ReceivedQuantityRequest cantidad recibida capturada por almacén.
type ReceivedQuantityRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"min=0"`
}

// DeliverFolioRequest body opcional para POST /api/folios/:id/deliver.
type DeliverFolioRequest struct {
	Notes    string                    `json:"notes,omitempty" validate:"max=1000"`
	Received []ReceivedQuantityRequest `json:"received,omitempty" validate:"omitempty,dive"`
}

// FolioItemResponse línea de un folio.
type FolioItemResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	QuantityRequested int64  `json:"quantity_requested"`
	QuantityApproved  *int64 `json:"quantity_approved"`
	QuantityReceived  *int64 `json:"quantity_received"`
}

// FolioResponse salida de un folio con sus líneas.
type FolioResponse struct {
	ID              string              `json:"id"`
	FolioNumber     string              `json:"folio_number"`
	RequesterID     string              `json:"requester_id"`
	HospitalID      string              `json:"hospital_id"`
	Status          string              `json:"status"`
	Priority        string              `json:"priority"`
	Metadata        FolioMetadataDTO    `json:"metadata"`
	Notes           string              `json:"notes,omitempty"`
	RejectedBy      string              `json:"rejected_by,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Items           []FolioItemResponse `json:"items"`
	Shortages       []StockShortageDTO  `json:"shortages,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// StockShortageDTO aviso de existencia insuficiente al crear un folio (no bloquea la creación).
type StockShortageDTO struct {
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// FolioListResponse lista paginada de folios.
type FolioListResponse struct {
	Items []FolioResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// FolioHistoryResponse entrada de bitácora.
type FolioHistoryResponse struct {
	ID             string    `json:"id"`
	ActorID        string    `json:"actor_id"`
	Action         string    `json:"action"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

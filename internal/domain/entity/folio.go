package entity

import (
	"strings"
	"time"
)

// Estados del folio.
const (
	FolioStatusPending            = "pendiente"
	FolioStatusApprovedLeader     = "aprobado_lider"
	FolioStatusApprovedSupervisor = "aprobado_supervisor"
	FolioStatusDelivered          = "entregado"
	FolioStatusDeliveredPartial   = "entregado_parcial"
	FolioStatusRejected           = "rechazado"
)

// Prioridades del folio.
const (
	FolioPriorityNormal = "normal"
	FolioPriorityUrgent = "urgente"
)

// FolioMetadata datos del paciente y del procedimiento. Texto libre; solo se exige presencia.
// Se persiste como JSONB.
type FolioMetadata struct {
	PatientName          string `json:"patient_name"`
	PatientAge           *int   `json:"patient_age,omitempty"`
	PatientGender        string `json:"patient_gender,omitempty"` // masculino, femenino, otro
	PatientNSS           string `json:"patient_nss,omitempty"`
	SurgeryType          string `json:"surgery_type"`
	IsEmergency          bool   `json:"is_emergency"`
	AnesthesiaType       string `json:"anesthesia_type"` // general, locorregional, sedacion
	SurgeonName          string `json:"surgeon_name"`
	AnesthesiologistName string `json:"anesthesiologist_name"`
	ProcedureTime        string `json:"procedure_time"`
}

// MissingFields devuelve los nombres de los campos obligatorios vacíos.
func (m FolioMetadata) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"patient_name", m.PatientName},
		{"surgery_type", m.SurgeryType},
		{"anesthesia_type", m.AnesthesiaType},
		{"surgeon_name", m.SurgeonName},
		{"anesthesiologist_name", m.AnesthesiologistName},
		{"procedure_time", m.ProcedureTime},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// FolioRequest es el agregado de solicitud de insumos; es dueño de sus FolioItem.
// Nunca se elimina físicamente.
type FolioRequest struct {
	ID              string
	FolioNumber     string
	RequesterID     string
	HospitalID      string
	Status          string
	Priority        string
	Metadata        FolioMetadata
	Notes           string
	RejectedBy      string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []*FolioItem
}

// FolioItem línea de un folio.
// QuantityApproved es nil hasta que una aprobación la fija; QuantityReceived es nil hasta que el folio
// llega a un estado terminal de entrega (o 0 si el almacén lo rechaza).
type FolioItem struct {
	ID                string
	FolioID           string
	ProductID         string
	QuantityRequested int64
	QuantityApproved  *int64
	QuantityReceived  *int64
	CreatedAt         time.Time
}

// ApprovedOrRequested devuelve la cantidad aprobada o, si aún no existe, la solicitada.
func (i *FolioItem) ApprovedOrRequested() int64 {
	if i.QuantityApproved != nil {
		return *i.QuantityApproved
	}
	return i.QuantityRequested
}

// Item busca una línea por ID.
func (f *FolioRequest) Item(id string) *FolioItem {
	for _, it := range f.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// IsTerminalFolioStatus indica si el estado ya no admite transiciones.
func IsTerminalFolioStatus(status string) bool {
	switch status {
	case FolioStatusDelivered, FolioStatusDeliveredPartial, FolioStatusRejected:
		return true
	}
	return false
}

// ValidFolioPriority indica si p es una prioridad conocida.
func ValidFolioPriority(p string) bool {
	return p == FolioPriorityNormal || p == FolioPriorityUrgent
}

// ValidFolioStatus indica si s es un estado de folio conocido.
func ValidFolioStatus(s string) bool {
	switch s {
	case FolioStatusPending, FolioStatusApprovedLeader, FolioStatusApprovedSupervisor,
		FolioStatusDelivered, FolioStatusDeliveredPartial, FolioStatusRejected:
		return true
	}
	return false
}

package entity

import "time"

// Acciones registradas en la bitácora del folio.
const (
	HistoryActionCreated            = "Folio creado"
	HistoryActionApprovedLeader     = "Aprobado por líder"
	HistoryActionApprovedSupervisor = "Aprobado por supervisor"
	HistoryActionRejected           = "Folio rechazado"
	HistoryActionDelivered          = "Material entregado"
	HistoryActionDeliveredPartial   = "Material entregado parcialmente"
)

// FolioHistoryEntry registro inmutable de una transición del folio.
type FolioHistoryEntry struct {
	ID             string
	FolioID        string
	ActorID        string
	Action         string
	PreviousStatus string // vacío en la creación
	NewStatus      string
	Notes          string
	CreatedAt      time.Time
}

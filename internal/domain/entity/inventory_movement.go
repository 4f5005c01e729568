package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN          = "IN"           // entrada manual
	MovementTypeOUT         = "OUT"          // salida manual
	MovementTypeADJUSTMENT  = "ADJUSTMENT"   // ajuste a cantidad absoluta
	MovementTypeDELIVERY    = "DELIVERY"     // entrega de folio
	MovementTypeTransferOut = "TRANSFER_OUT" // salida por traspaso
	MovementTypeTransferIn  = "TRANSFER_IN"  // entrada por traspaso
)

// InventoryMovement es el registro contable de cada cambio aplicado al inventario.
// Lo escriben los procesos que llaman al ledger, porque solo ellos conocen el contexto de negocio.
type InventoryMovement struct {
	ID            string
	TransactionID string
	LocationID    string
	ProductID     string
	Type          string
	Quantity      int64 // positivo entrada, negativo salida
	Reason        string
	Reference     string // folio o traspaso que originó el movimiento
	CreatedBy     string
	CreatedAt     time.Time
}

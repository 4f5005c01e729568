package inventory

import (
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
)

// ApplyDelta calcula la nueva existencia a partir de la actual y un delta con signo.
// Regla del ledger: la existencia nunca puede quedar negativa.
func ApplyDelta(current, delta int64) (int64, error) {
	if delta == 0 {
		return current, fmt.Errorf("%w: delta no puede ser cero", domain.ErrValidation)
	}
	next := current + delta
	if next < 0 {
		return current, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, -delta)
	}
	return next, nil
}

// Deliverable devuelve cuánto se puede entregar de target con onHand disponible: min(onHand, target),
// nunca negativo.
func Deliverable(onHand, target int64) int64 {
	if target <= 0 || onHand <= 0 {
		return 0
	}
	if onHand < target {
		return onHand
	}
	return target
}

// Shortage devuelve las unidades faltantes para cubrir target con onHand.
func Shortage(onHand, target int64) int64 {
	if onHand >= target {
		return 0
	}
	if onHand < 0 {
		return target
	}
	return target - onHand
}

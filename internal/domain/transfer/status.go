// Package transfer define los estados válidos de una orden de traspaso.
package transfer

import (
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// Action acción sobre un traspaso.
type Action string

const (
	ActionDispatch Action = "dispatch"
	ActionComplete Action = "complete"
)

var transitions = map[Action]map[string]string{
	ActionDispatch: {
		entity.TransferStatusPending: entity.TransferStatusInTransit,
	},
	ActionComplete: {
		entity.TransferStatusPending:   entity.TransferStatusCompleted,
		entity.TransferStatusInTransit: entity.TransferStatusCompleted,
	},
}

// Next devuelve el estado destino del traspaso o ErrInvalidTransition.
func Next(action Action, current string) (string, error) {
	to, ok := transitions[action][current]
	if !ok {
		return "", fmt.Errorf("%w: traspaso en %q no admite %q", domain.ErrInvalidTransition, current, action)
	}
	return to, nil
}

// ValidStatus indica si s es un estado de traspaso conocido.
func ValidStatus(s string) bool {
	switch s {
	case entity.TransferStatusPending, entity.TransferStatusInTransit, entity.TransferStatusCompleted:
		return true
	}
	return false
}

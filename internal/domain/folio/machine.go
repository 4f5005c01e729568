// Package folio contiene la máquina de estados de aprobación de folios.
// Es la única fuente de verdad sobre qué rol puede mover un folio desde qué estado.
package folio

import (
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// Action acción que un rol ejecuta sobre un folio.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDeliver Action = "deliver"
)

// ValidAction indica si a es una acción conocida.
func ValidAction(a Action) bool {
	return a == ActionApprove || a == ActionReject || a == ActionDeliver
}

type ruleKey struct {
	role   string
	action Action
	from   string
}

// Options configura variantes de la tabla de transiciones.
type Options struct {
	// SupervisorFromPending permite que el supervisor apruebe o rechace folios aún pendientes
	// (sin pasar por el líder).
	SupervisorFromPending bool
}

// Machine tabla de transiciones (rol, acción, estado origen) → estado destino.
type Machine struct {
	rules map[ruleKey]string
}

// NewMachine construye la máquina con la tabla fija del flujo líder → supervisor → almacén.
func NewMachine(opts Options) *Machine {
	m := &Machine{rules: map[ruleKey]string{
		{entity.RoleLider, ActionApprove, entity.FolioStatusPending}: entity.FolioStatusApprovedLeader,
		{entity.RoleLider, ActionReject, entity.FolioStatusPending}:  entity.FolioStatusRejected,

		{entity.RoleSupervisor, ActionApprove, entity.FolioStatusApprovedLeader}: entity.FolioStatusApprovedSupervisor,
		{entity.RoleSupervisor, ActionReject, entity.FolioStatusApprovedLeader}:  entity.FolioStatusRejected,

		// entregado es el destino nominal; DeliveredStatus decide entre completo y parcial.
		{entity.RoleAlmacen, ActionDeliver, entity.FolioStatusApprovedSupervisor}: entity.FolioStatusDelivered,
		{entity.RoleAlmacen, ActionReject, entity.FolioStatusApprovedSupervisor}:  entity.FolioStatusRejected,
	}}
	if opts.SupervisorFromPending {
		m.rules[ruleKey{entity.RoleSupervisor, ActionApprove, entity.FolioStatusPending}] = entity.FolioStatusApprovedSupervisor
		m.rules[ruleKey{entity.RoleSupervisor, ActionReject, entity.FolioStatusPending}] = entity.FolioStatusRejected
	}
	return m
}

// Next devuelve el estado destino o ErrInvalidTransition si la combinación no está en la tabla.
// current debe ser el estado persistido del folio.
func (m *Machine) Next(role string, action Action, current string) (string, error) {
	to, ok := m.rules[ruleKey{role, action, current}]
	if !ok {
		return "", fmt.Errorf("%w: rol %q no puede ejecutar %q desde %q", domain.ErrInvalidTransition, role, action, current)
	}
	return to, nil
}

// Allowed devuelve las acciones que role puede ejecutar desde current.
func (m *Machine) Allowed(role, current string) []Action {
	var out []Action
	for _, a := range []Action{ActionApprove, ActionReject, ActionDeliver} {
		if _, ok := m.rules[ruleKey{role, a, current}]; ok {
			out = append(out, a)
		}
	}
	return out
}

// DeliveredStatus resuelve el estado terminal de una entrega.
func DeliveredStatus(complete bool) string {
	if complete {
		return entity.FolioStatusDelivered
	}
	return entity.FolioStatusDeliveredPartial
}

// HistoryAction texto de bitácora para el estado destino.
func HistoryAction(to string) string {
	switch to {
	case entity.FolioStatusApprovedLeader:
		return entity.HistoryActionApprovedLeader
	case entity.FolioStatusApprovedSupervisor:
		return entity.HistoryActionApprovedSupervisor
	case entity.FolioStatusRejected:
		return entity.HistoryActionRejected
	case entity.FolioStatusDelivered:
		return entity.HistoryActionDelivered
	case entity.FolioStatusDeliveredPartial:
		return entity.HistoryActionDeliveredPartial
	case entity.FolioStatusPending:
		return entity.HistoryActionCreated
	}
	return to
}

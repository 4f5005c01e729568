package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de una entrega de folio.
const (
	DeliveryOutcomeComplete = "complete"
	DeliveryOutcomePartial  = "partial"
	DeliveryOutcomeFailed   = "failed"
)

// WorkflowMetrics contadores del flujo de folios, entregas y ajustes de inventario.
// Un *WorkflowMetrics nil es válido y no registra nada.
type WorkflowMetrics struct {
	transitions     *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
	stockRejections *prometheus.CounterVec
	adjustments     *prometheus.CounterVec
}

// NewWorkflowMetrics registra las métricas en el registerer indicado.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_transitions_total",
		Help: "Transiciones de estado de folios aplicadas.",
	}, []string{"role", "action", "to"})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_deliveries_total",
		Help: "Entregas de folios por resultado.",
	}, []string{"outcome"})
	stockRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_insufficient_stock_total",
		Help: "Operaciones rechazadas o recortadas por stock insuficiente.",
	}, []string{"operation"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Movimientos de inventario registrados por tipo.",
	}, []string{"type"})
	reg.MustRegister(transitions, deliveries, stockRejections, adjustments)
	return &WorkflowMetrics{
		transitions:     transitions,
		deliveries:      deliveries,
		stockRejections: stockRejections,
		adjustments:     adjustments,
	}
}

// IncTransition cuenta una transición aplicada.
func (m *WorkflowMetrics) IncTransition(role, action, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(role), normalizeLabel(action), normalizeLabel(to)).Inc()
}

// IncDelivery cuenta una entrega por resultado.
func (m *WorkflowMetrics) IncDelivery(outcome string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncInsufficientStock cuenta un rechazo por stock insuficiente.
func (m *WorkflowMetrics) IncInsufficientStock(operation string) {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncAdjustment cuenta un movimiento de inventario.
func (m *WorkflowMetrics) IncAdjustment(movementType string) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(movementType)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

package folio_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Suministros-api/internal/application/folio"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	domainfolio "github.com/jhoicas/Suministros-api/internal/domain/folio"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/Suministros-api/pkg/metrics"
)

const (
	hospID    = "hosp-norte-0001"
	hospSurID = "hosp-sur-0002"
	centroID  = "central-0001"
	prodA     = "prod-a"
	prodB     = "prod-b"
)

var (
	auxiliar   = entity.Actor{ID: "u-aux", Role: entity.RoleAuxiliar, HospitalID: hospID}
	lider      = entity.Actor{ID: "u-lider", Role: entity.RoleLider, HospitalID: hospID}
	supervisor = entity.Actor{ID: "u-sup", Role: entity.RoleSupervisor, HospitalID: hospID}
	almacen    = entity.Actor{ID: "u-alm", Role: entity.RoleAlmacen}
)

type fixture struct {
	store      *memory.Store
	create     *folio.CreateFolioUseCase
	transition *folio.TransitionUseCase
	deliver    *folio.DeliverFolioUseCase
	query      *folio.QueryUseCase
}

func newFixture(t *testing.T, opts domainfolio.Options) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.SeedLocation(entity.Location{ID: hospID, Name: "Hospital Norte", Kind: entity.LocationKindHospital})
	s.SeedLocation(entity.Location{ID: hospSurID, Name: "Hospital Sur", Kind: entity.LocationKindHospital})
	s.SeedLocation(entity.Location{ID: centroID, Name: "Almacén Central", Kind: entity.LocationKindCentralStorage})
	s.SeedProduct(entity.Product{ID: prodA, Name: "Gasas", MinStock: 5})
	s.SeedProduct(entity.Product{ID: prodB, Name: "Sutura", MinStock: 2})

	machine := domainfolio.NewMachine(opts)
	m := metrics.NewWorkflowMetrics(nil)
	return &fixture{
		store:      s,
		create:     folio.NewCreateFolioUseCase(s, s.Inventory(), s.Products(), s.Locations(), nil),
		transition: folio.NewTransitionUseCase(s, machine, m, nil),
		deliver:    folio.NewDeliverFolioUseCase(s, machine, m, nil),
		query:      folio.NewQueryUseCase(s.Folios(), s.History()),
	}
}

func metadata() entity.FolioMetadata {
	return entity.FolioMetadata{
		PatientName:          "María López",
		SurgeryType:          "Colecistectomía",
		AnesthesiaType:       "general",
		SurgeonName:          "Dr. Ruiz",
		AnesthesiologistName: "Dra. Paz",
		ProcedureTime:        "08:30",
	}
}

func (fx *fixture) createFolio(t *testing.T, items ...folio.ItemInput) *entity.FolioRequest {
	t.Helper()
	res, err := fx.create.Create(context.Background(), folio.CreateFolioInput{
		Actor:    auxiliar,
		Metadata: metadata(),
		Items:    items,
	})
	require.NoError(t, err)
	return res.Folio
}

func (fx *fixture) approve(t *testing.T, actor entity.Actor, folioID string, approved ...folio.ApprovedQuantity) *entity.FolioRequest {
	t.Helper()
	f, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: actor, FolioID: folioID, Action: domainfolio.ActionApprove, Approved: approved,
	})
	require.NoError(t, err)
	return f
}

func (fx *fixture) approvedBySupervisor(t *testing.T, items ...folio.ItemInput) *entity.FolioRequest {
	t.Helper()
	f := fx.createFolio(t, items...)
	fx.approve(t, lider, f.ID)
	return fx.approve(t, supervisor, f.ID)
}

func (fx *fixture) stock(t *testing.T, locationID, productID string) int64 {
	t.Helper()
	rec, err := fx.store.Inventory().Get(context.Background(), locationID, productID)
	require.NoError(t, err)
	return rec.Quantity
}

func itemFor(f *entity.FolioRequest, productID string) *entity.FolioItem {
	for _, it := range f.Items {
		if it.ProductID == productID {
			return it
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Creación
// ─────────────────────────────────────────────────────────────────────────────

func TestCreate_RoundTrip(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 2)
	ctx := context.Background()

	res, err := fx.create.Create(ctx, folio.CreateFolioInput{
		Actor:    auxiliar,
		Metadata: metadata(),
		Notes:    "quirófano 3",
		Items:    []folio.ItemInput{{ProductID: prodA, Quantity: 4}, {ProductID: prodB, Quantity: 1}},
	})
	require.NoError(t, err)
	f := res.Folio
	assert.Equal(t, entity.FolioStatusPending, f.Status)
	assert.Equal(t, entity.FolioPriorityNormal, f.Priority)
	assert.Equal(t, hospID, f.HospitalID)
	assert.Len(t, res.Shortages, 2, "la disponibilidad es informativa y no bloquea")

	got, err := fx.query.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.FolioNumber, got.FolioNumber)
	assert.Equal(t, "María López", got.Metadata.PatientName)
	require.Len(t, got.Items, 2)
	for _, it := range got.Items {
		assert.Nil(t, it.QuantityApproved)
		assert.Nil(t, it.QuantityReceived)
	}

	history, err := fx.query.History(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.HistoryActionCreated, history[0].Action)
	assert.Equal(t, entity.FolioStatusPending, history[0].NewStatus)

	assert.Equal(t, int64(2), fx.stock(t, hospID, prodA), "crear un folio no reserva inventario")
}

func TestCreate_EmergenciaEsUrgente(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	md := metadata()
	md.IsEmergency = true

	res, err := fx.create.Create(context.Background(), folio.CreateFolioInput{
		Actor: auxiliar, Metadata: md, Items: []folio.ItemInput{{ProductID: prodA, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FolioPriorityUrgent, res.Folio.Priority)
}

func TestCreate_Validaciones(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	ctx := context.Background()
	incomplete := metadata()
	incomplete.SurgeonName = ""

	tests := []struct {
		name string
		in   folio.CreateFolioInput
		want error
	}{
		{"sin líneas", folio.CreateFolioInput{Actor: auxiliar, Metadata: metadata()}, domain.ErrValidation},
		{"cantidad negativa", folio.CreateFolioInput{Actor: auxiliar, Metadata: metadata(), Items: []folio.ItemInput{{ProductID: prodA, Quantity: -1}}}, domain.ErrValidation},
		{"cantidad cero", folio.CreateFolioInput{Actor: auxiliar, Metadata: metadata(), Items: []folio.ItemInput{{ProductID: prodA, Quantity: 0}}}, domain.ErrValidation},
		{"producto repetido", folio.CreateFolioInput{Actor: auxiliar, Metadata: metadata(), Items: []folio.ItemInput{{ProductID: prodA, Quantity: 1}, {ProductID: prodA, Quantity: 2}}}, domain.ErrValidation},
		{"metadatos incompletos", folio.CreateFolioInput{Actor: auxiliar, Metadata: incomplete, Items: []folio.ItemInput{{ProductID: prodA, Quantity: 1}}}, domain.ErrValidation},
		{"prioridad desconocida", folio.CreateFolioInput{Actor: auxiliar, Metadata: metadata(), Priority: "alta", Items: []folio.ItemInput{{ProductID: prodA, Quantity: 1}}}, domain.ErrValidation},
		{"rol distinto de auxiliar", folio.CreateFolioInput{Actor: lider, Metadata: metadata(), Items: []folio.ItemInput{{ProductID: prodA, Quantity: 1}}}, domain.ErrForbidden},
		{"otro hospital", folio.CreateFolioInput{Actor: auxiliar, HospitalID: hospSurID, Metadata: metadata(), Items: []folio.ItemInput{{ProductID: prodA, Quantity: 1}}}, domain.ErrForbidden},
		{"almacén central no es hospital", folio.CreateFolioInput{Actor: entity.Actor{ID: "x", Role: entity.RoleAuxiliar}, HospitalID: centroID, Metadata: metadata(), Items: []folio.ItemInput{{ProductID: prodA, Quantity: 1}}}, domain.ErrValidation},
		{"producto inexistente", folio.CreateFolioInput{Actor: auxiliar, Metadata: metadata(), Items: []folio.ItemInput{{ProductID: "nope", Quantity: 1}}}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.create.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, err := fx.query.List(ctx, repository.FolioFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "ninguna creación inválida debe persistir")
}

func TestNewFolioNumber_Formato(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	n := folio.NewFolioNumber(hospID, now)
	assert.Regexp(t, regexp.MustCompile(`^F-hosp-nor-1718000000123-[0-9a-f]{4}$`), n)
}

// ─────────────────────────────────────────────────────────────────────────────
// Transiciones
// ─────────────────────────────────────────────────────────────────────────────

func TestTransition_FlujoCompleto(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 5})

	f = fx.approve(t, lider, f.ID)
	assert.Equal(t, entity.FolioStatusApprovedLeader, f.Status)
	require.NotNil(t, f.Items[0].QuantityApproved)
	assert.Equal(t, int64(5), *f.Items[0].QuantityApproved)

	f = fx.approve(t, supervisor, f.ID)
	assert.Equal(t, entity.FolioStatusApprovedSupervisor, f.Status)

	history, err := fx.query.History(context.Background(), f.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entity.HistoryActionApprovedLeader, history[1].Action)
	assert.Equal(t, entity.FolioStatusPending, history[1].PreviousStatus)
	assert.Equal(t, entity.HistoryActionApprovedSupervisor, history[2].Action)
}

func TestTransition_AprobacionConCantidades(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 5}, folio.ItemInput{ProductID: prodB, Quantity: 2})
	itemA := itemFor(f, prodA)

	f = fx.approve(t, lider, f.ID, folio.ApprovedQuantity{ItemID: itemA.ID, Quantity: 3})
	assert.Equal(t, int64(3), *itemFor(f, prodA).QuantityApproved)
	assert.Equal(t, int64(2), *itemFor(f, prodB).QuantityApproved)

	f = fx.approve(t, supervisor, f.ID)
	assert.Equal(t, int64(3), *itemFor(f, prodA).QuantityApproved, "el supervisor conserva lo aprobado por el líder")
	assert.Equal(t, int64(5), itemFor(f, prodA).QuantityRequested)

	_, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: lider, FolioID: fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 2}).ID,
		Action: domainfolio.ActionApprove, Approved: []folio.ApprovedQuantity{{ItemID: "otra", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTransition_CantidadAprobadaFueraDeRango(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 5})

	_, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: lider, FolioID: f.ID, Action: domainfolio.ActionApprove,
		Approved: []folio.ApprovedQuantity{{ItemID: f.Items[0].ID, Quantity: 6}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, _ := fx.query.Get(context.Background(), f.ID)
	assert.Equal(t, entity.FolioStatusPending, got.Status)
}

func TestTransition_RolesYEstadosInvalidos(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	ctx := context.Background()
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 1})

	for _, actor := range []entity.Actor{auxiliar, supervisor, almacen} {
		_, err := fx.transition.Transition(ctx, folio.TransitionInput{Actor: actor, FolioID: f.ID, Action: domainfolio.ActionApprove})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, actor.Role)
	}

	got, _ := fx.query.Get(ctx, f.ID)
	assert.Equal(t, entity.FolioStatusPending, got.Status)
	history, _ := fx.query.History(ctx, f.ID)
	assert.Len(t, history, 1)
}

func TestTransition_DobleRechazoFalla(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	ctx := context.Background()
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 1})

	rejected, err := fx.transition.Transition(ctx, folio.TransitionInput{
		Actor: lider, FolioID: f.ID, Action: domainfolio.ActionReject, Reason: "sin justificación clínica",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FolioStatusRejected, rejected.Status)
	assert.Equal(t, lider.ID, rejected.RejectedBy)
	assert.Equal(t, "sin justificación clínica", rejected.RejectionReason)

	_, err = fx.transition.Transition(ctx, folio.TransitionInput{
		Actor: lider, FolioID: f.ID, Action: domainfolio.ActionReject, Reason: "otra vez",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	history, err := fx.query.History(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2, "el segundo rechazo no escribe bitácora")
}

func TestTransition_RechazoSinMotivo(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	ctx := context.Background()
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 1})

	rejected, err := fx.transition.Transition(ctx, folio.TransitionInput{
		Actor: lider, FolioID: f.ID, Action: domainfolio.ActionReject,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FolioStatusRejected, rejected.Status)
	assert.Empty(t, rejected.RejectionReason)

	// Un folio rechazado no admite otro rechazo, con o sin motivo.
	_, err = fx.transition.Transition(ctx, folio.TransitionInput{
		Actor: lider, FolioID: f.ID, Action: domainfolio.ActionReject,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.NotErrorIs(t, err, domain.ErrValidation)

	history, err := fx.query.History(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestTransition_AlmacenRechazaSinMotivo(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 10)
	f := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 4})

	f, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: almacen, FolioID: f.ID, Action: domainfolio.ActionReject,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FolioStatusRejected, f.Status)
	require.NotNil(t, f.Items[0].QuantityReceived)
	assert.Equal(t, int64(0), *f.Items[0].QuantityReceived)
	assert.Equal(t, int64(10), fx.stock(t, hospID, prodA))
}

func TestTransition_AlmacenRechazaSinTocarInventario(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 10)
	f := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 4})

	f, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: almacen, FolioID: f.ID, Action: domainfolio.ActionReject, Reason: "material caducado",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FolioStatusRejected, f.Status)
	require.NotNil(t, f.Items[0].QuantityReceived)
	assert.Equal(t, int64(0), *f.Items[0].QuantityReceived)
	assert.Equal(t, int64(10), fx.stock(t, hospID, prodA))
}

func TestTransition_SupervisorRechazaNoRestauraInventario(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 10)
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 4})
	fx.approve(t, lider, f.ID)

	_, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: supervisor, FolioID: f.ID, Action: domainfolio.ActionReject, Reason: "duplicado",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), fx.stock(t, hospID, prodA), "el inventario solo cambia al entregar")
}

func TestTransition_OtroHospitalProhibido(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 1})
	liderSur := entity.Actor{ID: "u-lider-sur", Role: entity.RoleLider, HospitalID: hospSurID}

	_, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: liderSur, FolioID: f.ID, Action: domainfolio.ActionApprove,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTransition_SupervisorDesdePendienteConfigurable(t *testing.T) {
	strict := newFixture(t, domainfolio.Options{})
	f := strict.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 1})
	_, err := strict.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: supervisor, FolioID: f.ID, Action: domainfolio.ActionApprove,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	relaxed := newFixture(t, domainfolio.Options{SupervisorFromPending: true})
	f = relaxed.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 1})
	f = relaxed.approve(t, supervisor, f.ID)
	assert.Equal(t, entity.FolioStatusApprovedSupervisor, f.Status)
}

func TestTransition_FolioInexistente(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	_, err := fx.transition.Transition(context.Background(), folio.TransitionInput{
		Actor: lider, FolioID: "nope", Action: domainfolio.ActionApprove,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Entrega
// ─────────────────────────────────────────────────────────────────────────────

func TestDeliver_ParcialPorFaltante(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 10)
	fx.store.SeedInventory(hospID, prodB, 3)
	f := fx.approvedBySupervisor(t,
		folio.ItemInput{ProductID: prodA, Quantity: 10},
		folio.ItemInput{ProductID: prodB, Quantity: 5},
	)

	got, err := fx.deliver.Deliver(context.Background(), folio.DeliverFolioInput{Actor: almacen, FolioID: f.ID})
	require.NoError(t, err)

	assert.Equal(t, entity.FolioStatusDeliveredPartial, got.Status)
	assert.Equal(t, int64(10), *itemFor(got, prodA).QuantityReceived)
	assert.Equal(t, int64(3), *itemFor(got, prodB).QuantityReceived)
	assert.Equal(t, int64(0), fx.stock(t, hospID, prodA))
	assert.Equal(t, int64(0), fx.stock(t, hospID, prodB))

	movs, err := fx.store.Movements().List(context.Background(), repository.MovementFilter{Reference: f.ID})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeDELIVERY, m.Type)
		assert.Equal(t, movs[0].TransactionID, m.TransactionID)
	}

	history, _ := fx.query.History(context.Background(), f.ID)
	last := history[len(history)-1]
	assert.Equal(t, entity.HistoryActionDeliveredPartial, last.Action)
	assert.Equal(t, entity.FolioStatusApprovedSupervisor, last.PreviousStatus)
}

func TestDeliver_Completo(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 12)
	f := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 10})

	got, err := fx.deliver.Deliver(context.Background(), folio.DeliverFolioInput{Actor: almacen, FolioID: f.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.FolioStatusDelivered, got.Status)
	assert.Equal(t, int64(2), fx.stock(t, hospID, prodA))
}

func TestDeliver_CantidadCapturadaSeRecorta(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 20)
	fx.store.SeedInventory(hospID, prodB, 20)
	f := fx.approvedBySupervisor(t,
		folio.ItemInput{ProductID: prodA, Quantity: 10},
		folio.ItemInput{ProductID: prodB, Quantity: 2},
	)

	got, err := fx.deliver.Deliver(context.Background(), folio.DeliverFolioInput{
		Actor: almacen, FolioID: f.ID,
		Received: []folio.ReceivedQuantity{
			{ItemID: itemFor(f, prodA).ID, Quantity: 4},
			{ItemID: itemFor(f, prodB).ID, Quantity: 99},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FolioStatusDeliveredPartial, got.Status)
	assert.Equal(t, int64(4), *itemFor(got, prodA).QuantityReceived)
	assert.Equal(t, int64(2), *itemFor(got, prodB).QuantityReceived, "se recorta a lo aprobado")
	assert.Equal(t, int64(16), fx.stock(t, hospID, prodA))
	assert.Equal(t, int64(18), fx.stock(t, hospID, prodB))
}

func TestDeliver_CantidadCapturadaInvalida(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 5)
	f := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 5})
	ctx := context.Background()

	_, err := fx.deliver.Deliver(ctx, folio.DeliverFolioInput{
		Actor: almacen, FolioID: f.ID, Received: []folio.ReceivedQuantity{{ItemID: "otra", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = fx.deliver.Deliver(ctx, folio.DeliverFolioInput{
		Actor: almacen, FolioID: f.ID, Received: []folio.ReceivedQuantity{{ItemID: f.Items[0].ID, Quantity: -1}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, int64(5), fx.stock(t, hospID, prodA))
	got, _ := fx.query.Get(ctx, f.ID)
	assert.Equal(t, entity.FolioStatusApprovedSupervisor, got.Status)
}

func TestDeliver_EnPendienteFallaSinTocarInventario(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 10)
	f := fx.createFolio(t, folio.ItemInput{ProductID: prodA, Quantity: 5})

	_, err := fx.deliver.Deliver(context.Background(), folio.DeliverFolioInput{Actor: almacen, FolioID: f.ID})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, _ := fx.query.Get(context.Background(), f.ID)
	assert.Equal(t, entity.FolioStatusPending, got.Status)
	assert.Nil(t, got.Items[0].QuantityReceived)
	assert.Equal(t, int64(10), fx.stock(t, hospID, prodA))

	movs, _ := fx.store.Movements().List(context.Background(), repository.MovementFilter{})
	assert.Empty(t, movs)
}

func TestDeliver_SoloAlmacen(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 10)
	f := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 5})

	_, err := fx.deliver.Deliver(context.Background(), folio.DeliverFolioInput{Actor: supervisor, FolioID: f.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(10), fx.stock(t, hospID, prodA))
}

func TestDeliver_DobleEntregaFalla(t *testing.T) {
	fx := newFixture(t, domainfolio.Options{})
	fx.store.SeedInventory(hospID, prodA, 10)
	f := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 5})
	ctx := context.Background()

	_, err := fx.deliver.Deliver(ctx, folio.DeliverFolioInput{Actor: almacen, FolioID: f.ID})
	require.NoError(t, err)
	_, err = fx.deliver.Deliver(ctx, folio.DeliverFolioInput{Actor: almacen, FolioID: f.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(5), fx.stock(t, hospID, prodA))
}

func TestDeliver_CarreraConcurrente(t *testing.T) {
	for round := 0; round < 20; round++ {
		fx := newFixture(t, domainfolio.Options{})
		fx.store.SeedInventory(hospID, prodA, 5)
		f1 := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 5})
		f2 := fx.approvedBySupervisor(t, folio.ItemInput{ProductID: prodA, Quantity: 5})

		results := make([]*entity.FolioRequest, 2)
		var g errgroup.Group
		for i, id := range []string{f1.ID, f2.ID} {
			i, id := i, id
			g.Go(func() error {
				f, err := fx.deliver.Deliver(context.Background(), folio.DeliverFolioInput{Actor: almacen, FolioID: id})
				results[i] = f
				return err
			})
		}
		require.NoError(t, g.Wait())

		received := []int64{*results[0].Items[0].QuantityReceived, *results[1].Items[0].QuantityReceived}
		assert.ElementsMatch(t, []int64{5, 0}, received)
		assert.Equal(t, int64(0), fx.stock(t, hospID, prodA))

		statuses := []string{results[0].Status, results[1].Status}
		assert.ElementsMatch(t, []string{entity.FolioStatusDelivered, entity.FolioStatusDeliveredPartial}, statuses)
	}
}

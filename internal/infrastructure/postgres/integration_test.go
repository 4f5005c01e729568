package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Suministros-api/internal/application/folio"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/application/transfer"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	domainfolio "github.com/jhoicas/Suministros-api/internal/domain/folio"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/seed"
	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/jhoicas/Suministros-api/pkg/metrics"
	"github.com/jhoicas/Suministros-api/pkg/migrate"
)

// Pruebas contra PostgreSQL real: bloqueos de fila, upserts y orden de bloqueo.
// Requieren DATABASE_URL; cada prueba usa ubicaciones e insumos propios.

type pgEnv struct {
	pool       *pgxpool.Pool
	repos      inventory.TxRepositories
	create     *folio.CreateFolioUseCase
	transition *folio.TransitionUseCase
	deliver    *folio.DeliverFolioUseCase
	transfers  *transfer.UseCase
	adjust     *inventory.AdjustInventoryUseCase

	hospitalID string
	centralID  string
	gasasID    string
	suturaID   string
}

func newPgEnv(t *testing.T) *pgEnv {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL no definido: se omiten las pruebas de PostgreSQL")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, migrate.UpFromPool(ctx, pool))

	e := &pgEnv{
		pool:       pool,
		hospitalID: uuid.NewString(),
		centralID:  uuid.NewString(),
		gasasID:    uuid.NewString(),
		suturaID:   uuid.NewString(),
	}
	require.NoError(t, seed.ApplyPostgres(ctx, pool, &seed.Catalog{
		Locations: []seed.Location{
			{ID: e.hospitalID, Name: "Hospital Norte " + e.hospitalID[:8], Kind: entity.LocationKindHospital},
			{ID: e.centralID, Name: "Almacén Central " + e.centralID[:8], Kind: entity.LocationKindCentralStorage},
		},
		Products: []seed.Product{
			{ID: e.gasasID, Name: "Gasas", MinStock: 5},
			{ID: e.suturaID, Name: "Sutura", MinStock: 2},
		},
	}))
	t.Cleanup(func() { e.cleanup(t) })

	tx := postgres.NewTxRunner(pool)
	e.repos = postgres.Repositories(pool)
	machine := domainfolio.NewMachine(domainfolio.Options{})
	m := metrics.NewWorkflowMetrics(nil)
	e.create = folio.NewCreateFolioUseCase(tx, e.repos.Inventory, e.repos.Products, e.repos.Locations, nil)
	e.transition = folio.NewTransitionUseCase(tx, machine, m, nil)
	e.deliver = folio.NewDeliverFolioUseCase(tx, machine, m, nil)
	e.transfers = transfer.NewUseCase(tx, e.repos.Transfers, e.repos.Products, e.repos.Locations, m, nil)
	e.adjust = inventory.NewAdjustInventoryUseCase(tx, e.repos.Inventory, e.repos.Movements, e.repos.Products, e.repos.Locations, m, nil)
	return e
}

// cleanup borra lo sembrado por la prueba respetando las llaves foráneas.
func (e *pgEnv) cleanup(t *testing.T) {
	ctx := context.Background()
	locs := []string{e.hospitalID, e.centralID}
	stmts := []string{
		`DELETE FROM folio_requests WHERE hospital_id = ANY($1::uuid[])`,
		`DELETE FROM transfer_orders WHERE source_id = ANY($1::uuid[]) OR destination_id = ANY($1::uuid[])`,
		`DELETE FROM inventory_movements WHERE location_id = ANY($1::uuid[])`,
		`DELETE FROM inventory WHERE location_id = ANY($1::uuid[])`,
		`DELETE FROM locations WHERE id = ANY($1::uuid[])`,
	}
	for _, s := range stmts {
		_, err := e.pool.Exec(ctx, s, locs)
		assert.NoError(t, err, s)
	}
	_, err := e.pool.Exec(ctx, `DELETE FROM products WHERE id = ANY($1::uuid[])`, []string{e.gasasID, e.suturaID})
	assert.NoError(t, err)
}

func (e *pgEnv) setStock(t *testing.T, locationID, productID string, qty int64) {
	t.Helper()
	_, err := e.pool.Exec(context.Background(),
		`INSERT INTO inventory (location_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT ON CONSTRAINT inventory_location_product_key DO UPDATE SET quantity = EXCLUDED.quantity`,
		locationID, productID, qty)
	require.NoError(t, err)
}

func (e *pgEnv) stock(t *testing.T, locationID, productID string) int64 {
	t.Helper()
	q, err := inventory.NewLedger(e.repos.Inventory).GetQuantity(context.Background(), locationID, productID)
	require.NoError(t, err)
	return q
}

func (e *pgEnv) approvedFolio(t *testing.T, items ...folio.ItemInput) *entity.FolioRequest {
	t.Helper()
	ctx := context.Background()
	res, err := e.create.Create(ctx, folio.CreateFolioInput{
		Actor: entity.Actor{ID: "u-aux", Role: entity.RoleAuxiliar, HospitalID: e.hospitalID},
		Metadata: entity.FolioMetadata{
			PatientName:          "María López",
			SurgeryType:          "Colecistectomía",
			AnesthesiaType:       "general",
			SurgeonName:          "Dr. Ruiz",
			AnesthesiologistName: "Dra. Paz",
			ProcedureTime:        "08:30",
		},
		Items: items,
	})
	require.NoError(t, err)
	for _, role := range []string{entity.RoleLider, entity.RoleSupervisor} {
		_, err := e.transition.Transition(ctx, folio.TransitionInput{
			Actor:   entity.Actor{ID: "u-" + role, Role: role, HospitalID: e.hospitalID},
			FolioID: res.Folio.ID,
			Action:  domainfolio.ActionApprove,
		})
		require.NoError(t, err)
	}
	return res.Folio
}

var almacenActor = entity.Actor{ID: "u-alm", Role: entity.RoleAlmacen}

func TestPostgres_EntregasConcurrentesNoSobregiran(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()

	for round := 0; round < 5; round++ {
		e.setStock(t, e.hospitalID, e.gasasID, 5)
		f1 := e.approvedFolio(t, folio.ItemInput{ProductID: e.gasasID, Quantity: 5})
		f2 := e.approvedFolio(t, folio.ItemInput{ProductID: e.gasasID, Quantity: 5})

		results := make([]*entity.FolioRequest, 2)
		var g errgroup.Group
		for i, id := range []string{f1.ID, f2.ID} {
			i, id := i, id
			g.Go(func() error {
				f, err := e.deliver.Deliver(ctx, folio.DeliverFolioInput{Actor: almacenActor, FolioID: id})
				results[i] = f
				return err
			})
		}
		require.NoError(t, g.Wait())

		received := []int64{*results[0].Items[0].QuantityReceived, *results[1].Items[0].QuantityReceived}
		assert.ElementsMatch(t, []int64{5, 0}, received, "ronda %d", round)
		statuses := []string{results[0].Status, results[1].Status}
		assert.ElementsMatch(t, []string{entity.FolioStatusDelivered, entity.FolioStatusDeliveredPartial}, statuses)
		assert.Equal(t, int64(0), e.stock(t, e.hospitalID, e.gasasID))
	}
}

func TestPostgres_EntregaYTraspasoSinDeadlock(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	const rounds = 5
	e.setStock(t, e.hospitalID, e.gasasID, 100)
	e.setStock(t, e.hospitalID, e.suturaID, 100)

	for round := 0; round < rounds; round++ {
		f := e.approvedFolio(t,
			folio.ItemInput{ProductID: e.gasasID, Quantity: 4},
			folio.ItemInput{ProductID: e.suturaID, Quantity: 4},
		)
		// Las líneas del traspaso van en orden inverso a las del folio.
		order, err := e.transfers.Create(ctx, transfer.CreateTransferInput{
			ActorID:       "u-gerente",
			SourceID:      e.hospitalID,
			DestinationID: e.centralID,
			Items: []transfer.ItemInput{
				{ProductID: e.suturaID, Quantity: 3},
				{ProductID: e.gasasID, Quantity: 3},
			},
		})
		require.NoError(t, err)

		var g errgroup.Group
		g.Go(func() error {
			_, err := e.deliver.Deliver(ctx, folio.DeliverFolioInput{Actor: almacenActor, FolioID: f.ID})
			return err
		})
		g.Go(func() error {
			_, err := e.transfers.Complete(ctx, order.ID, "u-gerente")
			return err
		})
		require.NoError(t, g.Wait(), "ronda %d", round)
	}

	for _, p := range []string{e.gasasID, e.suturaID} {
		assert.Equal(t, int64(100-rounds*7), e.stock(t, e.hospitalID, p))
		assert.Equal(t, int64(rounds*3), e.stock(t, e.centralID, p))
	}
}

func TestPostgres_EntradasConcurrentesCreanUnaFila(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	const n = 20

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := e.adjust.Adjust(ctx, inventory.AdjustInventoryInput{
				ActorID: "u-alm", LocationID: e.centralID, ProductID: e.suturaID, Delta: 1, Reason: "recepción",
			})
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(n), e.stock(t, e.centralID, e.suturaID))

	var rows int
	require.NoError(t, e.pool.QueryRow(ctx,
		`SELECT count(*) FROM inventory WHERE location_id = $1 AND product_id = $2`,
		e.centralID, e.suturaID).Scan(&rows))
	assert.Equal(t, 1, rows)
}

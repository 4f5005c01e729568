package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Suministros-api/internal/application/analytics"
	"github.com/jhoicas/Suministros-api/internal/application/folio"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/application/transfer"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	pkgredis "github.com/jhoicas/Suministros-api/pkg/redis"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateFolio     *folio.CreateFolioUseCase
	TransitionFolio *folio.TransitionUseCase
	DeliverFolio    *folio.DeliverFolioUseCase
	FolioQuery      *folio.QueryUseCase
	Inventory       *inventory.AdjustInventoryUseCase
	Replenishment   *inventory.ReplenishmentUseCase
	Transfers       *transfer.UseCase
	Catalog         *usecase.CatalogUseCase
	HospitalStats   *analytics.HospitalStatsUseCase

	JWTSecret      string
	Idempotency    pkgredis.IdempotencyStore // nil: sin idempotencia
	IdempotencyTTL time.Duration
	Gatherer       prometheus.Gatherer // nil: sin /metrics
	Logger         *logger.Logger
}

// NewApp crea la app de Fiber con el manejo de errores y los middlewares comunes.
func NewApp(appName string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: ErrorHandler(log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(log))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole())
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL, deps.Logger)

	// Folios
	folios := protected.Group("/folios", RequireHospital())
	folioHandler := NewFolioHandler(deps.CreateFolio, deps.TransitionFolio, deps.DeliverFolio, deps.FolioQuery)
	folios.Post("/", RequireRole(entity.RoleAuxiliar), folioHandler.Create)
	folios.Get("/", folioHandler.List)
	folios.Get("/:id", folioHandler.Get)
	folios.Get("/:id/history", folioHandler.History)
	folios.Post("/:id/transition", RequireRole(entity.RoleLider, entity.RoleSupervisor, entity.RoleAlmacen), folioHandler.Transition)
	folios.Post("/:id/deliver", RequireRole(entity.RoleAlmacen), idem, folioHandler.Deliver)

	// Inventario
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.Replenishment)
	invGroup.Get("/", inventoryHandler.List)
	invGroup.Get("/movements", inventoryHandler.Movements)
	invGroup.Get("/replenishment-list", RequireRole(entity.RoleGerenteAlmacen, entity.RoleCadenaSuministro), inventoryHandler.GetReplenishmentList)
	invGroup.Post("/adjustments", RequireRole(entity.RoleAlmacen, entity.RoleGerenteAlmacen), idem, inventoryHandler.Adjust)
	invGroup.Put("/:location_id/:product_id", RequireRole(entity.RoleGerenteAlmacen), inventoryHandler.SetAbsolute)

	// Traspasos
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transferManagers := RequireRole(entity.RoleGerenteAlmacen, entity.RoleCadenaSuministro)
	transfers.Post("/", transferManagers, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/dispatch", transferManagers, transferHandler.Dispatch)
	transfers.Post("/:id/complete", transferManagers, idem, transferHandler.Complete)

	// Tablero de gerencia
	statsHandler := NewStatsHandler(deps.HospitalStats)
	protected.Get("/stats/hospitals", RequireRole(entity.RoleGerente, entity.RoleGerenteAlmacen, entity.RoleCadenaSuministro), statsHandler.HospitalStats)

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.Catalog)
	protected.Get("/products", catalogHandler.ListProducts)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Get("/locations", catalogHandler.ListLocations)
	protected.Get("/locations/:id", catalogHandler.GetLocation)
}

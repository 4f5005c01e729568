// @title                       Suministros API
// @version                     1.0
// @description                 Folios de insumos hospitalarios, inventario y traspasos.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

//go:generate go tool swag init -g main.go -d .,../../internal/interfaces/http,../../internal/application/dto -o ../../docs

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/Suministros-api/internal/application/analytics"
	"github.com/jhoicas/Suministros-api/internal/application/folio"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/application/transfer"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	domainfolio "github.com/jhoicas/Suministros-api/internal/domain/folio"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/Suministros-api/internal/interfaces/http"
	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/jhoicas/Suministros-api/pkg/logger"
	"github.com/jhoicas/Suministros-api/pkg/metrics"
	"github.com/jhoicas/Suministros-api/pkg/migrate"
	pkgredis "github.com/jhoicas/Suministros-api/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var catalog *seed.Catalog
	if cfg.DB.SeedFile != "" {
		catalog, err = seed.LoadFile(cfg.DB.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.DB.SeedFile).Msg("catálogo inicial")
		}
	}

	var (
		txRunner inventory.TxRunner
		repos    inventory.TxRepositories
		stats    repository.StatsRepository
	)
	switch cfg.DB.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		if catalog != nil {
			seed.ApplyMemory(store, catalog)
		}
		txRunner = store
		repos = inventory.TxRepositories{
			Inventory: store.Inventory(),
			Movements: store.Movements(),
			Folios:    store.Folios(),
			History:   store.History(),
			Transfers: store.Transfers(),
			Products:  store.Products(),
			Locations: store.Locations(),
		}
		stats = store.Stats()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := migrate.UpFromPool(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Msg("migraciones aplicadas")
		}
		if catalog != nil {
			if err := seed.ApplyPostgres(ctx, pool, catalog); err != nil {
				log.Fatal().Err(err).Msg("sembrar catálogo")
			}
		}
		txRunner = postgres.NewTxRunner(pool)
		repos = postgres.Repositories(pool)
		stats = postgres.NewStatsRepository(pool)
	}

	// Idempotencia opcional: sin Redis las repeticiones se resuelven por la máquina de estados.
	var idem pkgredis.IdempotencyStore
	if cfg.Redis.Enabled() {
		rdb, err := pkgredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = rdb
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWorkflowMetrics(reg)

	machine := domainfolio.NewMachine(domainfolio.Options{
		SupervisorFromPending: cfg.Workflow.SupervisorFromPending,
	})

	app := httpRouter.NewApp(cfg.App.Name, log)
	// Swagger UI en local: http://localhost:<port>/docs
	httpRouter.UseSwagger(app, cfg.HTTP.SwaggerFile, log)
	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateFolio:     folio.NewCreateFolioUseCase(txRunner, repos.Inventory, repos.Products, repos.Locations, log),
		TransitionFolio: folio.NewTransitionUseCase(txRunner, machine, m, log),
		DeliverFolio:    folio.NewDeliverFolioUseCase(txRunner, machine, m, log),
		FolioQuery:      folio.NewQueryUseCase(repos.Folios, repos.History),
		Inventory:       inventory.NewAdjustInventoryUseCase(txRunner, repos.Inventory, repos.Movements, repos.Products, repos.Locations, m, log),
		Replenishment:   inventory.NewReplenishmentUseCase(repos.Inventory, repos.Locations),
		Transfers:       transfer.NewUseCase(txRunner, repos.Transfers, repos.Products, repos.Locations, m, log),
		Catalog:         usecase.NewCatalogUseCase(repos.Products, repos.Locations),
		HospitalStats:   analytics.NewHospitalStatsUseCase(stats, repos.Locations),
		JWTSecret:       cfg.JWT.Secret,
		Idempotency:     idem,
		IdempotencyTTL:  cfg.Redis.IdempotencyTTL,
		Gatherer:        reg,
		Logger:          log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

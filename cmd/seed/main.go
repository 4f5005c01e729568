// seed carga en PostgreSQL un catálogo de hospitales, almacenes, insumos y existencias iniciales.
//
// Uso: go run ./cmd/seed [ruta/catalog.json]
// Por defecto busca catalog.json en el directorio actual.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/seed"
	"github.com/jhoicas/Suministros-api/pkg/config"
)

func main() {
	path := "catalog.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	catalog, err := seed.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed.ApplyPostgres(ctx, pool, catalog); err != nil {
		fmt.Fprintf(os.Stderr, "Sembrar catálogo: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sembrado %s: %d ubicaciones, %d insumos, %d existencias\n",
		path, len(catalog.Locations), len(catalog.Products), len(catalog.Inventory))
}

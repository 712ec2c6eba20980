// seed crea las bodegas y elementos del catálogo en la base de datos. Es idempotente.
//
// Uso: go run ./cmd/seed [-storage "Bodega Norte"]... [-element "Tapa Roja:raw"]...
// Los códigos de los registros adicionales se derivan del nombre.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/infrastructure/postgres"
	"github.com/aguahielo/movimientos-api/pkg/config"
	"github.com/aguahielo/movimientos-api/pkg/logger"
	"github.com/aguahielo/movimientos-api/pkg/slug"
)

type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	var storageNames, elementArgs listFlag
	flag.Var(&storageNames, "storage", "nombre de bodega adicional (repetible)")
	flag.Var(&elementArgs, "element", "elemento adicional \"Nombre:tipo\" con tipo raw|product|tool (repetible)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	storages, elements, err := parseExtras(storageNames, elementArgs)
	if err != nil {
		log.Fatal().Err(err).Msg("argumentos inválidos")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var res inventory.SeedResult
	err = postgres.NewTxRunner(pool).Run(ctx, func(repos inventory.Repositories) (err error) {
		res, err = inventory.SeedCatalog(ctx, repos, storages, elements)
		return err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed de catálogo")
	}
	log.Info().Int("storages", res.Storages).Int("elements", res.Elements).Msg("seed completado")
}

func parseExtras(storageNames, elementArgs []string) ([]entity.Storage, []entity.InventoryElement, error) {
	storages := make([]entity.Storage, 0, len(storageNames))
	for _, name := range storageNames {
		code, err := slug.Make(name)
		if err != nil || code == "" {
			return nil, nil, fmt.Errorf("nombre de bodega inválido %q", name)
		}
		storages = append(storages, entity.Storage{Code: code, Name: strings.TrimSpace(name)})
	}

	elements := make([]entity.InventoryElement, 0, len(elementArgs))
	for _, arg := range elementArgs {
		name, typ, ok := strings.Cut(arg, ":")
		if !ok {
			typ = string(entity.ElementTypeRaw)
		}
		t := entity.ElementType(strings.TrimSpace(typ))
		if !t.Valid() {
			return nil, nil, fmt.Errorf("tipo de elemento inválido %q", typ)
		}
		code, err := slug.Make(name)
		if err != nil || code == "" {
			return nil, nil, fmt.Errorf("nombre de elemento inválido %q", name)
		}
		elements = append(elements, entity.InventoryElement{Code: code, Name: strings.TrimSpace(name), Type: t})
	}
	return storages, elements, nil
}

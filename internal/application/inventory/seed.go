package inventory

import (
	"context"
	"fmt"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	domaininv "github.com/aguahielo/movimientos-api/internal/domain/inventory"
)

// SeedResult conteo de filas creadas por SeedCatalog.
type SeedResult struct {
	Storages int
	Elements int
}

// SeedCatalog crea en los registros las bodegas y elementos que las recetas referencian y
// que aún no existen. Es idempotente.
func SeedCatalog(ctx context.Context, repos Repositories, extraStorages []entity.Storage, extraElements []entity.InventoryElement) (SeedResult, error) {
	var res SeedResult

	storages := make([]entity.Storage, 0, len(domaininv.Storages)+len(extraStorages))
	for _, s := range domaininv.Storages {
		storages = append(storages, entity.Storage{Code: string(s.Code), Name: s.Name})
	}
	storages = append(storages, extraStorages...)
	for _, s := range storages {
		existing, err := repos.Storages.GetByCode(ctx, s.Code)
		if err != nil {
			return res, fmt.Errorf("seed storage %s: %w", s.Code, err)
		}
		if existing != nil {
			continue
		}
		s := s
		if err := repos.Storages.Create(ctx, &s); err != nil {
			return res, fmt.Errorf("seed storage %s: %w", s.Code, err)
		}
		res.Storages++
	}

	elements := make([]entity.InventoryElement, 0, len(domaininv.Elements)+len(extraElements))
	for _, e := range domaininv.Elements {
		elements = append(elements, entity.InventoryElement{Code: string(e.Code), Name: e.Name, Type: e.Type})
	}
	elements = append(elements, extraElements...)
	for _, e := range elements {
		existing, err := repos.Elements.GetByCode(ctx, e.Code)
		if err != nil {
			return res, fmt.Errorf("seed element %s: %w", e.Code, err)
		}
		if existing != nil {
			continue
		}
		e := e
		if err := repos.Elements.Create(ctx, &e); err != nil {
			return res, fmt.Errorf("seed element %s: %w", e.Code, err)
		}
		res.Elements++
	}
	return res, nil
}

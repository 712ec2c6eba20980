package repository

import (
	"context"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia del ledger (solo inserción).
type InventoryMovementRepository interface {
	// Create inserta la fila y completa ID y CreatedAt.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// List devuelve la página pedida y el total de filas que cumplen el filtro.
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.InventoryMovement, int, error)
}

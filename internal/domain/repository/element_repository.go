package repository

import (
	"context"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// ElementRepository define el puerto de persistencia para el registro de elementos de inventario.
type ElementRepository interface {
	Create(ctx context.Context, element *entity.InventoryElement) error
	GetByCode(ctx context.Context, code string) (*entity.InventoryElement, error)
	// List devuelve los elementos no borrados ordenados por código.
	List(ctx context.Context) ([]*entity.InventoryElement, error)
}

package repository

import (
	"context"
	"time"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas usado por la integración con inventario.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	// GetForUpdate obtiene la venta y bloquea la fila. nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	MarkDeleted(ctx context.Context, id, deletedBy string, at time.Time) error
}

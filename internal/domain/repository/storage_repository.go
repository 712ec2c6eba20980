package repository

import (
	"context"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// StorageRepository define el puerto de persistencia para el registro de bodegas.
type StorageRepository interface {
	Create(ctx context.Context, storage *entity.Storage) error
	GetByCode(ctx context.Context, code string) (*entity.Storage, error)
	// List devuelve las bodegas no borradas ordenadas por código.
	List(ctx context.Context) ([]*entity.Storage, error)
}

package repository

import (
	"context"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// StorageStateRepository define el puerto para leer/actualizar la cantidad por bodega+elemento.
// Usado dentro de transacciones para garantizar consistencia.
type StorageStateRepository interface {
	// GetForUpdate obtiene el estado y bloquea la fila (SELECT FOR UPDATE). nil si el par no existe.
	GetForUpdate(ctx context.Context, storageID, elementID int64) (*entity.StorageState, error)
	// LockOrCreate como GetForUpdate, pero crea el par en cero si no existe. Dos créditos
	// concurrentes al mismo par nuevo quedan serializados sobre la misma fila.
	LockOrCreate(ctx context.Context, storageID, elementID int64) (*entity.StorageState, error)
	// Upsert escribe la cantidad del par y avanza el token de versión.
	Upsert(ctx context.Context, state *entity.StorageState) error
	List(ctx context.Context) ([]*entity.StorageStateView, error)
	// Version devuelve el token de versión del estado. Crece con cada commit que escribe algún
	// par; solo se compara por igualdad.
	Version(ctx context.Context) (int64, error)
}

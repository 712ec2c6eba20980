package postgres

import (
	"context"
	"fmt"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

var _ repository.StorageStateRepository = (*StorageStateRepo)(nil)

// StorageStateRepo implementación de StorageStateRepository sobre PostgreSQL (usable con pool o tx).
// Cada operación corre en su propio savepoint para que un fallo transitorio pueda reintentarse.
type StorageStateRepo struct {
	q Querier
}

// NewStorageStateRepository construye el adaptador de estado. Pasar pool o tx (Querier).
func NewStorageStateRepository(q Querier) *StorageStateRepo {
	return &StorageStateRepo{q: q}
}

// GetForUpdate obtiene el estado y bloquea la fila para update (SELECT FOR UPDATE). nil si no existe.
func (r *StorageStateRepo) GetForUpdate(ctx context.Context, storageID, elementID int64) (*entity.StorageState, error) {
	query := `
		SELECT storage_id, element_id, quantity, updated_at
		FROM storage_states WHERE storage_id = $1 AND element_id = $2
		FOR UPDATE`
	var out *entity.StorageState
	err := step(ctx, r.q, func(q Querier) error {
		var s entity.StorageState
		err := q.QueryRow(ctx, query, storageID, elementID).Scan(&s.StorageID, &s.ElementID, &s.Quantity, &s.UpdatedAt)
		if err != nil {
			if noRows(err) {
				return nil
			}
			return err
		}
		out = &s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get storage state for update: %w", err)
	}
	return out, nil
}

// LockOrCreate inserta el par en cero si no existe y lo bloquea. El INSERT espera a cualquier
// inserción concurrente del mismo par, así el SELECT siguiente ve la fila confirmada.
func (r *StorageStateRepo) LockOrCreate(ctx context.Context, storageID, elementID int64) (*entity.StorageState, error) {
	insert := `
		INSERT INTO storage_states (storage_id, element_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (storage_id, element_id) DO NOTHING`
	query := `
		SELECT storage_id, element_id, quantity, updated_at
		FROM storage_states WHERE storage_id = $1 AND element_id = $2
		FOR UPDATE`
	var s entity.StorageState
	err := step(ctx, r.q, func(q Querier) error {
		if _, err := q.Exec(ctx, insert, storageID, elementID); err != nil {
			return err
		}
		return q.QueryRow(ctx, query, storageID, elementID).Scan(&s.StorageID, &s.ElementID, &s.Quantity, &s.UpdatedAt)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: bodega %d o elemento %d", domain.ErrNotFound, storageID, elementID)
		}
		return nil, fmt.Errorf("lock or create storage state: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad del par (bodega, elemento) y le asigna una versión nueva.
func (r *StorageStateRepo) Upsert(ctx context.Context, s *entity.StorageState) error {
	query := `
		INSERT INTO storage_states (storage_id, element_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (storage_id, element_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at,
		              version = nextval('storage_state_version_seq')`
	err := step(ctx, r.q, func(q Querier) error {
		_, err := q.Exec(ctx, query, s.StorageID, s.ElementID, s.Quantity, s.UpdatedAt)
		return err
	})
	if err != nil {
		switch {
		case isCheckViolation(err):
			return fmt.Errorf("%w: cantidad negativa en (%d,%d)", domain.ErrInvariantViolation, s.StorageID, s.ElementID)
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: bodega %d o elemento %d", domain.ErrNotFound, s.StorageID, s.ElementID)
		}
		return fmt.Errorf("upsert storage state: %w", err)
	}
	return nil
}

// List devuelve todos los estados con códigos y nombres de bodega y elemento.
func (r *StorageStateRepo) List(ctx context.Context) ([]*entity.StorageStateView, error) {
	query := `
		SELECT ss.storage_id, ss.element_id, ss.quantity, ss.updated_at,
		       s.code, s.name, e.code, e.name
		FROM storage_states ss
		JOIN storages s ON s.id = ss.storage_id
		JOIN inventory_elements e ON e.id = ss.element_id
		ORDER BY s.code, e.code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list storage states: %w", err)
	}
	defer rows.Close()
	var list []*entity.StorageStateView
	for rows.Next() {
		var v entity.StorageStateView
		if err := rows.Scan(&v.StorageID, &v.ElementID, &v.Quantity, &v.UpdatedAt,
			&v.StorageCode, &v.StorageName, &v.ElementCode, &v.ElementName); err != nil {
			return nil, fmt.Errorf("scan storage state: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// Version devuelve el token de versión: la suma de las versiones de todos los pares. Quien
// escribe un par ya tiene su fila bloqueada, así que el valor nuevo supera al anterior y cada
// commit con escrituras hace crecer la suma sin pasar por una fila compartida.
func (r *StorageStateRepo) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(sum(version), 0)::BIGINT FROM storage_states`).Scan(&v); err != nil {
		return 0, fmt.Errorf("get state version: %w", err)
	}
	return v, nil
}

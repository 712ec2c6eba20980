package postgres

import (
	"context"
	"fmt"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

var _ repository.StorageRepository = (*StorageRepo)(nil)

// StorageRepo implementación del puerto StorageRepository sobre PostgreSQL.
type StorageRepo struct {
	q Querier
}

// NewStorageRepository construye el adaptador de persistencia para bodegas. Pasar pool o tx (Querier).
func NewStorageRepository(q Querier) *StorageRepo {
	return &StorageRepo{q: q}
}

// Create persiste una nueva bodega y completa su ID.
func (r *StorageRepo) Create(ctx context.Context, s *entity.Storage) error {
	query := `
		INSERT INTO storages (code, name)
		VALUES ($1, $2)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, s.Code, s.Name).Scan(&s.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bodega %q", domain.ErrConflict, s.Code)
		}
		return fmt.Errorf("insert storage: %w", err)
	}
	return nil
}

// GetByCode obtiene una bodega activa por código.
func (r *StorageRepo) GetByCode(ctx context.Context, code string) (*entity.Storage, error) {
	query := `
		SELECT id, code, name, deleted_at
		FROM storages WHERE code = $1 AND deleted_at IS NULL`
	var s entity.Storage
	err := r.q.QueryRow(ctx, query, code).Scan(&s.ID, &s.Code, &s.Name, &s.DeletedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage: %w", err)
	}
	return &s, nil
}

// List lista las bodegas activas ordenadas por código.
func (r *StorageRepo) List(ctx context.Context) ([]*entity.Storage, error) {
	query := `
		SELECT id, code, name, deleted_at
		FROM storages WHERE deleted_at IS NULL
		ORDER BY code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list storages: %w", err)
	}
	defer rows.Close()
	var list []*entity.Storage
	for rows.Next() {
		var s entity.Storage
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan storage: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

var _ repository.ElementRepository = (*ElementRepo)(nil)

// ElementRepo implementación del puerto ElementRepository sobre PostgreSQL.
type ElementRepo struct {
	q Querier
}

// NewElementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewElementRepository(q Querier) *ElementRepo {
	return &ElementRepo{q: q}
}

// Create persiste un nuevo elemento y completa su ID.
func (r *ElementRepo) Create(ctx context.Context, e *entity.InventoryElement) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, e.Type)
	}
	query := `
		INSERT INTO inventory_elements (code, name, type)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, e.Code, e.Name, string(e.Type)).Scan(&e.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: elemento %q", domain.ErrConflict, e.Code)
		}
		return fmt.Errorf("insert element: %w", err)
	}
	return nil
}

// GetByCode obtiene un elemento activo por código.
func (r *ElementRepo) GetByCode(ctx context.Context, code string) (*entity.InventoryElement, error) {
	query := `
		SELECT id, code, name, type, deleted_at
		FROM inventory_elements WHERE code = $1 AND deleted_at IS NULL`
	var e entity.InventoryElement
	err := r.q.QueryRow(ctx, query, code).Scan(&e.ID, &e.Code, &e.Name, &e.Type, &e.DeletedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get element: %w", err)
	}
	return &e, nil
}

// List lista los elementos activos ordenados por código.
func (r *ElementRepo) List(ctx context.Context) ([]*entity.InventoryElement, error) {
	query := `
		SELECT id, code, name, type, deleted_at
		FROM inventory_elements WHERE deleted_at IS NULL
		ORDER BY code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryElement
	for rows.Next() {
		var e entity.InventoryElement
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Type, &e.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, transaction_id, storage_from_id, storage_to_id, element_from_id, element_to_id,
		quantity_from, quantity_to, cause, created_by, rollback, sale_id, created_at, deleted_at, deleted_by`

// Create persiste un movimiento de inventario y completa ID y CreatedAt.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	query := `
		INSERT INTO inventory_movements (transaction_id, storage_from_id, storage_to_id, element_from_id, element_to_id,
			quantity_from, quantity_to, cause, created_by, rollback, sale_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, now()))
		RETURNING id, created_at`
	var createdAt any
	if !m.CreatedAt.IsZero() {
		createdAt = m.CreatedAt
	}
	err := step(ctx, r.q, func(q Querier) error {
		return q.QueryRow(ctx, query,
			m.TransactionID, m.StorageFromID, m.StorageToID, m.ElementFromID, m.ElementToID,
			m.QuantityFrom, m.QuantityTo, string(m.Cause), m.CreatedBy, m.Rollback, m.SaleID, createdAt,
		).Scan(&m.ID, &m.CreatedAt)
	})
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: referencia de movimiento: %v", domain.ErrNotFound, err)
		case isCheckViolation(err):
			return fmt.Errorf("%w: movimiento rechazado por el esquema: %v", domain.ErrInvariantViolation, err)
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// movementOrder columnas permitidas para ORDER BY.
var movementOrder = map[string]string{
	"id":            "id",
	"created_at":    "created_at",
	"quantity_from": "quantity_from",
}

// List lista movimientos con filtros; devuelve la página y el total.
func (r *InventoryMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.IncludeVoided {
		where = append(where, "deleted_at IS NULL")
	}
	if f.From != nil {
		where = append(where, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "created_at <= "+arg(*f.To))
	}
	if f.Cause != nil {
		where = append(where, "cause = "+arg(string(*f.Cause)))
	}
	if f.ElementID != nil {
		p := arg(*f.ElementID)
		where = append(where, fmt.Sprintf("(element_from_id = %s OR element_to_id = %s)", p, p))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT count(*) FROM inventory_movements"+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	col, ok := movementOrder[f.Sort]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	query := "SELECT " + movementColumns + " FROM inventory_movements" + cond +
		fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryMovement, 0)
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.StorageFromID, &m.StorageToID, &m.ElementFromID, &m.ElementToID,
			&m.QuantityFrom, &m.QuantityTo, &m.Cause, &m.CreatedBy, &m.Rollback, &m.SaleID,
			&m.CreatedAt, &m.DeletedAt, &m.DeletedBy); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste una venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, product_code, variant_code, quantity, created_by, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.ID, s.ProductCode, s.VariantCode, s.Quantity, s.CreatedBy, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: venta %s", domain.ErrConflict, s.ID)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetForUpdate obtiene la venta y bloquea la fila (SELECT FOR UPDATE). nil si no existe.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	query := `
		SELECT id, product_code, COALESCE(variant_code, ''), quantity, created_by, created_at, deleted, deleted_at, deleted_by
		FROM sales WHERE id = $1
		FOR UPDATE`
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ProductCode, &s.VariantCode, &s.Quantity, &s.CreatedBy, &s.CreatedAt,
		&s.Deleted, &s.DeletedAt, &s.DeletedBy,
	)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	return &s, nil
}

// MarkDeleted marca la venta como anulada.
func (r *SaleRepo) MarkDeleted(ctx context.Context, id, deletedBy string, at time.Time) error {
	query := `
		UPDATE sales SET deleted = true, deleted_at = $2, deleted_by = $3
		WHERE id = $1 AND deleted = false`
	tag, err := r.q.Exec(ctx, query, id, at, deletedBy)
	if err != nil {
		return fmt.Errorf("mark sale deleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSaleAlreadyVoided
	}
	return nil
}

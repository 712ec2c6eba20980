package postgres

import (
	"context"
	"fmt"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

var _ repository.MeterReadingRepository = (*MeterReadingRepo)(nil)

// MeterReadingRepo implementación de MeterReadingRepository sobre PostgreSQL (usable con pool o tx).
type MeterReadingRepo struct {
	q Querier
}

// NewMeterReadingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMeterReadingRepository(q Querier) *MeterReadingRepo {
	return &MeterReadingRepo{q: q}
}

// Last toma un lock de transacción sobre el contador y devuelve su última lectura. Las lecturas
// concurrentes del mismo contador esperan aquí; con read committed la consulta siguiente ya ve la
// lectura de quien soltó el lock. El lock se libera en el commit o rollback.
func (r *MeterReadingRepo) Last(ctx context.Context, meter string) (*entity.MeterReading, error) {
	lock := `SELECT pg_advisory_xact_lock(hashtext('meter_readings'), hashtext($1))`
	query := `
		SELECT id, meter, value, transaction_id, created_by, created_at
		FROM meter_readings WHERE meter = $1
		ORDER BY id DESC LIMIT 1`
	if _, err := r.q.Exec(ctx, lock, meter); err != nil {
		return nil, fmt.Errorf("lock meter %s: %w", meter, err)
	}
	var m entity.MeterReading
	err := r.q.QueryRow(ctx, query, meter).Scan(&m.ID, &m.Meter, &m.Value, &m.TransactionID, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("last meter reading: %w", err)
	}
	return &m, nil
}

// Create persiste una lectura de contador.
func (r *MeterReadingRepo) Create(ctx context.Context, m *entity.MeterReading) error {
	query := `
		INSERT INTO meter_readings (meter, value, transaction_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, m.Meter, m.Value, m.TransactionID, m.CreatedBy, m.CreatedAt).Scan(&m.ID); err != nil {
		return fmt.Errorf("insert meter reading: %w", err)
	}
	return nil
}

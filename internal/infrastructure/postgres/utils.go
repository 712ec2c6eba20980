package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE de contención transitoria: el paso puede reintentarse tras volver al savepoint.
var transientCodes = map[string]struct{}{
	"55P03": {}, // lock_not_available (lock_timeout)
	"53300": {}, // too_many_connections
}

// SQLSTATE con los que el servidor elige abortar la transacción. Volver al savepoint no sirve:
// los locks tomados antes del savepoint siguen en conflicto, así que se repite la transacción.
var txRetryCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
}

// IsTransient indica si el error de PostgreSQL es una contención transitoria de un paso.
func IsTransient(err error) bool {
	return hasCode(err, transientCodes)
}

// IsTxRetryable indica si la transacción completa debe repetirse.
func IsTxRetryable(err error) bool {
	return hasCode(err, txRetryCodes)
}

func hasCode(err error, codes map[string]struct{}) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := codes[pgErr.Code]
		return ok
	}
	return false
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isCheckViolation verifica si un error es una violación de CHECK (23514).
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// step ejecuta fn dentro de un savepoint (o de una tx propia si q es el pool). Si fn falla se
// vuelve al savepoint y la transacción externa sigue usable, lo que permite reintentar el paso.
func step(ctx context.Context, q Querier, fn func(q Querier) error) error {
	sp, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

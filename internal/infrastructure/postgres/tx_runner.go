package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

const (
	defaultTxAttempts = 3
	defaultTxBackoff  = 20 * time.Millisecond
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Una transacción que el
// servidor aborta por deadlock o fallo de serialización se repite completa.
type TxRunner struct {
	pool     *pgxpool.Pool
	attempts int
	backoff  time.Duration
}

// TxOption ajusta el TxRunner.
type TxOption func(*TxRunner)

// WithTxRetry fija cuántas veces se ejecuta como máximo una transacción abortada y la espera
// lineal entre intentos.
func WithTxRetry(attempts int, backoff time.Duration) TxOption {
	return func(r *TxRunner) {
		if attempts >= 1 {
			r.attempts = attempts
		}
		if backoff >= 0 {
			r.backoff = backoff
		}
	}
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts ...TxOption) *TxRunner {
	r := &TxRunner{pool: pool, attempts: defaultTxAttempts, backoff: defaultTxBackoff}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// repositories construye todos los repositorios sobre el mismo Querier.
func repositories(q Querier) inventory.Repositories {
	return inventory.Repositories{
		Storages:  NewStorageRepository(q),
		Elements:  NewElementRepository(q),
		States:    NewStorageStateRepository(q),
		Movements: NewInventoryMovementRepository(q),
		Sales:     NewSaleRepository(q),
		Meters:    NewMeterReadingRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// fn puede ejecutarse más de una vez: si la transacción se aborta por deadlock o fallo de
// serialización se descarta entera y fn corre de nuevo en una transacción nueva.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repositories) error) error {
	return r.retry(ctx, func() error { return r.runOnce(ctx, fn) })
}

func (r *TxRunner) retry(ctx context.Context, run func() error) error {
	for attempt := 1; ; attempt++ {
		err := run()
		if err == nil || !IsTxRetryable(err) {
			return err
		}
		if attempt >= r.attempts {
			return fmt.Errorf("%w tras %d transacciones: %w", domain.ErrStoreBusy, attempt, err)
		}
		t := time.NewTimer(time.Duration(attempt) * r.backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos inventory.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(repositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Reader repositorios sobre el pool, fuera de transacción.
func (r *TxRunner) Reader() inventory.Repositories {
	return repositories(r.pool)
}

package postgres

import "context"

// RetryTx expone el bucle de reintento de Run sin abrir transacciones.
func (r *TxRunner) RetryTx(ctx context.Context, run func() error) error {
	return r.retry(ctx, run)
}

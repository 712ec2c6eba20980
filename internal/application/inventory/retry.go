package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aguahielo/movimientos-api/internal/domain"
)

// RetryPolicy reintento acotado de un paso de escritura ante contención transitoria del almacén.
// Solo reintenta errores que IsTransient reconoce; los rechazos de dominio se devuelven tal cual.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // espera lineal: intento * Backoff
	IsTransient func(error) bool
	OnRetry     func(attempt int, err error)
}

// Do ejecuta op hasta MaxAttempts veces. Al agotar los intentos devuelve un error que
// envuelve domain.ErrStoreBusy y el último error del almacén.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil || !p.retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if err := sleep(ctx, time.Duration(attempt)*p.Backoff); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w tras %d intentos: %w", domain.ErrStoreBusy, attempts, err)
}

func (p RetryPolicy) retryable(err error) bool {
	var notEnough *domain.NotEnoughInSourceError
	if errors.As(err, &notEnough) {
		return false
	}
	return p.IsTransient != nil && p.IsTransient(err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

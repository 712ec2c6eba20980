package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain"
)

var errTransient = errors.New("writer busy")

func transientOnly(err error) bool { return errors.Is(err, errTransient) }

func TestRetryPolicy_ReintentaHastaExito(t *testing.T) {
	calls, retries := 0, 0
	p := inventory.RetryPolicy{
		MaxAttempts: 3,
		IsTransient: transientOnly,
		OnRetry:     func(int, error) { retries++ },
	}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestRetryPolicy_AgotaIntentos(t *testing.T) {
	calls := 0
	p := inventory.RetryPolicy{MaxAttempts: 4, IsTransient: transientOnly}
	err := p.Do(context.Background(), func() error {
		calls++
		return errTransient
	})
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, domain.ErrStoreBusy)
	assert.ErrorIs(t, err, errTransient)
}

func TestRetryPolicy_NoReintentaErroresPermanentes(t *testing.T) {
	calls := 0
	boom := errors.New("syntax error")
	p := inventory.RetryPolicy{MaxAttempts: 5, IsTransient: transientOnly}
	err := p.Do(context.Background(), func() error {
		calls++
		return boom
	})
	assert.Equal(t, 1, calls)
	assert.Same(t, boom, err)
}

func TestRetryPolicy_NuncaReintentaNotEnoughInSource(t *testing.T) {
	calls := 0
	p := inventory.RetryPolicy{
		MaxAttempts: 5,
		IsTransient: func(error) bool { return true },
	}
	err := p.Do(context.Background(), func() error {
		calls++
		return &domain.NotEnoughInSourceError{Element: domain.Ref{Code: "bolsa-360"}}
	})
	assert.Equal(t, 1, calls)
	var ne *domain.NotEnoughInSourceError
	require.True(t, errors.As(err, &ne))
	assert.NotErrorIs(t, err, domain.ErrStoreBusy)
}

func TestRetryPolicy_RespetaCancelacion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := inventory.RetryPolicy{MaxAttempts: 5, Backoff: time.Second, IsTransient: transientOnly}
	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		cancel()
		return errTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

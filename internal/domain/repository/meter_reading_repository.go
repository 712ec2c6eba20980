package repository

import (
	"context"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// MeterReadingRepository define el puerto de las lecturas de contador (append-only).
type MeterReadingRepository interface {
	// Last devuelve la última lectura del contador, nil si no hay ninguna. Dentro de una
	// transacción serializa a los demás lectores del mismo contador hasta el commit.
	Last(ctx context.Context, meter string) (*entity.MeterReading, error)
	Create(ctx context.Context, reading *entity.MeterReading) error
}

package notify

import (
	"context"
	"errors"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// Multi publica en todos los notifiers; un fallo no impide los demás.
type Multi []inventory.Notifier

// Publish devuelve la unión de errores.
func (m Multi) Publish(ctx context.Context, ev entity.StateChangedEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// ChangeFeed publica los StorageState tocados por una acción ya confirmada.
// Una falla de publicación se registra y se cuenta; nunca se devuelve al caller.
type ChangeFeed struct {
	notifier Notifier
	observer Observer
	log      zerolog.Logger
}

// NewChangeFeed construye el publicador post-commit.
func NewChangeFeed(notifier Notifier, observer Observer, log zerolog.Logger) *ChangeFeed {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &ChangeFeed{notifier: notifier, observer: observer, log: log}
}

// Committed emite un evento por cada par tocado. Llamar solo después del commit.
func (f *ChangeFeed) Committed(ctx context.Context, applied *Applied) {
	if applied == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, st := range applied.States {
		ev := entity.StateChangedEvent{
			StorageID: st.StorageID,
			ElementID: st.ElementID,
			Quantity:  st.Quantity,
			Version:   applied.Version,
			UpdatedAt: st.UpdatedAt,
		}
		if err := f.notifier.Publish(ctx, ev); err != nil {
			f.observer.NotifyFailed()
			f.log.Warn().Err(err).
				Int64("storage_id", st.StorageID).
				Int64("element_id", st.ElementID).
				Msg("no se pudo publicar el cambio de estado")
		}
	}
}

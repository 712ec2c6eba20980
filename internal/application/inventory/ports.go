package inventory

import (
	"context"

	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

// Repositories agrupa los repositorios atados a una misma transacción (unit of work).
type Repositories struct {
	Storages  repository.StorageRepository
	Elements  repository.ElementRepository
	States    repository.StorageStateRepository
	Movements repository.InventoryMovementRepository
	Sales     repository.SaleRepository
	Meters    repository.MeterReadingRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error nada persiste.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
	// Reader repositorios fuera de transacción para consultas.
	Reader() Repositories
}

// Notifier publica cambios de StorageState ya confirmados. Es una pista de invalidación;
// un error de publicación nunca revierte la acción.
type Notifier interface {
	Publish(ctx context.Context, event entity.StateChangedEvent) error
}

// Observer recibe las métricas del motor de movimientos.
type Observer interface {
	MovementApplied(cause entity.Cause)
	ActionRejected(reason string)
	StoreRetried()
	NotifyFailed()
}

// NopObserver Observer que no hace nada.
type NopObserver struct{}

func (NopObserver) MovementApplied(entity.Cause) {}
func (NopObserver) ActionRejected(string)        {}
func (NopObserver) StoreRetried()                {}
func (NopObserver) NotifyFailed()                {}

// NopNotifier Notifier que descarta los eventos.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, entity.StateChangedEvent) error { return nil }

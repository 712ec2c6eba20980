package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// Engine motor de movimientos: aplica transferencias elementales dentro de la transacción del caller.
// Cada paso contra el almacén pasa por la RetryPolicy.
type Engine struct {
	catalog  *Catalog
	retry    RetryPolicy
	observer Observer
	now      func() time.Time
}

// NewEngine construye el motor.
func NewEngine(catalog *Catalog, retry RetryPolicy, observer Observer) *Engine {
	if observer == nil {
		observer = NopObserver{}
	}
	onRetry := retry.OnRetry
	retry.OnRetry = func(attempt int, err error) {
		observer.StoreRetried()
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}
	return &Engine{catalog: catalog, retry: retry, observer: observer, now: time.Now}
}

// Applied resultado de aplicar un grupo de transferencias en una transacción.
type Applied struct {
	Movements []*entity.InventoryMovement
	// States estado final de cada par tocado, sin duplicados y en orden de primer toque.
	States  []entity.StorageState
	Version int64
}

func normalize(req entity.MovementRequest) (entity.MovementRequest, error) {
	if req.QuantityTo.IsZero() {
		req.QuantityTo = req.QuantityFrom
	}
	switch {
	case req.CreatedBy == "":
		return req, domain.ErrUnauthorized
	case !req.QuantityFrom.IsPositive() || !req.QuantityTo.IsPositive():
		return req, fmt.Errorf("%w: las cantidades deben ser positivas", domain.ErrInvalidInput)
	case req.StorageFromID == nil && req.StorageToID == nil:
		return req, fmt.Errorf("%w: origen o destino requerido", domain.ErrInvalidInput)
	case req.ElementFromID <= 0 || req.ElementToID <= 0:
		return req, fmt.Errorf("%w: elemento requerido", domain.ErrInvalidInput)
	case !req.Cause.Valid():
		return req, fmt.Errorf("%w: causa %q", domain.ErrInvalidInput, req.Cause)
	}
	for _, q := range []decimal.Decimal{req.QuantityFrom, req.QuantityTo} {
		if err := entity.CheckQuantity(q); err != nil {
			return req, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	return req, nil
}

// Apply aplica una transferencia elemental: debita el origen (con bloqueo de fila),
// acredita el destino creando el par si no existe y agrega la fila al ledger.
// Devuelve los estados tocados para notificar tras el commit.
func (e *Engine) Apply(ctx context.Context, repos Repositories, req entity.MovementRequest) ([]entity.StorageState, *entity.InventoryMovement, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, nil, err
	}
	now := e.now()
	var touched []entity.StorageState

	if req.StorageFromID != nil {
		var src *entity.StorageState
		if err := e.retry.Do(ctx, func() (err error) {
			src, err = repos.States.GetForUpdate(ctx, *req.StorageFromID, req.ElementFromID)
			return err
		}); err != nil {
			return nil, nil, err
		}
		available := decimal.Zero
		if src != nil {
			available = src.Quantity
		}
		if src == nil || available.LessThan(req.QuantityFrom) {
			e.observer.ActionRejected("not_enough_in_source")
			return nil, nil, &domain.NotEnoughInSourceError{
				Storage:   e.catalog.StorageRef(ctx, *req.StorageFromID),
				Element:   e.catalog.ElementRef(ctx, req.ElementFromID),
				Available: available,
				Requested: req.QuantityFrom,
			}
		}
		src.Quantity = src.Quantity.Sub(req.QuantityFrom)
		src.UpdatedAt = now
		if err := e.retry.Do(ctx, func() error { return repos.States.Upsert(ctx, src) }); err != nil {
			return nil, nil, err
		}
		touched = append(touched, *src)
	}

	if req.StorageToID != nil {
		var dst *entity.StorageState
		if err := e.retry.Do(ctx, func() (err error) {
			dst, err = repos.States.LockOrCreate(ctx, *req.StorageToID, req.ElementToID)
			return err
		}); err != nil {
			return nil, nil, err
		}
		dst.Quantity = dst.Quantity.Add(req.QuantityTo)
		dst.UpdatedAt = now
		if err := e.retry.Do(ctx, func() error { return repos.States.Upsert(ctx, dst) }); err != nil {
			return nil, nil, err
		}
		touched = append(touched, *dst)
	}

	mov := &entity.InventoryMovement{
		TransactionID: req.TransactionID,
		StorageFromID: req.StorageFromID,
		StorageToID:   req.StorageToID,
		ElementFromID: req.ElementFromID,
		ElementToID:   req.ElementToID,
		QuantityFrom:  req.QuantityFrom,
		QuantityTo:    req.QuantityTo,
		Cause:         req.Cause,
		CreatedBy:     req.CreatedBy,
		Rollback:      req.Rollback,
		SaleID:        req.SaleID,
		CreatedAt:     now,
	}
	if err := e.retry.Do(ctx, func() error { return repos.Movements.Create(ctx, mov) }); err != nil {
		return nil, nil, err
	}
	e.observer.MovementApplied(req.Cause)
	return touched, mov, nil
}

// ApplyAll aplica las transferencias en orden dentro de la misma transacción e incrementa
// el token de versión del estado. Cualquier error aborta el grupo completo.
func (e *Engine) ApplyAll(ctx context.Context, repos Repositories, reqs []entity.MovementRequest) (*Applied, error) {
	out := &Applied{}
	index := make(map[entity.StateKey]int)
	for _, req := range reqs {
		states, mov, err := e.Apply(ctx, repos, req)
		if err != nil {
			return nil, err
		}
		out.Movements = append(out.Movements, mov)
		for _, st := range states {
			if i, ok := index[st.Key()]; ok {
				out.States[i] = st
				continue
			}
			index[st.Key()] = len(out.States)
			out.States = append(out.States, st)
		}
	}
	if len(out.States) == 0 {
		return out, nil
	}
	if err := e.retry.Do(ctx, func() (err error) {
		out.Version, err = repos.States.Version(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return out, nil
}

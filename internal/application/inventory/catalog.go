package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	domaininv "github.com/aguahielo/movimientos-api/internal/domain/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

// inputReloadEvery intervalo mínimo entre recargas provocadas por códigos que envía el usuario.
const inputReloadEvery = 5 * time.Second

// Catalog registro código↔id de bodegas y elementos, cacheado en memoria.
// Los registros son datos de referencia. Un código de receta desconocido fuerza una recarga y,
// si sigue sin aparecer, es *domain.UnknownReferenceError. Un código enviado por el usuario que
// no existe es domain.ErrNotFound.
type Catalog struct {
	storageRepo repository.StorageRepository
	elementRepo repository.ElementRepository
	log         zerolog.Logger
	now         func() time.Time

	mu             sync.RWMutex
	loaded         bool
	loadedAt       time.Time
	storagesByCode map[string]*entity.Storage
	storagesByID   map[int64]*entity.Storage
	elementsByCode map[string]*entity.InventoryElement
	elementsByID   map[int64]*entity.InventoryElement
}

// NewCatalog construye el catálogo sobre los repositorios de referencia (fuera de transacción).
func NewCatalog(storageRepo repository.StorageRepository, elementRepo repository.ElementRepository, log zerolog.Logger) *Catalog {
	return &Catalog{storageRepo: storageRepo, elementRepo: elementRepo, log: log, now: time.Now}
}

// Reload vuelve a leer los registros.
func (c *Catalog) Reload(ctx context.Context) error {
	storages, err := c.storageRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load storages: %w", err)
	}
	elements, err := c.elementRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load elements: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.storagesByCode = make(map[string]*entity.Storage, len(storages))
	c.storagesByID = make(map[int64]*entity.Storage, len(storages))
	for _, s := range storages {
		c.storagesByCode[s.Code] = s
		c.storagesByID[s.ID] = s
	}
	c.elementsByCode = make(map[string]*entity.InventoryElement, len(elements))
	c.elementsByID = make(map[int64]*entity.InventoryElement, len(elements))
	for _, e := range elements {
		c.elementsByCode[e.Code] = e
		c.elementsByID[e.ID] = e
	}
	c.loaded = true
	c.loadedAt = c.now()
	return nil
}

// lookup ejecuta find sobre el cache; si falla recarga una vez y reintenta.
func (c *Catalog) lookup(ctx context.Context, find func() bool) (bool, error) {
	c.mu.RLock()
	ok := c.loaded && find()
	c.mu.RUnlock()
	if ok {
		return true, nil
	}
	if err := c.Reload(ctx); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return find(), nil
}

// lookupInput como lookup, pero la recarga se limita a una cada inputReloadEvery para que
// códigos mal escritos no relean los registros en cada petición.
func (c *Catalog) lookupInput(ctx context.Context, find func() bool) (bool, error) {
	c.mu.RLock()
	ok := c.loaded && find()
	fresh := c.loaded && c.now().Sub(c.loadedAt) < inputReloadEvery
	c.mu.RUnlock()
	if ok || fresh {
		return ok, nil
	}
	return c.lookup(ctx, find)
}

// RequireStorage resuelve una bodega indicada en la petición.
func (c *Catalog) RequireStorage(ctx context.Context, code string) (*entity.Storage, error) {
	var s *entity.Storage
	ok, err := c.lookupInput(ctx, func() bool { s = c.storagesByCode[code]; return s != nil })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: bodega %q", domain.ErrNotFound, code)
	}
	return s, nil
}

// RequireElement resuelve un elemento indicado en la petición.
func (c *Catalog) RequireElement(ctx context.Context, code string) (*entity.InventoryElement, error) {
	var e *entity.InventoryElement
	ok, err := c.lookupInput(ctx, func() bool { e = c.elementsByCode[code]; return e != nil })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: elemento %q", domain.ErrNotFound, code)
	}
	return e, nil
}

func (c *Catalog) unknown(kind, code string) error {
	err := &domain.UnknownReferenceError{Kind: kind, Code: code}
	c.log.Error().Str("kind", kind).Str("code", code).Msg("referencia desconocida en el registro")
	return err
}

// StorageByCode resuelve una bodega por código.
func (c *Catalog) StorageByCode(ctx context.Context, code string) (*entity.Storage, error) {
	var s *entity.Storage
	ok, err := c.lookup(ctx, func() bool { s = c.storagesByCode[code]; return s != nil })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, c.unknown("storage", code)
	}
	return s, nil
}

// ElementByCode resuelve un elemento por código.
func (c *Catalog) ElementByCode(ctx context.Context, code string) (*entity.InventoryElement, error) {
	var e *entity.InventoryElement
	ok, err := c.lookup(ctx, func() bool { e = c.elementsByCode[code]; return e != nil })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, c.unknown("element", code)
	}
	return e, nil
}

// StorageByID resuelve una bodega por id. Devuelve domain.ErrNotFound si no existe.
func (c *Catalog) StorageByID(ctx context.Context, id int64) (*entity.Storage, error) {
	var s *entity.Storage
	ok, err := c.lookup(ctx, func() bool { s = c.storagesByID[id]; return s != nil })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: bodega %d", domain.ErrNotFound, id)
	}
	return s, nil
}

// ElementByID resuelve un elemento por id. Devuelve domain.ErrNotFound si no existe.
func (c *Catalog) ElementByID(ctx context.Context, id int64) (*entity.InventoryElement, error) {
	var e *entity.InventoryElement
	ok, err := c.lookup(ctx, func() bool { e = c.elementsByID[id]; return e != nil })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: elemento %d", domain.ErrNotFound, id)
	}
	return e, nil
}

// StorageRef datos de diagnóstico de una bodega; si no está en el registro solo lleva el id.
func (c *Catalog) StorageRef(ctx context.Context, id int64) domain.Ref {
	if s, err := c.StorageByID(ctx, id); err == nil {
		return domain.Ref{ID: s.ID, Code: s.Code, Name: s.Name}
	}
	return domain.Ref{ID: id}
}

// ElementRef datos de diagnóstico de un elemento; si no está en el registro solo lleva el id.
func (c *Catalog) ElementRef(ctx context.Context, id int64) domain.Ref {
	if e, err := c.ElementByID(ctx, id); err == nil {
		return domain.Ref{ID: e.ID, Code: e.Code, Name: e.Name}
	}
	return domain.Ref{ID: id}
}

func (c *Catalog) storageID(ctx context.Context, code *domaininv.StorageCode) (*int64, error) {
	if code == nil {
		return nil, nil
	}
	s, err := c.StorageByCode(ctx, string(*code))
	if err != nil {
		return nil, err
	}
	id := s.ID
	return &id, nil
}

// Resolve traduce las transferencias de una receta (códigos) a requests del motor (ids).
// Se llama antes de abrir la transacción.
func (c *Catalog) Resolve(ctx context.Context, transfers []domaininv.Transfer, base entity.MovementRequest) ([]entity.MovementRequest, error) {
	out := make([]entity.MovementRequest, 0, len(transfers))
	for _, t := range transfers {
		from, err := c.storageID(ctx, t.StorageFrom)
		if err != nil {
			return nil, err
		}
		to, err := c.storageID(ctx, t.StorageTo)
		if err != nil {
			return nil, err
		}
		elemFrom, err := c.ElementByCode(ctx, string(t.ElementFrom))
		if err != nil {
			return nil, err
		}
		elemTo := elemFrom
		if t.ElementTo != t.ElementFrom {
			if elemTo, err = c.ElementByCode(ctx, string(t.ElementTo)); err != nil {
				return nil, err
			}
		}
		req := base
		req.StorageFromID = from
		req.StorageToID = to
		req.ElementFromID = elemFrom.ID
		req.ElementToID = elemTo.ID
		req.QuantityFrom = t.QuantityFrom
		req.QuantityTo = t.QuantityTo
		req.Cause = t.Cause
		req.Rollback = t.Rollback
		out = append(out, req)
	}
	return out, nil
}

// Package memory implementa el almacén de inventario en memoria: cada transacción trabaja
// sobre una copia del estado confirmado y la copia reemplaza al estado solo en el commit.
// Se usa en tests y con DB_DRIVER=memory.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// ErrBusy contención transitoria simulada; IsTransient la reconoce.
var ErrBusy = errors.New("memory: store busy")

// IsTransient indica si el error es una contención transitoria del almacén en memoria.
func IsTransient(err error) bool {
	return errors.Is(err, ErrBusy)
}

var _ inventory.TxRunner = (*Store)(nil)

type data struct {
	storages   map[int64]entity.Storage
	elements   map[int64]entity.InventoryElement
	states     map[entity.StateKey]entity.StorageState
	movements  []entity.InventoryMovement
	sales      map[string]entity.Sale
	meters     []entity.MeterReading
	version    int64
	storageSeq int64
	elementSeq int64
	moveSeq    int64
	meterSeq   int64
}

func newData() *data {
	return &data{
		storages: make(map[int64]entity.Storage),
		elements: make(map[int64]entity.InventoryElement),
		states:   make(map[entity.StateKey]entity.StorageState),
		sales:    make(map[string]entity.Sale),
	}
}

func (d *data) clone() *data {
	c := *d
	c.storages = make(map[int64]entity.Storage, len(d.storages))
	for k, v := range d.storages {
		c.storages[k] = v
	}
	c.elements = make(map[int64]entity.InventoryElement, len(d.elements))
	for k, v := range d.elements {
		c.elements[k] = v
	}
	c.states = make(map[entity.StateKey]entity.StorageState, len(d.states))
	for k, v := range d.states {
		c.states[k] = v
	}
	c.sales = make(map[string]entity.Sale, len(d.sales))
	for k, v := range d.sales {
		c.sales[k] = v
	}
	c.movements = append([]entity.InventoryMovement(nil), d.movements...)
	c.meters = append([]entity.MeterReading(nil), d.meters...)
	return &c
}

// Store almacén transaccional en memoria. Las transacciones se serializan.
type Store struct {
	txMu  sync.Mutex   // serializa escritores
	mu    sync.RWMutex // protege state
	state *data
	busy  atomic.Int64
	now   func() time.Time
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{state: newData(), now: time.Now}
}

// InjectBusy hace que las próximas n operaciones dentro de transacciones fallen con ErrBusy.
func (s *Store) InjectBusy(n int) {
	s.busy.Store(int64(n))
}

func (s *Store) takeBusy() bool {
	for {
		n := s.busy.Load()
		if n <= 0 {
			return false
		}
		if s.busy.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// access abstrae dónde operan los repositorios: la copia de una transacción o el estado confirmado.
type access interface {
	read(fn func(d *data) error) error
	write(fn func(d *data) error) error
	now() time.Time
}

type txAccess struct {
	s *Store
	d *data
}

func (a txAccess) read(fn func(d *data) error) error {
	if a.s.takeBusy() {
		return ErrBusy
	}
	return fn(a.d)
}

func (a txAccess) write(fn func(d *data) error) error { return a.read(fn) }
func (a txAccess) now() time.Time                     { return a.s.now() }

type committedAccess struct {
	s *Store
}

func (a committedAccess) read(fn func(d *data) error) error {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return fn(a.s.state)
}

// write fuera de transacción: opera sobre una copia y la confirma si fn no falla.
func (a committedAccess) write(fn func(d *data) error) error {
	a.s.txMu.Lock()
	defer a.s.txMu.Unlock()
	a.s.mu.RLock()
	work := a.s.state.clone()
	a.s.mu.RUnlock()
	if err := fn(work); err != nil {
		return err
	}
	a.s.mu.Lock()
	a.s.state = work
	a.s.mu.Unlock()
	return nil
}

func (a committedAccess) now() time.Time { return a.s.now() }

func repositories(a access) inventory.Repositories {
	return inventory.Repositories{
		Storages:  &StorageRepo{a: a},
		Elements:  &ElementRepo{a: a},
		States:    &StorageStateRepo{a: a},
		Movements: &InventoryMovementRepo{a: a},
		Sales:     &SaleRepo{a: a},
		Meters:    &MeterReadingRepo{a: a},
	}
}

// Run ejecuta fn sobre una copia del estado y la confirma solo si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(repositories(txAccess{s: s, d: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

// Reader repositorios sobre el estado confirmado.
func (s *Store) Reader() inventory.Repositories {
	return repositories(committedAccess{s: s})
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	"github.com/aguahielo/movimientos-api/internal/domain/repository"
)

var (
	_ repository.StorageRepository           = (*StorageRepo)(nil)
	_ repository.ElementRepository           = (*ElementRepo)(nil)
	_ repository.StorageStateRepository      = (*StorageStateRepo)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
	_ repository.SaleRepository              = (*SaleRepo)(nil)
	_ repository.MeterReadingRepository      = (*MeterReadingRepo)(nil)
)

// ─── Registros ────────────────────────────────────────────────────────────────

// StorageRepo registro de bodegas en memoria.
type StorageRepo struct{ a access }

func (r *StorageRepo) Create(_ context.Context, s *entity.Storage) error {
	return r.a.write(func(d *data) error {
		for _, existing := range d.storages {
			if existing.Code == s.Code {
				return fmt.Errorf("%w: bodega %q", domain.ErrConflict, s.Code)
			}
		}
		d.storageSeq++
		s.ID = d.storageSeq
		d.storages[s.ID] = *s
		return nil
	})
}

func (r *StorageRepo) GetByCode(_ context.Context, code string) (*entity.Storage, error) {
	var out *entity.Storage
	err := r.a.read(func(d *data) error {
		for _, s := range d.storages {
			if s.Code == code && s.DeletedAt == nil {
				s := s
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *StorageRepo) List(_ context.Context) ([]*entity.Storage, error) {
	var out []*entity.Storage
	err := r.a.read(func(d *data) error {
		for _, s := range d.storages {
			if s.DeletedAt == nil {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

// ElementRepo registro de elementos en memoria.
type ElementRepo struct{ a access }

func (r *ElementRepo) Create(_ context.Context, e *entity.InventoryElement) error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, e.Type)
	}
	return r.a.write(func(d *data) error {
		for _, existing := range d.elements {
			if existing.Code == e.Code {
				return fmt.Errorf("%w: elemento %q", domain.ErrConflict, e.Code)
			}
		}
		d.elementSeq++
		e.ID = d.elementSeq
		d.elements[e.ID] = *e
		return nil
	})
}

func (r *ElementRepo) GetByCode(_ context.Context, code string) (*entity.InventoryElement, error) {
	var out *entity.InventoryElement
	err := r.a.read(func(d *data) error {
		for _, e := range d.elements {
			if e.Code == code && e.DeletedAt == nil {
				e := e
				out = &e
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ElementRepo) List(_ context.Context) ([]*entity.InventoryElement, error) {
	var out []*entity.InventoryElement
	err := r.a.read(func(d *data) error {
		for _, e := range d.elements {
			if e.DeletedAt == nil {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

// ─── Estado ───────────────────────────────────────────────────────────────────

// StorageStateRepo cantidades por bodega+elemento en memoria.
type StorageStateRepo struct{ a access }

func (r *StorageStateRepo) GetForUpdate(_ context.Context, storageID, elementID int64) (*entity.StorageState, error) {
	var out *entity.StorageState
	err := r.a.read(func(d *data) error {
		if st, ok := d.states[entity.StateKey{StorageID: storageID, ElementID: elementID}]; ok {
			out = &st
		}
		return nil
	})
	return out, err
}

func (r *StorageStateRepo) LockOrCreate(_ context.Context, storageID, elementID int64) (*entity.StorageState, error) {
	out := &entity.StorageState{StorageID: storageID, ElementID: elementID, Quantity: decimal.Zero}
	err := r.a.read(func(d *data) error {
		if st, ok := d.states[out.Key()]; ok {
			*out = st
			return nil
		}
		if _, ok := d.storages[storageID]; !ok {
			return fmt.Errorf("%w: bodega %d", domain.ErrNotFound, storageID)
		}
		if _, ok := d.elements[elementID]; !ok {
			return fmt.Errorf("%w: elemento %d", domain.ErrNotFound, elementID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StorageStateRepo) Upsert(_ context.Context, st *entity.StorageState) error {
	if st.Quantity.IsNegative() {
		return fmt.Errorf("%w: cantidad negativa en (%d,%d)", domain.ErrInvariantViolation, st.StorageID, st.ElementID)
	}
	return r.a.write(func(d *data) error {
		if _, ok := d.storages[st.StorageID]; !ok {
			return fmt.Errorf("%w: bodega %d", domain.ErrNotFound, st.StorageID)
		}
		if _, ok := d.elements[st.ElementID]; !ok {
			return fmt.Errorf("%w: elemento %d", domain.ErrNotFound, st.ElementID)
		}
		d.states[st.Key()] = *st
		d.version++
		return nil
	})
}

func (r *StorageStateRepo) List(_ context.Context) ([]*entity.StorageStateView, error) {
	var out []*entity.StorageStateView
	err := r.a.read(func(d *data) error {
		for _, st := range d.states {
			s := d.storages[st.StorageID]
			e := d.elements[st.ElementID]
			out = append(out, &entity.StorageStateView{
				StorageState: st,
				StorageCode:  s.Code,
				StorageName:  s.Name,
				ElementCode:  e.Code,
				ElementName:  e.Name,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StorageCode != out[j].StorageCode {
			return out[i].StorageCode < out[j].StorageCode
		}
		return out[i].ElementCode < out[j].ElementCode
	})
	return out, err
}

func (r *StorageStateRepo) Version(_ context.Context) (int64, error) {
	var v int64
	err := r.a.read(func(d *data) error {
		v = d.version
		return nil
	})
	return v, err
}

// ─── Ledger ───────────────────────────────────────────────────────────────────

// InventoryMovementRepo ledger en memoria (solo inserción).
type InventoryMovementRepo struct{ a access }

func (r *InventoryMovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	return r.a.write(func(d *data) error {
		d.moveSeq++
		m.ID = d.moveSeq
		if m.CreatedAt.IsZero() {
			m.CreatedAt = r.a.now()
		}
		d.movements = append(d.movements, *m)
		return nil
	})
}

func (r *InventoryMovementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	var matched []*entity.InventoryMovement
	err := r.a.read(func(d *data) error {
		for _, m := range d.movements {
			if matches(m, f) {
				m := m
				matched = append(matched, &m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if f.Desc {
			a, b = b, a
		}
		switch strings.ToLower(f.Sort) {
		case "created_at":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case "quantity_from":
			if !a.QuantityFrom.Equal(b.QuantityFrom) {
				return a.QuantityFrom.LessThan(b.QuantityFrom)
			}
		}
		return a.ID < b.ID
	})
	total := len(matched)
	if f.Offset >= total {
		return []*entity.InventoryMovement{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < total {
		end = f.Offset + f.Limit
	}
	return matched[f.Offset:end], total, nil
}

func matches(m entity.InventoryMovement, f entity.MovementFilter) bool {
	if !f.IncludeVoided && m.Voided() {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.CreatedAt.After(*f.To) {
		return false
	}
	if f.Cause != nil && m.Cause != *f.Cause {
		return false
	}
	if f.ElementID != nil && m.ElementFromID != *f.ElementID && m.ElementToID != *f.ElementID {
		return false
	}
	return true
}

// ─── Ventas y contadores ──────────────────────────────────────────────────────

// SaleRepo ventas en memoria.
type SaleRepo struct{ a access }

func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.a.write(func(d *data) error {
		if _, ok := d.sales[s.ID]; ok {
			return fmt.Errorf("%w: venta %s", domain.ErrConflict, s.ID)
		}
		d.sales[s.ID] = *s
		return nil
	})
}

func (r *SaleRepo) GetForUpdate(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.a.read(func(d *data) error {
		if s, ok := d.sales[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) MarkDeleted(_ context.Context, id, deletedBy string, at time.Time) error {
	return r.a.write(func(d *data) error {
		s, ok := d.sales[id]
		if !ok {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
		}
		s.Deleted = true
		s.DeletedAt = &at
		s.DeletedBy = &deletedBy
		d.sales[id] = s
		return nil
	})
}

// MeterReadingRepo lecturas de contador en memoria.
type MeterReadingRepo struct{ a access }

func (r *MeterReadingRepo) Last(_ context.Context, meter string) (*entity.MeterReading, error) {
	var out *entity.MeterReading
	err := r.a.read(func(d *data) error {
		for i := len(d.meters) - 1; i >= 0; i-- {
			if d.meters[i].Meter == meter {
				m := d.meters[i]
				out = &m
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MeterReadingRepo) Create(_ context.Context, m *entity.MeterReading) error {
	return r.a.write(func(d *data) error {
		d.meterSeq++
		m.ID = d.meterSeq
		if m.CreatedAt.IsZero() {
			m.CreatedAt = r.a.now()
		}
		d.meters = append(d.meters, *m)
		return nil
	})
}

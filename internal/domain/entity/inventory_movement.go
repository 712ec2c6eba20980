package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Cause motivo de negocio de un movimiento.
type Cause string

const (
	CauseManual     Cause = "manual"
	CauseIn         Cause = "in"
	CauseRelocation Cause = "relocation"
	CauseProduction Cause = "production"
	CauseSell       Cause = "sell"
	CauseDamage     Cause = "damage"
)

// Valid indica si la causa es una de las conocidas.
func (c Cause) Valid() bool {
	switch c {
	case CauseManual, CauseIn, CauseRelocation, CauseProduction, CauseSell, CauseDamage:
		return true
	}
	return false
}

// InventoryMovement fila del ledger: una transferencia elemental entre dos pares (bodega, elemento).
// StorageFromID/StorageToID nil significa "fuera del sistema" (ingreso o consumo final).
// Append-only: la única mutación posterior es el par de anulación DeletedAt/DeletedBy.
type InventoryMovement struct {
	ID            int64
	TransactionID string // agrupa las filas de una misma acción compuesta
	StorageFromID *int64
	StorageToID   *int64
	ElementFromID int64
	ElementToID   int64
	QuantityFrom  decimal.Decimal
	QuantityTo    decimal.Decimal
	Cause         Cause
	CreatedBy     string
	Rollback      bool
	SaleID        *string
	CreatedAt     time.Time
	DeletedAt     *time.Time
	DeletedBy     *string
}

// Voided indica si la fila está anulada.
func (m *InventoryMovement) Voided() bool {
	return m.DeletedAt != nil
}

// Validate comprueba las invariantes de persistencia de la fila.
// DeletedAt y DeletedBy van juntos: nunca uno sin el otro.
func (m *InventoryMovement) Validate() error {
	if (m.DeletedAt == nil) != (m.DeletedBy == nil) {
		return fmt.Errorf("movimiento %d: deleted_at y deleted_by deben ir juntos", m.ID)
	}
	if m.StorageFromID == nil && m.StorageToID == nil {
		return fmt.Errorf("movimiento %d: sin origen ni destino", m.ID)
	}
	if !m.QuantityFrom.IsPositive() || !m.QuantityTo.IsPositive() {
		return fmt.Errorf("movimiento %d: cantidades deben ser positivas", m.ID)
	}
	if !m.Cause.Valid() {
		return fmt.Errorf("movimiento %d: causa %q desconocida", m.ID, m.Cause)
	}
	return nil
}

// MovementRequest entrada del motor: una transferencia elemental ya resuelta a ids.
// QuantityTo vacío (cero) toma el valor de QuantityFrom.
type MovementRequest struct {
	TransactionID string
	StorageFromID *int64
	StorageToID   *int64
	ElementFromID int64
	ElementToID   int64
	QuantityFrom  decimal.Decimal
	QuantityTo    decimal.Decimal
	Cause         Cause
	CreatedBy     string
	Rollback      bool
	SaleID        *string
}

// MovementFilter filtros del listado de movimientos.
type MovementFilter struct {
	From          *time.Time
	To            *time.Time
	Cause         *Cause
	ElementID     *int64 // coincide con elemento origen o destino
	IncludeVoided bool
	Limit         int
	Offset        int
	Sort          string // id | created_at | quantity_from
	Desc          bool
}

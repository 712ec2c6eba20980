package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale fila mínima de venta que necesita la integración con el inventario.
// Deleted marca la anulación; una venta anulada no puede anularse otra vez.
type Sale struct {
	ID          string
	ProductCode string
	VariantCode string
	Quantity    decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	Deleted     bool
	DeletedAt   *time.Time
	DeletedBy   *string
}

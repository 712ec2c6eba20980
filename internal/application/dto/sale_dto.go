package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest una línea de venta.
type SaleLineRequest struct {
	ProductCode string          `json:"product_code" validate:"required"`
	VariantCode string          `json:"variant_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CreateSalesRequest body para POST /api/sales (creación masiva).
type CreateSalesRequest struct {
	Lines []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID          string          `json:"id"`
	ProductCode string          `json:"product_code"`
	VariantCode string          `json:"variant_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Tracked     bool            `json:"tracked"` // false = producto sin inventario
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	Deleted     bool            `json:"deleted"`
}

// CreateSalesResponse respuesta de la creación masiva.
type CreateSalesResponse struct {
	TransactionID string                 `json:"transaction_id"`
	Version       int64                  `json:"version"`
	Sales         []SaleResponse         `json:"sales"`
	States        []StorageStateResponse `json:"states"`
}

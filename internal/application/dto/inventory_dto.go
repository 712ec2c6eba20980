package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryRequest body para POST /api/inventory/movements/entry.
type EntryRequest struct {
	ElementCode string          `json:"element_code" validate:"required"`
	StorageCode string          `json:"storage_code,omitempty"` // vacío = bodega de materia prima
	Amount      decimal.Decimal `json:"amount"`
}

// RelocationRequest body para POST /api/inventory/movements/relocation.
type RelocationRequest struct {
	ElementCode  string           `json:"element_code" validate:"required"`
	StorageFrom  string           `json:"storage_from" validate:"required"`
	StorageTo    string           `json:"storage_to" validate:"required,nefield=StorageFrom"`
	Amount       decimal.Decimal  `json:"amount"`
	MeterReading *decimal.Decimal `json:"meter_reading,omitempty"` // obligatorio para rollo-360
}

// ProductionRequest body para POST /api/inventory/movements/production.
type ProductionRequest struct {
	ProductionType string           `json:"production_type" validate:"required"`
	Amount         decimal.Decimal  `json:"amount"`
	Damaged        decimal.Decimal  `json:"damaged"`
	MeterReading   *decimal.Decimal `json:"meter_reading,omitempty"` // obligatorio para bolsa-360
}

// DamageRequest body para POST /api/inventory/movements/damage.
type DamageRequest struct {
	DamageType  string          `json:"damage_type" validate:"required,oneof=return general"`
	ElementCode string          `json:"element_code" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	StorageCode string          `json:"storage_code,omitempty" validate:"required_if=DamageType general"`
}

// UnpackRequest body para POST /api/inventory/movements/unpack.
type UnpackRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ManualMovementRequest body para POST /api/inventory/movements/manual.
type ManualMovementRequest struct {
	StorageFromID *int64           `json:"storage_from_id,omitempty" validate:"required_without=StorageToID"`
	StorageToID   *int64           `json:"storage_to_id,omitempty"`
	ElementFromID int64            `json:"element_from_id" validate:"required,gt=0"`
	ElementToID   *int64           `json:"element_to_id,omitempty"` // vacío = mismo elemento
	QuantityFrom  decimal.Decimal  `json:"quantity_from"`
	QuantityTo    *decimal.Decimal `json:"quantity_to,omitempty"`
}

// MovementListRequest query de GET /api/inventory/movements.
type MovementListRequest struct {
	PageRequest
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Cause         string `query:"cause" validate:"omitempty,oneof=manual in relocation production sell damage"`
	ElementID     int64  `query:"element_id" validate:"min=0"`
	IncludeVoided bool   `query:"include_voided"`
	Sort          string `query:"sort" validate:"omitempty,oneof=id created_at quantity_from"`
	Order         string `query:"order" validate:"omitempty,oneof=asc desc"`
}

// StorageResponse fila del registro de bodegas.
type StorageResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ElementResponse fila del registro de elementos.
type ElementResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// StorageStateResponse cantidad actual de un elemento en una bodega.
type StorageStateResponse struct {
	StorageID   int64           `json:"storage_id"`
	StorageCode string          `json:"storage_code,omitempty"`
	StorageName string          `json:"storage_name,omitempty"`
	ElementID   int64           `json:"element_id"`
	ElementCode string          `json:"element_code,omitempty"`
	ElementName string          `json:"element_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StateResponse respuesta de GET /api/inventory/state. Items vacío cuando Changed=false.
type StateResponse struct {
	Version int64                  `json:"version"`
	Changed bool                   `json:"changed"`
	Items   []StorageStateResponse `json:"items"`
}

// MovementResponse fila del ledger.
type MovementResponse struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	StorageFromID *int64          `json:"storage_from_id"`
	StorageToID   *int64          `json:"storage_to_id"`
	ElementFromID int64           `json:"element_from_id"`
	ElementToID   int64           `json:"element_to_id"`
	QuantityFrom  decimal.Decimal `json:"quantity_from"`
	QuantityTo    decimal.Decimal `json:"quantity_to"`
	Cause         string          `json:"cause"`
	CreatedBy     string          `json:"created_by"`
	Rollback      bool            `json:"rollback"`
	SaleID        *string         `json:"sale_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
	DeletedBy     *string         `json:"deleted_by,omitempty"`
}

// MovementListResponse página de movimientos más el total.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementResultResponse resultado de una acción de inventario ya confirmada.
type MovementResultResponse struct {
	TransactionID string                 `json:"transaction_id"`
	Version       int64                  `json:"version"`
	Movements     []MovementResponse     `json:"movements"`
	States        []StorageStateResponse `json:"states"`
}

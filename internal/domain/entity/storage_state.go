package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StorageState cantidad actual de un elemento en una bodega (tabla materializada desde el ledger).
// Se crea en el primer crédito al par y nunca se borra; la cantidad nunca es negativa.
type StorageState struct {
	StorageID int64
	ElementID int64
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}

// StateKey identidad compuesta de un StorageState.
type StateKey struct {
	StorageID int64
	ElementID int64
}

// Key devuelve la identidad del par.
func (s StorageState) Key() StateKey {
	return StateKey{StorageID: s.StorageID, ElementID: s.ElementID}
}

// StorageStateView fila de estado con nombres de bodega y elemento (consulta).
type StorageStateView struct {
	StorageState
	StorageCode string
	StorageName string
	ElementCode string
	ElementName string
}

// StateChangedEvent aviso de que un StorageState cambió tras un commit.
// Es una pista de invalidación: el consumidor debe volver a consultar.
type StateChangedEvent struct {
	StorageID int64           `json:"storage_id"`
	ElementID int64           `json:"element_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

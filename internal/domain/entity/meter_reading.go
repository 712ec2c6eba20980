package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterReading lectura de un contador físico (máquina de sellado, bobina montada).
// Append-only; por contador los valores nunca retroceden.
type MeterReading struct {
	ID            int64
	Meter         string
	Value         decimal.Decimal
	TransactionID string
	CreatedBy     string
	CreatedAt     time.Time
}

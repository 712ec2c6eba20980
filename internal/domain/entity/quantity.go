package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityScale decimales con que se guardan cantidades y lecturas (columnas NUMERIC(18,4)).
const QuantityScale = 4

// maxQuantity primer valor que no cabe en NUMERIC(18,4).
var maxQuantity = decimal.New(1, 18-QuantityScale)

// CheckQuantity verifica que d se pueda guardar sin redondeo ni desbordamiento. Una cantidad
// que la base redondeara dejaría el ledger y el estado con valores distintos.
func CheckQuantity(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(QuantityScale)) {
		return fmt.Errorf("%s tiene más de %d decimales", d, QuantityScale)
	}
	if d.Abs().GreaterThanOrEqual(maxQuantity) {
		return fmt.Errorf("%s excede el máximo permitido", d)
	}
	return nil
}

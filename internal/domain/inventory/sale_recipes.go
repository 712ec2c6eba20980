package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// SalePair elemento y bodega de donde sale una unidad vendida.
type SalePair struct {
	Element ElementCode
	Storage StorageCode
}

// saleRecipe consumo de inventario de un producto vendido. Si Variants no es nil el
// producto exige variante y Pairs se ignora.
type saleRecipe struct {
	Pairs    []SalePair
	Variants map[string][]SalePair
}

// Productos vendidos sin respaldo de inventario (recarga del botellón del cliente, domicilio).
const (
	ProductRecargaBotellon = "recarga-botellon"
	ProductDomicilio       = "domicilio"
)

var untrackedProducts = map[string]struct{}{
	ProductRecargaBotellon: {},
	ProductDomicilio:       {},
}

func botellonWith(capCode ElementCode) []SalePair {
	return []SalePair{
		{ElementBotellonNuevo, StorageTerminado},
		{capCode, StorageBodega},
		{ElementTermoencogible, StorageBodega},
	}
}

var saleRecipes = map[string]saleRecipe{
	string(ElementPaca360):  {Pairs: []SalePair{{ElementPaca360, StorageTerminado}}},
	string(ElementHielo5kg): {Pairs: []SalePair{{ElementHielo5kg, StorageTerminado}}},
	string(ElementBolsa360): {Pairs: []SalePair{{ElementBolsa360, StorageIntermedia}}},
	string(ElementBotellonNuevo): {Variants: map[string][]SalePair{
		string(ElementTapaValvula):  botellonWith(ElementTapaValvula),
		string(ElementTapaSencilla): botellonWith(ElementTapaSencilla),
	}},
}

// SaleRecipeFor resuelve los pares de consumo de un producto vendido.
// tracked=false para productos sin inventario (incluidos los no registrados en la tabla).
// Un producto con variantes y variante ausente o desconocida devuelve *domain.UnknownVariantError.
func SaleRecipeFor(product, variant string) (pairs []SalePair, tracked bool, err error) {
	if _, ok := untrackedProducts[product]; ok {
		return nil, false, nil
	}
	recipe, ok := saleRecipes[product]
	if !ok {
		return nil, false, nil
	}
	if recipe.Variants == nil {
		return recipe.Pairs, true, nil
	}
	pairs, ok = recipe.Variants[variant]
	if !ok {
		return nil, true, &domain.UnknownVariantError{Product: product, Variant: variant}
	}
	return pairs, true, nil
}

// SaleConsumption transferencias que descuentan del inventario una venta de qty unidades.
func SaleConsumption(pairs []SalePair, qty decimal.Decimal) ([]Transfer, error) {
	if err := requirePositive("quantity", qty); err != nil {
		return nil, err
	}
	out := make([]Transfer, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, move(p.Storage.Ptr(), nil, p.Element, qty, entity.CauseSell))
	}
	return out, nil
}

// SaleRollback transferencias que devuelven al inventario una venta anulada:
// los mismos pares con origen y destino invertidos y Rollback=true.
func SaleRollback(pairs []SalePair, qty decimal.Decimal) ([]Transfer, error) {
	consumed, err := SaleConsumption(pairs, qty)
	if err != nil {
		return nil, err
	}
	for i := range consumed {
		t := &consumed[i]
		t.StorageFrom, t.StorageTo = t.StorageTo, t.StorageFrom
		t.Rollback = true
	}
	return consumed, nil
}

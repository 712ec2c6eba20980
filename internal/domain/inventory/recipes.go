package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// Transfer transferencia elemental expresada en códigos del catálogo.
// StorageFrom/StorageTo nil significa "fuera del sistema".
type Transfer struct {
	StorageFrom  *StorageCode
	StorageTo    *StorageCode
	ElementFrom  ElementCode
	ElementTo    ElementCode
	QuantityFrom decimal.Decimal
	QuantityTo   decimal.Decimal
	Cause        entity.Cause
	Rollback     bool
}

// MeterMark lectura de contador que la receta exige registrar junto con sus transferencias.
type MeterMark struct {
	Meter string
	Value decimal.Decimal
}

// Plan resultado de una receta: transferencias ordenadas más la lectura de contador, si aplica.
type Plan struct {
	Transfers []Transfer
	Meter     *MeterMark
}

func move(from, to *StorageCode, element ElementCode, qty decimal.Decimal, cause entity.Cause) Transfer {
	return Transfer{
		StorageFrom:  from,
		StorageTo:    to,
		ElementFrom:  element,
		ElementTo:    element,
		QuantityFrom: qty,
		QuantityTo:   qty,
		Cause:        cause,
	}
}

func requirePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return fmt.Errorf("%w: %s debe ser mayor que cero", domain.ErrInvalidInput, field)
	}
	return checkScale(field, v)
}

func checkScale(field string, v decimal.Decimal) error {
	if err := entity.CheckQuantity(v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, field, err)
	}
	return nil
}

func meterMark(meter string, value *decimal.Decimal) (*MeterMark, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: lectura del contador %s requerida", domain.ErrInvalidInput, meter)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("%w: lectura del contador %s negativa", domain.ErrInvalidInput, meter)
	}
	if err := checkScale("meter_reading", *value); err != nil {
		return nil, err
	}
	return &MeterMark{Meter: meter, Value: *value}, nil
}

// ─── Entrada ──────────────────────────────────────────────────────────────────

// Entry ingreso desde fuera a una bodega (por defecto la de materia prima).
func Entry(element ElementCode, storage StorageCode, amount decimal.Decimal) (Plan, error) {
	if element == "" {
		return Plan{}, fmt.Errorf("%w: elemento requerido", domain.ErrInvalidInput)
	}
	if err := requirePositive("amount", amount); err != nil {
		return Plan{}, err
	}
	if storage == "" {
		storage = StorageBodega
	}
	return Plan{Transfers: []Transfer{move(nil, storage.Ptr(), element, amount, entity.CauseIn)}}, nil
}

// ─── Traslado ─────────────────────────────────────────────────────────────────

// relocationMeters elementos cuyo traslado consume el elemento en destino y exige lectura de contador.
var relocationMeters = map[ElementCode]string{
	ElementRollo360: string(ElementRollo360),
}

// Relocation traslado de un elemento entre dos bodegas. Para el rollo-360 el rollo queda montado
// en la máquina: una segunda transferencia lo consume en destino y se registra el contador.
func Relocation(element ElementCode, from, to StorageCode, amount decimal.Decimal, meter *decimal.Decimal) (Plan, error) {
	if element == "" || from == "" || to == "" {
		return Plan{}, fmt.Errorf("%w: elemento, origen y destino requeridos", domain.ErrInvalidInput)
	}
	if from == to {
		return Plan{}, fmt.Errorf("%w: origen y destino iguales", domain.ErrInvalidInput)
	}
	if err := requirePositive("amount", amount); err != nil {
		return Plan{}, err
	}
	plan := Plan{Transfers: []Transfer{move(from.Ptr(), to.Ptr(), element, amount, entity.CauseRelocation)}}

	if name, ok := relocationMeters[element]; ok {
		mark, err := meterMark(name, meter)
		if err != nil {
			return Plan{}, err
		}
		plan.Meter = mark
		plan.Transfers = append(plan.Transfers, move(to.Ptr(), nil, element, amount, entity.CauseRelocation))
	}
	return plan, nil
}

// ─── Producción ───────────────────────────────────────────────────────────────

// ProductionRecipe receta de producción de un producto.
// Ratio es cuántas unidades de ElementFrom consume una unidad de ElementTo.
type ProductionRecipe struct {
	StorageFrom *StorageCode
	StorageTo   StorageCode
	ElementFrom ElementCode
	ElementTo   ElementCode
	Ratio       decimal.Decimal
	// Damaged elemento que se descarta desde StorageFrom cuando se reportan dañados. Vacío = sin variante.
	Damaged ElementCode
	// Meter contador que la producción exige registrar. Vacío = sin contador.
	Meter string
	// Packaging empaque consumido desde PackagingFrom por cada unidad producida.
	Packaging     ElementCode
	PackagingFrom StorageCode
}

var productionRecipes = map[ElementCode]ProductionRecipe{
	ElementBolsa360: {
		StorageFrom: nil,
		StorageTo:   StorageIntermedia,
		ElementFrom: ElementBolsa360,
		ElementTo:   ElementBolsa360,
		Ratio:       decimal.NewFromInt(1),
		Meter:       string(ElementBolsa360),
	},
	ElementPaca360: {
		StorageFrom:   StorageIntermedia.Ptr(),
		StorageTo:     StorageTerminado,
		ElementFrom:   ElementBolsa360,
		ElementTo:     ElementPaca360,
		Ratio:         decimal.NewFromInt(BagsPerPack),
		Damaged:       ElementBolsa360,
		Packaging:     ElementEmpaquePaca,
		PackagingFrom: StorageTrabajo,
	},
	ElementHielo5kg: {
		StorageFrom: StorageTrabajo.Ptr(),
		StorageTo:   StorageTerminado,
		ElementFrom: ElementBolsaHielo5kg,
		ElementTo:   ElementHielo5kg,
		Ratio:       decimal.NewFromInt(1),
		Damaged:     ElementBolsaHielo5kg,
	},
}

// ProductionRecipeFor devuelve la receta del producto.
func ProductionRecipeFor(product ElementCode) (ProductionRecipe, bool) {
	r, ok := productionRecipes[product]
	return r, ok
}

// Production produce amount unidades del producto. damaged son unidades del elemento de la
// variante dañada que se descartan desde el origen.
func Production(product ElementCode, amount, damaged decimal.Decimal, meter *decimal.Decimal) (Plan, error) {
	recipe, ok := productionRecipes[product]
	if !ok {
		return Plan{}, fmt.Errorf("%w: producción %q no soportada", domain.ErrInvalidInput, product)
	}
	if err := requirePositive("amount", amount); err != nil {
		return Plan{}, err
	}
	if damaged.IsNegative() {
		return Plan{}, fmt.Errorf("%w: damaged negativo", domain.ErrInvalidInput)
	}
	if err := checkScale("damaged", damaged); err != nil {
		return Plan{}, err
	}
	if damaged.IsPositive() && recipe.Damaged == "" {
		return Plan{}, fmt.Errorf("%w: la producción %q no admite dañados", domain.ErrInvalidInput, product)
	}

	var plan Plan
	if recipe.Meter != "" {
		mark, err := meterMark(recipe.Meter, meter)
		if err != nil {
			return Plan{}, err
		}
		plan.Meter = mark
	}

	plan.Transfers = append(plan.Transfers, Transfer{
		StorageFrom:  recipe.StorageFrom,
		StorageTo:    recipe.StorageTo.Ptr(),
		ElementFrom:  recipe.ElementFrom,
		ElementTo:    recipe.ElementTo,
		QuantityFrom: amount.Mul(recipe.Ratio),
		QuantityTo:   amount,
		Cause:        entity.CauseProduction,
	})
	if damaged.IsPositive() {
		plan.Transfers = append(plan.Transfers, move(recipe.StorageFrom, nil, recipe.Damaged, damaged, entity.CauseProduction))
	}
	if recipe.Packaging != "" {
		plan.Transfers = append(plan.Transfers, move(recipe.PackagingFrom.Ptr(), nil, recipe.Packaging, amount, entity.CauseProduction))
	}
	return plan, nil
}

// ─── Daños ────────────────────────────────────────────────────────────────────

// DamageKind forma del reporte de daño.
type DamageKind string

const (
	// DamageReturn devolución: la bodega origen se infiere del elemento.
	DamageReturn DamageKind = "return"
	// DamageGeneral la bodega origen la indica quien reporta.
	DamageGeneral DamageKind = "general"
)

// returnSources bodega origen de las devoluciones por elemento; el resto sale de terminado.
var returnSources = map[ElementCode]StorageCode{
	ElementBolsa360: StorageIntermedia,
}

// Damage descarta amount unidades del elemento (destino fuera del sistema).
func Damage(kind DamageKind, element ElementCode, amount decimal.Decimal, storage StorageCode) (Plan, error) {
	if element == "" {
		return Plan{}, fmt.Errorf("%w: elemento requerido", domain.ErrInvalidInput)
	}
	if err := requirePositive("amount", amount); err != nil {
		return Plan{}, err
	}
	var from StorageCode
	switch kind {
	case DamageReturn:
		from = StorageTerminado
		if s, ok := returnSources[element]; ok {
			from = s
		}
	case DamageGeneral:
		if storage == "" {
			return Plan{}, fmt.Errorf("%w: bodega requerida para daño general", domain.ErrInvalidInput)
		}
		from = storage
	default:
		return Plan{}, fmt.Errorf("%w: tipo de daño %q", domain.ErrInvalidInput, kind)
	}
	return Plan{Transfers: []Transfer{move(from.Ptr(), nil, element, amount, entity.CauseDamage)}}, nil
}

// ─── Desempaque ───────────────────────────────────────────────────────────────

// BagsPerPack bolsas de 360 ml por paca.
const BagsPerPack = 20

// Unpack desarma packs pacas de terminado en bolsas sueltas en intermedia y deposita en intermedia
// un empaque por paca para volver a empacar.
func Unpack(packs decimal.Decimal) (Plan, error) {
	if err := requirePositive("amount", packs); err != nil {
		return Plan{}, err
	}
	return Plan{Transfers: []Transfer{
		{
			StorageFrom:  StorageTerminado.Ptr(),
			StorageTo:    StorageIntermedia.Ptr(),
			ElementFrom:  ElementPaca360,
			ElementTo:    ElementBolsa360,
			QuantityFrom: packs,
			QuantityTo:   packs.Mul(decimal.NewFromInt(BagsPerPack)),
			Cause:        entity.CauseRelocation,
		},
		move(nil, StorageIntermedia.Ptr(), ElementEmpaquePaca, packs, entity.CauseRelocation),
	}}, nil
}

// ─── Manual ───────────────────────────────────────────────────────────────────

// ManualTransfer valida un movimiento manual expresado en ids (sin expansión de receta).
func ManualTransfer(req entity.MovementRequest) (entity.MovementRequest, error) {
	if req.CreatedBy == "" {
		return req, domain.ErrUnauthorized
	}
	if req.StorageFromID == nil && req.StorageToID == nil {
		return req, fmt.Errorf("%w: origen o destino requerido", domain.ErrInvalidInput)
	}
	if req.ElementFromID <= 0 {
		return req, fmt.Errorf("%w: elemento origen requerido", domain.ErrInvalidInput)
	}
	if req.ElementToID == 0 {
		req.ElementToID = req.ElementFromID
	}
	req.Cause = entity.CauseManual
	req.Rollback = false
	return req, nil
}

package inventory

import "github.com/aguahielo/movimientos-api/internal/domain/entity"

// StorageCode código estable de una bodega del registro.
type StorageCode string

// ElementCode código estable de un elemento de inventario del registro.
type ElementCode string

// Bodegas del catálogo estático.
const (
	StorageBodega     StorageCode = "bodega"     // materia prima
	StorageTrabajo    StorageCode = "trabajo"    // zona de producción
	StorageIntermedia StorageCode = "intermedia" // bolsas selladas sin empacar
	StorageTerminado  StorageCode = "terminado"  // producto terminado
)

// Elementos del catálogo estático.
const (
	ElementRollo360      ElementCode = "rollo-360"
	ElementBolsa360      ElementCode = "bolsa-360"
	ElementPaca360       ElementCode = "paca-360"
	ElementEmpaquePaca   ElementCode = "empaque-paca"
	ElementBolsaHielo5kg ElementCode = "bolsa-hielo-5kg"
	ElementHielo5kg      ElementCode = "hielo-5kg"
	ElementBotellonNuevo ElementCode = "botellon-nuevo"
	ElementTapaValvula   ElementCode = "tapa-valvula"
	ElementTapaSencilla  ElementCode = "tapa-sencilla"
	ElementTermoencogible ElementCode = "termoencogible"
	ElementCanastilla    ElementCode = "canastilla"
)

// Ptr devuelve un puntero al código (nil representa "fuera del sistema").
func (c StorageCode) Ptr() *StorageCode { return &c }

// SeedStorage fila del catálogo de bodegas para el seed.
type SeedStorage struct {
	Code StorageCode
	Name string
}

// SeedElement fila del catálogo de elementos para el seed.
type SeedElement struct {
	Code ElementCode
	Name string
	Type entity.ElementType
}

// Storages catálogo de bodegas que las recetas referencian.
var Storages = []SeedStorage{
	{StorageBodega, "Bodega de materia prima"},
	{StorageTrabajo, "Zona de trabajo"},
	{StorageIntermedia, "Bodega intermedia"},
	{StorageTerminado, "Producto terminado"},
}

// Elements catálogo de elementos que las recetas referencian.
var Elements = []SeedElement{
	{ElementRollo360, "Rollo bolsa 360 ml", entity.ElementTypeRaw},
	{ElementBolsa360, "Bolsa de agua 360 ml", entity.ElementTypeRaw},
	{ElementPaca360, "Paca bolsa 360 ml x20", entity.ElementTypeProduct},
	{ElementEmpaquePaca, "Empaque de paca", entity.ElementTypeRaw},
	{ElementBolsaHielo5kg, "Bolsa hielo 5 kg", entity.ElementTypeRaw},
	{ElementHielo5kg, "Hielo 5 kg", entity.ElementTypeProduct},
	{ElementBotellonNuevo, "Botellón nuevo 20 L", entity.ElementTypeProduct},
	{ElementTapaValvula, "Tapa válvula", entity.ElementTypeRaw},
	{ElementTapaSencilla, "Tapa sencilla", entity.ElementTypeRaw},
	{ElementTermoencogible, "Termoencogible", entity.ElementTypeRaw},
	{ElementCanastilla, "Canastilla", entity.ElementTypeTool},
}

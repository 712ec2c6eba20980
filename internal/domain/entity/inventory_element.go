package entity

import "time"

// ElementType clasifica los elementos de inventario.
type ElementType string

const (
	ElementTypeRaw     ElementType = "raw"     // materia prima
	ElementTypeProduct ElementType = "product" // producto terminado
	ElementTypeTool    ElementType = "tool"    // herramienta reutilizable
)

// Valid indica si el tipo es uno de los conocidos.
func (t ElementType) Valid() bool {
	switch t {
	case ElementTypeRaw, ElementTypeProduct, ElementTypeTool:
		return true
	}
	return false
}

// InventoryElement representa un tipo de ítem rastreable (p. ej. "bolsa-360", "paca-360").
type InventoryElement struct {
	ID        int64
	Code      string
	Name      string
	Type      ElementType
	DeletedAt *time.Time
}

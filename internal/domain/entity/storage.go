package entity

import "time"

// Storage representa una bodega o zona física/lógica que contiene inventario
// (bodega de materia prima, zona de producción, intermedia, producto terminado).
// Dato de referencia: se crea por seed y no cambia después.
type Storage struct {
	ID        int64
	Code      string // slug único y estable, p. ej. "bodega", "terminado"
	Name      string
	DeletedAt *time.Time
}

package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrUnknownReference   = errors.New("código de referencia desconocido")
	ErrUnknownVariant     = errors.New("variante desconocida para producto con inventario")
	ErrSaleAlreadyVoided  = errors.New("la venta ya fue anulada")
	ErrMeterRegression    = errors.New("la lectura del contador no puede retroceder")
	ErrStoreBusy          = errors.New("almacén de datos ocupado, reintentos agotados")
	ErrInvariantViolation = errors.New("violación de invariante de persistencia")
)

// Ref identifica una bodega o elemento en los mensajes de error.
type Ref struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// NotEnoughInSourceError rechazo de dominio: el origen no tiene cantidad suficiente.
// Aborta toda la acción compuesta y nunca se reintenta.
type NotEnoughInSourceError struct {
	Storage   Ref
	Element   Ref
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *NotEnoughInSourceError) Error() string {
	return fmt.Sprintf("no hay suficiente %s en %s: disponible %s, solicitado %s",
		e.Element.Name, e.Storage.Name, e.Available.String(), e.Requested.String())
}

func (e *NotEnoughInSourceError) Unwrap() error { return ErrInsufficientStock }

// UnknownReferenceError una receta o request referencia un código inexistente en los registros.
type UnknownReferenceError struct {
	Kind string // "storage" | "element"
	Code string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s desconocido: %q", e.Kind, e.Code)
}

func (e *UnknownReferenceError) Unwrap() error { return ErrUnknownReference }

// UnknownVariantError variante ausente o no registrada para un producto que maneja variantes.
type UnknownVariantError struct {
	Product string
	Variant string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("variante %q no registrada para el producto %q", e.Variant, e.Product)
}

func (e *UnknownVariantError) Unwrap() error { return ErrUnknownVariant }

package dto

// Límites de paginación de los listados del ledger.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageRequest paginación por limit/offset.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Window devuelve limit y offset efectivos: limit 0 toma DefaultLimit y se acota a MaxLimit.
func (p PageRequest) Window() (limit, offset int) {
	limit, offset = p.Limit, max(p.Offset, 0)
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return limit, offset
}

// PageResponse ventana devuelta y total de filas que cumplen el filtro.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva datos estructurados según Code
// (p. ej. NOT_ENOUGH_IN_SOURCE o la lista de campos de VALIDATION).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/domain"
)

// NotEnoughDetails detalle de un rechazo por stock insuficiente.
type NotEnoughDetails struct {
	Storage   domain.Ref `json:"storage"`
	Element   domain.Ref `json:"element"`
	Available string     `json:"available"`
	Requested string     `json:"requested"`
}

// respondError traduce errores de dominio a status HTTP y dto.ErrorResponse.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var notEnough *domain.NotEnoughInSourceError
	switch {
	case errors.As(err, &notEnough):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "NOT_ENOUGH_IN_SOURCE",
			Message: notEnough.Error(),
			Details: NotEnoughDetails{
				Storage:   notEnough.Storage,
				Element:   notEnough.Element,
				Available: notEnough.Available.String(),
				Requested: notEnough.Requested.String(),
			},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrSaleAlreadyVoided):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_VOIDED", Message: "la venta ya fue anulada"})
	case errors.Is(err, domain.ErrMeterRegression):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "METER_REGRESSION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownReference), errors.Is(err, domain.ErrUnknownVariant):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CONFIGURATION", Message: err.Error()})
	case errors.Is(err, domain.ErrStoreBusy):
		log.Warn().Err(err).Str("path", c.Path()).Msg("almacén ocupado")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_BUSY", Message: "almacén ocupado, intente de nuevo"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

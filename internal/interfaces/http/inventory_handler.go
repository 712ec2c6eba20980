package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/application/inventory"
)

// InventoryHandler maneja las acciones de inventario y las consultas del ledger (protegido).
type InventoryHandler struct {
	uc    *inventory.MovementUseCase
	query *inventory.QueryUseCase
	log   zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.MovementUseCase, query *inventory.QueryUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, query: query, log: log}
}

// action parsea el body, ejecuta la acción y responde 201 con el resultado.
func action[T any](h *InventoryHandler, c *fiber.Ctx, run func(ctx context.Context, userID string, in T) (*dto.MovementResultResponse, error)) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in T
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := run(c.UserContext(), userID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Entry godoc
// @Summary      Registrar entrada de materia prima
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EntryRequest  true  "element_code, storage_code (opcional), amount"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/entry [post]
func (h *InventoryHandler) Entry(c *fiber.Ctx) error {
	return action(h, c, h.uc.Entry)
}

// Relocation godoc
// @Summary      Trasladar un elemento entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RelocationRequest  true  "meter_reading obligatorio para rollo-360"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/relocation [post]
func (h *InventoryHandler) Relocation(c *fiber.Ctx) error {
	return action(h, c, h.uc.Relocation)
}

// Production godoc
// @Summary      Registrar producción
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionRequest  true  "production_type, amount, damaged, meter_reading"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/production [post]
func (h *InventoryHandler) Production(c *fiber.Ctx) error {
	return action(h, c, h.uc.Production)
}

// Damage godoc
// @Summary      Registrar daño o devolución
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DamageRequest  true  "damage_type return|general"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/damage [post]
func (h *InventoryHandler) Damage(c *fiber.Ctx) error {
	return action(h, c, h.uc.Damage)
}

// Unpack godoc
// @Summary      Desempacar pacas en bolsas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UnpackRequest  true  "amount en pacas"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/unpack [post]
func (h *InventoryHandler) Unpack(c *fiber.Ctx) error {
	return action(h, c, h.uc.Unpack)
}

// Manual godoc
// @Summary      Movimiento manual (ajuste)
// @Description  Solo roles admin y bodeguero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManualMovementRequest  true  "ids de bodega y elemento"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/manual [post]
func (h *InventoryHandler) Manual(c *fiber.Ctx) error {
	return action(h, c, h.uc.Manual)
}

// ListMovements godoc
// @Summary      Listar movimientos del ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        from            query  string  false  "RFC3339"
// @Param        to              query  string  false  "RFC3339"
// @Param        cause           query  string  false  "manual|in|relocation|production|sell|damage"
// @Param        element_id      query  int     false  "Elemento (origen o destino)"
// @Param        include_voided  query  bool    false  "Incluir anulados"
// @Param        sort            query  string  false  "id|created_at|quantity_from"
// @Param        order           query  string  false  "asc|desc"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.query.ListMovements(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetState godoc
// @Summary      Estado actual de todas las bodegas
// @Description  Con since igual a la versión actual devuelve changed=false sin items.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        since  query  int  false  "Última versión conocida"
// @Success      200  {object}  dto.StateResponse
// @Router       /api/inventory/state [get]
func (h *InventoryHandler) GetState(c *fiber.Ctx) error {
	var since *int64
	if c.Query("since") != "" {
		v := int64(c.QueryInt("since", -1))
		if v < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "since inválido"})
		}
		since = &v
	}
	out, err := h.query.GetState(c.UserContext(), since)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

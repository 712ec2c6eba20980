package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
)

// CatalogHandler expone los registros de bodegas y elementos (protegido).
type CatalogHandler struct {
	query *inventory.QueryUseCase
	log   zerolog.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(query *inventory.QueryUseCase, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{query: query, log: log}
}

// ListStorages godoc
// @Summary      Listar bodegas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StorageResponse
// @Router       /api/storages [get]
func (h *CatalogHandler) ListStorages(c *fiber.Ctx) error {
	out, err := h.query.ListStorages(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListElements godoc
// @Summary      Listar elementos de inventario
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ElementResponse
// @Router       /api/elements [get]
func (h *CatalogHandler) ListElements(c *fiber.Ctx) error {
	out, err := h.query.ListElements(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

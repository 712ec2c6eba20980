package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	domaininv "github.com/aguahielo/movimientos-api/internal/domain/inventory"
)

// UseCase registra y anula ventas descontando o devolviendo inventario en la misma transacción.
type UseCase struct {
	txRunner inventory.TxRunner
	engine   *inventory.Engine
	catalog  *inventory.Catalog
	feed     *inventory.ChangeFeed
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner inventory.TxRunner, engine *inventory.Engine, catalog *inventory.Catalog, feed *inventory.ChangeFeed, log zerolog.Logger) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		engine:   engine,
		catalog:  catalog,
		feed:     feed,
		log:      log,
		now:      time.Now,
	}
}

// recipe resuelve los pares de consumo del producto; una variante desconocida se registra en el log.
func (uc *UseCase) recipe(product, variant string) ([]domaininv.SalePair, bool, error) {
	pairs, tracked, err := domaininv.SaleRecipeFor(product, variant)
	if err != nil {
		var uv *domain.UnknownVariantError
		if errors.As(err, &uv) {
			uc.log.Error().Str("product", product).Str("variant", variant).Msg("variante de venta sin receta de inventario")
		}
		return nil, tracked, err
	}
	return pairs, tracked, nil
}

// CreateSales crea las ventas y aplica sus consumos de inventario. Las filas de venta y sus
// movimientos se confirman o se descartan juntos.
func (uc *UseCase) CreateSales(ctx context.Context, userID string, in dto.CreateSalesRequest) (*dto.CreateSalesResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	txID := uuid.New().String()
	sales := make([]*entity.Sale, 0, len(in.Lines))
	tracked := make([]bool, 0, len(in.Lines))
	var reqs []entity.MovementRequest

	// Resolver recetas fuera de la tx
	for _, line := range in.Lines {
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad de %s", domain.ErrInvalidInput, line.ProductCode)
		}
		if err := entity.CheckQuantity(line.Quantity); err != nil {
			return nil, fmt.Errorf("%w: cantidad de %s: %v", domain.ErrInvalidInput, line.ProductCode, err)
		}
		pairs, isTracked, err := uc.recipe(line.ProductCode, line.VariantCode)
		if err != nil {
			return nil, err
		}
		sale := &entity.Sale{
			ID:          uuid.New().String(),
			ProductCode: line.ProductCode,
			VariantCode: line.VariantCode,
			Quantity:    line.Quantity,
			CreatedBy:   userID,
			CreatedAt:   now,
		}
		sales = append(sales, sale)
		tracked = append(tracked, isTracked)
		if !isTracked {
			continue
		}
		transfers, err := domaininv.SaleConsumption(pairs, line.Quantity)
		if err != nil {
			return nil, err
		}
		lineReqs, err := uc.catalog.Resolve(ctx, transfers, entity.MovementRequest{
			TransactionID: txID,
			CreatedBy:     userID,
			SaleID:        &sale.ID,
		})
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, lineReqs...)
	}

	var applied *inventory.Applied
	err := uc.txRunner.Run(ctx, func(repos inventory.Repositories) error {
		for _, s := range sales {
			if err := repos.Sales.Create(ctx, s); err != nil {
				return err
			}
		}
		var err error
		applied, err = uc.engine.ApplyAll(ctx, repos, reqs)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.feed.Committed(ctx, applied)
	uc.log.Debug().Str("transaction_id", txID).Int("sales", len(sales)).Int("movements", len(applied.Movements)).Msg("ventas registradas")

	out := &dto.CreateSalesResponse{
		TransactionID: txID,
		Version:       applied.Version,
		Sales:         make([]dto.SaleResponse, 0, len(sales)),
		States:        inventory.ToStateResponses(applied.States),
	}
	for i, s := range sales {
		out.Sales = append(out.Sales, dto.SaleResponse{
			ID:          s.ID,
			ProductCode: s.ProductCode,
			VariantCode: s.VariantCode,
			Quantity:    s.Quantity,
			Tracked:     tracked[i],
			CreatedBy:   s.CreatedBy,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out, nil
}

// VoidSale anula una venta: bloquea la fila, rechaza si ya estaba anulada y devuelve el
// inventario con movimientos nuevos (rollback=true) en la misma transacción que la marca.
func (uc *UseCase) VoidSale(ctx context.Context, userID, saleID string) (*dto.MovementResultResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}

	txID := uuid.New().String()
	var applied *inventory.Applied
	err := uc.txRunner.Run(ctx, func(repos inventory.Repositories) error {
		sale, err := repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		if sale.Deleted {
			return domain.ErrSaleAlreadyVoided
		}

		pairs, tracked, err := uc.recipe(sale.ProductCode, sale.VariantCode)
		if err != nil {
			return err
		}
		var reqs []entity.MovementRequest
		if tracked {
			transfers, err := domaininv.SaleRollback(pairs, sale.Quantity)
			if err != nil {
				return err
			}
			reqs, err = uc.catalog.Resolve(ctx, transfers, entity.MovementRequest{
				TransactionID: txID,
				CreatedBy:     userID,
				SaleID:        &sale.ID,
			})
			if err != nil {
				return err
			}
		}
		if err := repos.Sales.MarkDeleted(ctx, sale.ID, userID, uc.now()); err != nil {
			return err
		}
		applied, err = uc.engine.ApplyAll(ctx, repos, reqs)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.feed.Committed(ctx, applied)
	uc.log.Debug().Str("sale_id", saleID).Int("movements", len(applied.Movements)).Msg("venta anulada")
	return inventory.ToResultResponse(txID, applied), nil
}

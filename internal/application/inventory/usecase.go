package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
	domaininv "github.com/aguahielo/movimientos-api/internal/domain/inventory"
)

// MovementUseCase registra las acciones de inventario (entrada, traslado, producción, daño,
// desempaque, manual). Cada acción se expande con su receta antes de abrir la transacción y
// todas sus transferencias se aplican en una sola (Commit/Rollback lo hace TxRunner.Run).
type MovementUseCase struct {
	txRunner TxRunner
	engine   *Engine
	catalog  *Catalog
	feed     *ChangeFeed
	log      zerolog.Logger
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, engine *Engine, catalog *Catalog, feed *ChangeFeed, log zerolog.Logger) *MovementUseCase {
	return &MovementUseCase{
		txRunner: txRunner,
		engine:   engine,
		catalog:  catalog,
		feed:     feed,
		log:      log,
	}
}

// Entry registra el ingreso de un elemento desde fuera del sistema.
func (uc *MovementUseCase) Entry(ctx context.Context, userID string, in dto.EntryRequest) (*dto.MovementResultResponse, error) {
	plan, err := domaininv.Entry(domaininv.ElementCode(in.ElementCode), domaininv.StorageCode(in.StorageCode), in.Amount)
	if err != nil {
		return nil, err
	}
	if err := uc.requireCodes(ctx, []string{in.StorageCode}, in.ElementCode); err != nil {
		return nil, err
	}
	return uc.execute(ctx, userID, plan)
}

// Relocation registra el traslado de un elemento entre dos bodegas.
func (uc *MovementUseCase) Relocation(ctx context.Context, userID string, in dto.RelocationRequest) (*dto.MovementResultResponse, error) {
	plan, err := domaininv.Relocation(
		domaininv.ElementCode(in.ElementCode),
		domaininv.StorageCode(in.StorageFrom),
		domaininv.StorageCode(in.StorageTo),
		in.Amount, in.MeterReading,
	)
	if err != nil {
		return nil, err
	}
	if err := uc.requireCodes(ctx, []string{in.StorageFrom, in.StorageTo}, in.ElementCode); err != nil {
		return nil, err
	}
	return uc.execute(ctx, userID, plan)
}

// Production registra una corrida de producción.
func (uc *MovementUseCase) Production(ctx context.Context, userID string, in dto.ProductionRequest) (*dto.MovementResultResponse, error) {
	plan, err := domaininv.Production(domaininv.ElementCode(in.ProductionType), in.Amount, in.Damaged, in.MeterReading)
	if err != nil {
		return nil, err
	}
	return uc.execute(ctx, userID, plan)
}

// Damage registra un daño (devolución o general).
func (uc *MovementUseCase) Damage(ctx context.Context, userID string, in dto.DamageRequest) (*dto.MovementResultResponse, error) {
	plan, err := domaininv.Damage(
		domaininv.DamageKind(in.DamageType),
		domaininv.ElementCode(in.ElementCode),
		in.Amount,
		domaininv.StorageCode(in.StorageCode),
	)
	if err != nil {
		return nil, err
	}
	var storages []string
	if domaininv.DamageKind(in.DamageType) == domaininv.DamageGeneral {
		storages = append(storages, in.StorageCode)
	}
	if err := uc.requireCodes(ctx, storages, in.ElementCode); err != nil {
		return nil, err
	}
	return uc.execute(ctx, userID, plan)
}

// Unpack desarma pacas en bolsas sueltas.
func (uc *MovementUseCase) Unpack(ctx context.Context, userID string, in dto.UnpackRequest) (*dto.MovementResultResponse, error) {
	plan, err := domaininv.Unpack(in.Amount)
	if err != nil {
		return nil, err
	}
	return uc.execute(ctx, userID, plan)
}

// Manual registra un movimiento con ids suministrados por el usuario, sin receta.
func (uc *MovementUseCase) Manual(ctx context.Context, userID string, in dto.ManualMovementRequest) (*dto.MovementResultResponse, error) {
	req := entity.MovementRequest{
		StorageFromID: in.StorageFromID,
		StorageToID:   in.StorageToID,
		ElementFromID: in.ElementFromID,
		QuantityFrom:  in.QuantityFrom,
		CreatedBy:     userID,
	}
	if in.ElementToID != nil {
		req.ElementToID = *in.ElementToID
	}
	if in.QuantityTo != nil {
		req.QuantityTo = *in.QuantityTo
	}
	req, err := domaininv.ManualTransfer(req)
	if err != nil {
		return nil, err
	}
	// Validar que bodegas y elementos existan en el registro
	for _, id := range []*int64{req.StorageFromID, req.StorageToID} {
		if id == nil {
			continue
		}
		if _, err := uc.catalog.StorageByID(ctx, *id); err != nil {
			return nil, err
		}
	}
	for _, id := range []int64{req.ElementFromID, req.ElementToID} {
		if _, err := uc.catalog.ElementByID(ctx, id); err != nil {
			return nil, err
		}
	}
	req.TransactionID = uuid.New().String()
	return uc.run(ctx, req.TransactionID, []entity.MovementRequest{req}, nil)
}

// requireCodes verifica los códigos que trae la petición. Un código vacío toma el valor por
// defecto de la receta y no se verifica aquí.
func (uc *MovementUseCase) requireCodes(ctx context.Context, storages []string, element string) error {
	for _, code := range storages {
		if code == "" {
			continue
		}
		if _, err := uc.catalog.RequireStorage(ctx, code); err != nil {
			return err
		}
	}
	if element == "" {
		return nil
	}
	_, err := uc.catalog.RequireElement(ctx, element)
	return err
}

func (uc *MovementUseCase) execute(ctx context.Context, userID string, plan domaininv.Plan) (*dto.MovementResultResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	txID := uuid.New().String()
	reqs, err := uc.catalog.Resolve(ctx, plan.Transfers, entity.MovementRequest{TransactionID: txID, CreatedBy: userID})
	if err != nil {
		return nil, err
	}
	var reading *entity.MeterReading
	if plan.Meter != nil {
		reading = &entity.MeterReading{
			Meter:         plan.Meter.Meter,
			Value:         plan.Meter.Value,
			TransactionID: txID,
			CreatedBy:     userID,
		}
	}
	return uc.run(ctx, txID, reqs, reading)
}

func (uc *MovementUseCase) run(ctx context.Context, txID string, reqs []entity.MovementRequest, reading *entity.MeterReading) (*dto.MovementResultResponse, error) {
	var applied *Applied
	err := uc.txRunner.Run(ctx, func(repos Repositories) error {
		if reading != nil {
			if err := RecordMeter(ctx, repos, reading); err != nil {
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

	if e := uc.log.Debug(); e.Enabled() {
		e.Str("transaction_id", txID).
			Str("cause", string(reqs[0].Cause)).
			Int("movements", len(applied.Movements)).
			Int64("version", applied.Version).
			Msg("acción de inventario aplicada")
	}
	return ToResultResponse(txID, applied), nil
}

// RecordMeter agrega una lectura de contador; la lectura no puede ser menor que la última registrada.
// Meters.Last serializa las transacciones que leen el mismo contador, así la comparación y el
// alta no se cruzan con otra lectura concurrente.
func RecordMeter(ctx context.Context, repos Repositories, reading *entity.MeterReading) error {
	last, err := repos.Meters.Last(ctx, reading.Meter)
	if err != nil {
		return err
	}
	if last != nil && reading.Value.LessThan(last.Value) {
		return fmt.Errorf("%w: %s %s < %s", domain.ErrMeterRegression, reading.Meter, reading.Value, last.Value)
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now()
	}
	return repos.Meters.Create(ctx, reading)
}

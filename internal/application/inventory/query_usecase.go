package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/domain"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// QueryUseCase consultas de solo lectura: registros, estado actual y ledger.
type QueryUseCase struct {
	txRunner TxRunner
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(txRunner TxRunner) *QueryUseCase {
	return &QueryUseCase{txRunner: txRunner}
}

// ListStorages devuelve el registro de bodegas.
func (uc *QueryUseCase) ListStorages(ctx context.Context) ([]dto.StorageResponse, error) {
	list, err := uc.txRunner.Reader().Storages.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StorageResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.StorageResponse{ID: s.ID, Code: s.Code, Name: s.Name})
	}
	return out, nil
}

// ListElements devuelve el registro de elementos.
func (uc *QueryUseCase) ListElements(ctx context.Context) ([]dto.ElementResponse, error) {
	list, err := uc.txRunner.Reader().Elements.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ElementResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.ElementResponse{ID: e.ID, Code: e.Code, Name: e.Name, Type: string(e.Type)})
	}
	return out, nil
}

// GetState devuelve todos los StorageState con nombres. Si sinceVersion coincide con la
// versión actual no se leen las filas y Changed=false.
func (uc *QueryUseCase) GetState(ctx context.Context, sinceVersion *int64) (*dto.StateResponse, error) {
	repos := uc.txRunner.Reader()
	version, err := repos.States.Version(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.StateResponse{Version: version, Items: []dto.StorageStateResponse{}}
	if sinceVersion != nil && *sinceVersion == version {
		return out, nil
	}
	out.Changed = true
	views, err := repos.States.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		item := toStateResponse(v.StorageState)
		item.StorageCode = v.StorageCode
		item.StorageName = v.StorageName
		item.ElementCode = v.ElementCode
		item.ElementName = v.ElementName
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// ListMovements lista el ledger con filtros, paginación y orden.
func (uc *QueryUseCase) ListMovements(ctx context.Context, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	filter, err := movementFilter(&in)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.txRunner.Reader().Movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}
	for _, m := range list {
		out.Items = append(out.Items, ToMovementResponse(m))
	}
	return out, nil
}

func movementFilter(in *dto.MovementListRequest) (entity.MovementFilter, error) {
	limit, offset := in.Window()
	f := entity.MovementFilter{
		IncludeVoided: in.IncludeVoided,
		Limit:         limit,
		Offset:        offset,
		Sort:          in.Sort,
		Desc:          in.Order != "asc",
	}
	if f.Sort == "" {
		f.Sort = "id"
	}
	switch f.Sort {
	case "id", "created_at", "quantity_from":
	default:
		return f, fmt.Errorf("%w: sort %q", domain.ErrInvalidInput, in.Sort)
	}
	if in.Cause != "" {
		c := entity.Cause(in.Cause)
		if !c.Valid() {
			return f, fmt.Errorf("%w: cause %q", domain.ErrInvalidInput, in.Cause)
		}
		f.Cause = &c
	}
	if in.ElementID > 0 {
		id := in.ElementID
		f.ElementID = &id
	}
	var err error
	if f.From, err = parseTime(in.From); err != nil {
		return f, err
	}
	if f.To, err = parseTime(in.To); err != nil {
		return f, err
	}
	return f, nil
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

package inventory

import (
	"github.com/aguahielo/movimientos-api/internal/application/dto"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

// ToMovementResponse convierte una fila del ledger al DTO.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		StorageFromID: m.StorageFromID,
		StorageToID:   m.StorageToID,
		ElementFromID: m.ElementFromID,
		ElementToID:   m.ElementToID,
		QuantityFrom:  m.QuantityFrom,
		QuantityTo:    m.QuantityTo,
		Cause:         string(m.Cause),
		CreatedBy:     m.CreatedBy,
		Rollback:      m.Rollback,
		SaleID:        m.SaleID,
		CreatedAt:     m.CreatedAt,
		DeletedAt:     m.DeletedAt,
		DeletedBy:     m.DeletedBy,
	}
}

func toStateResponse(s entity.StorageState) dto.StorageStateResponse {
	return dto.StorageStateResponse{
		StorageID: s.StorageID,
		ElementID: s.ElementID,
		Quantity:  s.Quantity,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToResultResponse resume una acción confirmada.
func ToResultResponse(txID string, applied *Applied) *dto.MovementResultResponse {
	out := &dto.MovementResultResponse{
		TransactionID: txID,
		Version:       applied.Version,
		Movements:     make([]dto.MovementResponse, 0, len(applied.Movements)),
		States:        ToStateResponses(applied.States),
	}
	for _, m := range applied.Movements {
		out.Movements = append(out.Movements, ToMovementResponse(m))
	}
	return out
}

// ToStateResponses convierte los estados tocados al DTO.
func ToStateResponses(states []entity.StorageState) []dto.StorageStateResponse {
	out := make([]dto.StorageStateResponse, 0, len(states))
	for _, s := range states {
		out = append(out, toStateResponse(s))
	}
	return out
}

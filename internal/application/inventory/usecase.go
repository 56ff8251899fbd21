package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/application/dto"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterAndSweep.
// userID y email vienen del token: el usuario autenticado es el actor y el destinatario de las alertas.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID, email string, in dto.RegisterMovementRequest) (*dto.MovementCreatedResponse, error) {
	input := MovementInputDTO{
		UserID:    userID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Note:      in.Note,
	}
	if in.Quantity != nil {
		input.Quantity = *in.Quantity
	}
	result, sweep, err := uc.RegisterAndSweep(ctx, input, email)
	if err != nil {
		return nil, err
	}
	return &dto.MovementCreatedResponse{
		Message:         "movimiento registrado",
		ID:              result.MovementID,
		ProductQuantity: result.ProductQuantity,
		Sweep:           toSweepResultDTO(sweep),
	}, nil
}

func toSweepResultDTO(r *SweepReport) dto.SweepResultDTO {
	if r == nil {
		return dto.SweepResultDTO{}
	}
	out := dto.SweepResultDTO{
		Triggered: r.Triggered,
		LowStock:  r.Found,
		Sent:      r.Sent,
		Failed:    r.Failed,
	}
	if r.Err != nil {
		out.Error = "no se pudo completar la revisión de stock bajo"
	}
	return out
}

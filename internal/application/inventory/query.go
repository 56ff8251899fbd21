package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// DateLayout formato de fecha aceptado en los filtros (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// MovementQueryUseCase consultas de solo lectura sobre el historial de movimientos.
type MovementQueryUseCase struct {
	movRepo  repository.MovementRepository
	location *time.Location
}

// NewMovementQueryUseCase construye el caso de uso. loc es la zona en la que se interpreta el filtro de fecha.
func NewMovementQueryUseCase(movRepo repository.MovementRepository, loc *time.Location) *MovementQueryUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &MovementQueryUseCase{movRepo: movRepo, location: loc}
}

// BuildFilter valida y convierte los filtros del request al filtro del repositorio.
func (uc *MovementQueryUseCase) BuildFilter(in dto.MovementFilterRequest) (repository.MovementFilter, error) {
	filter := repository.MovementFilter{
		CategoryID: strings.TrimSpace(in.CategoryID),
		Location:   uc.location,
	}
	verr := &domain.ValidationError{}
	if filter.CategoryID != "" && !entity.IsValidID(filter.CategoryID) {
		verr.Add("category_id", "formato de id inválido")
	}
	if t := strings.TrimSpace(in.Type); t != "" {
		mt := entity.MovementType(t)
		if !mt.Valid() {
			verr.Add("type", "debe ser inbound, outbound o adjustment")
		}
		filter.Type = mt
	}
	if d := strings.TrimSpace(in.Date); d != "" {
		date, err := time.ParseInLocation(DateLayout, d, uc.location)
		if err != nil {
			verr.Add("date", "formato esperado YYYY-MM-DD")
		} else {
			filter.Date = &date
		}
	}
	if err := verr.OrNil(); err != nil {
		return repository.MovementFilter{}, err
	}
	return filter, nil
}

// ListMovements lista los movimientos que cumplen todos los filtros presentes, más recientes primero.
func (uc *MovementQueryUseCase) ListMovements(ctx context.Context, in dto.MovementFilterRequest) ([]dto.MovementResponse, error) {
	filter, err := uc.BuildFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// ListMovementsForProduct lista los movimientos de un producto; lista vacía si no tiene o no existe.
func (uc *MovementQueryUseCase) ListMovementsForProduct(ctx context.Context, productID string) ([]dto.MovementResponse, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.NewValidationError("product_id", "es obligatorio")
	}
	if !entity.IsValidID(productID) {
		return []dto.MovementResponse{}, nil
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

func toMovementResponses(list []*entity.MovementDetail) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		if m == nil {
			continue
		}
		out = append(out, dto.MovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			CategoryID:  m.CategoryID,
			UserID:      m.UserID,
			UserName:    m.UserName,
			Type:        string(m.Type),
			Quantity:    m.Quantity,
			Note:        m.Note,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}

package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
)

// MovementReport datos para el PDF del historial.
type MovementReport struct {
	Title       string
	GeneratedAt time.Time
	Location    *time.Location
	Filter      dto.MovementFilterRequest
	Movements   []dto.MovementResponse
}

// MovementReportUseCase genera el PDF del historial con los mismos filtros que ListMovements.
type MovementReportUseCase struct {
	query     *MovementQueryUseCase
	generator ReportGenerator
}

// NewMovementReportUseCase construye el caso de uso.
func NewMovementReportUseCase(query *MovementQueryUseCase, generator ReportGenerator) *MovementReportUseCase {
	return &MovementReportUseCase{query: query, generator: generator}
}

// GenerateReport consulta los movimientos y delega el render al generador.
func (uc *MovementReportUseCase) GenerateReport(ctx context.Context, in dto.MovementFilterRequest) ([]byte, error) {
	movements, err := uc.query.ListMovements(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateMovementReport(ctx, MovementReport{
		Title:       "Historial de movimientos",
		GeneratedAt: time.Now().In(uc.query.location),
		Location:    uc.query.location,
		Filter:      in,
		Movements:   movements,
	})
}

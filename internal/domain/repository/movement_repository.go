package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// MovementFilter filtros opcionales (AND) del historial de movimientos.
type MovementFilter struct {
	Type       entity.MovementType // vacío = cualquiera
	CategoryID string              // vacío = cualquiera
	Date       *time.Time          // solo se usa la parte de fecha
	Location   *time.Location      // zona en la que se compara Date; UTC si es nil
}

// MovementRepository define el puerto de persistencia para movimientos.
// La tabla es append-only: no existen Update ni Delete.
// Los listados se ordenan por created_at DESC, id DESC.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementDetail, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.MovementDetail, error)
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementSelect = `
		SELECT m.id, m.product_id, m.user_id, m.type, m.quantity, m.note, m.created_at,
		       p.name, p.category_id, COALESCE(u.name, '')
		FROM movements m
		JOIN products p ON p.id = m.product_id
		LEFT JOIN users u ON u.id = m.user_id`

const movementOrder = ` ORDER BY m.created_at DESC, m.id DESC`

// fkMovementUser nombre por defecto de la FK movements.user_id (migración 000001).
const fkMovementUser = "movements_user_id_fkey"

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: la tabla movements es append-only.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, product_id, user_id, type, quantity, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.UserID, string(m.Type), m.Quantity, m.Note, m.CreatedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err) && pgConstraint(err) == fkMovementUser:
			// el usuario del token ya no existe
			return domain.ErrUnauthorized
		case isForeignKeyViolation(err), isInvalidID(err):
			return domain.ErrNotFound
		}
		return storageErr("insert movement", err)
	}
	return nil
}

// List lista movimientos aplicando los filtros presentes (AND).
// La fecha se compara contra created_at convertido a la zona del filtro.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementDetail, error) {
	query := movementSelect + ` WHERE 1=1`
	args := []any{}
	pos := 1
	if f.Type != "" {
		query += fmt.Sprintf(" AND m.type = $%d", pos)
		args = append(args, string(f.Type))
		pos++
	}
	if f.CategoryID != "" {
		query += fmt.Sprintf(" AND p.category_id = $%d", pos)
		args = append(args, f.CategoryID)
		pos++
	}
	if f.Date != nil {
		loc := f.Location
		if loc == nil {
			loc = time.UTC
		}
		query += fmt.Sprintf(" AND (m.created_at AT TIME ZONE $%d)::date = $%d::date", pos, pos+1)
		args = append(args, loc.String(), f.Date.Format("2006-01-02"))
	}
	query += movementOrder
	return r.list(ctx, "list movements", query, args...)
}

// ListByProduct lista los movimientos de un producto.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.MovementDetail, error) {
	return r.list(ctx, "list movements by product", movementSelect+` WHERE m.product_id = $1`+movementOrder, productID)
}

func (r *MovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.MovementDetail, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return []*entity.MovementDetail{}, nil
		}
		return nil, storageErr(op, err)
	}
	defer rows.Close()
	list := make([]*entity.MovementDetail, 0)
	for rows.Next() {
		var m entity.MovementDetail
		var typ string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.UserID, &typ, &m.Quantity, &m.Note, &m.CreatedAt,
			&m.ProductName, &m.CategoryID, &m.UserName); err != nil {
			return nil, storageErr("scan movement", err)
		}
		m.Type = entity.MovementType(typ)
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return list, nil
}

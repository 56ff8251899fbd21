package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo único escritor de products.quantity (usable con pool o tx).
// La aritmética va dentro del UPDATE: dos entradas concurrentes se serializan por el lock de fila.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const (
	increaseSQL = `
		UPDATE products SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING quantity`
	decreaseSQL = `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1
		RETURNING quantity`
	decreaseGuardedSQL = `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity`
	setSQL = `
		UPDATE products SET quantity = $2, updated_at = now()
		WHERE id = $1
		RETURNING quantity`
	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
)

// Increase suma quantity al stock del producto.
func (r *StockRepo) Increase(ctx context.Context, productID string, quantity int64) (int64, error) {
	return r.update(ctx, "increase stock", increaseSQL, productID, quantity)
}

// Decrease resta quantity. Con allowNegative=false la condición va en el WHERE y,
// si no se actualiza ninguna fila, se distingue entre producto inexistente y stock insuficiente.
func (r *StockRepo) Decrease(ctx context.Context, productID string, quantity int64, allowNegative bool) (int64, error) {
	if allowNegative {
		return r.update(ctx, "decrease stock", decreaseSQL, productID, quantity)
	}
	var newQty int64
	err := r.q.QueryRow(ctx, decreaseGuardedSQL, productID, quantity).Scan(&newQty)
	if err == nil {
		return newQty, nil
	}
	if isInvalidID(err) {
		return 0, domain.ErrNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, storageErr("decrease stock", err)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, productExistsSQL, productID).Scan(&exists); err != nil {
		return 0, storageErr("check product", err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientStock
}

// Set fija la cantidad absoluta (ajuste).
func (r *StockRepo) Set(ctx context.Context, productID string, quantity int64) (int64, error) {
	return r.update(ctx, "set stock", setSQL, productID, quantity)
}

func (r *StockRepo) update(ctx context.Context, op, query, productID string, quantity int64) (int64, error) {
	var newQty int64
	err := r.q.QueryRow(ctx, query, productID, quantity).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return 0, domain.ErrNotFound
		}
		return 0, storageErr(op, err)
	}
	return newQty, nil
}

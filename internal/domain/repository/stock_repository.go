package repository

import "context"

// StockRepository es el único escritor de products.quantity.
// Cada método es una sentencia atómica (aritmética dentro del UPDATE) y devuelve la cantidad resultante.
// Devuelve domain.ErrNotFound si el producto no existe.
type StockRepository interface {
	Increase(ctx context.Context, productID string, quantity int64) (int64, error)
	// Decrease con allowNegative=false devuelve domain.ErrInsufficientStock si no alcanza.
	Decrease(ctx context.Context, productID string, quantity int64, allowNegative bool) (int64, error)
	// Set fija la cantidad absoluta (ajuste; última escritura gana).
	Set(ctx context.Context, productID string, quantity int64) (int64, error)
}

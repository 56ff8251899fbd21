package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// LowStockItem resultado crudo de un producto por debajo de su cantidad mínima.
type LowStockItem struct {
	ProductID       string
	ProductName     string
	CategoryName    string // vacío si la categoría no se pudo resolver
	Quantity        int64
	QuantityMinimum int64
}

// ProductRepository define el puerto de persistencia del catálogo de productos (DIP).
// Update no modifica Quantity: ese campo pertenece al libro de movimientos (StockRepository).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error

	// ListBelowMinimum devuelve los productos con quantity < quantity_minimum,
	// ordenados por mayor déficit primero.
	ListBelowMinimum(ctx context.Context) ([]LowStockItem, error)
}

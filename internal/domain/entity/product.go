package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultQuantityMinimum umbral de stock bajo cuando el producto no define uno.
const DefaultQuantityMinimum int64 = 5

// Product representa un producto del catálogo.
// Quantity solo la modifica el libro de movimientos; Update de catálogo nunca la toca.
type Product struct {
	ID              string
	CategoryID      string
	CategoryName    string // solo lectura (JOIN)
	Name            string
	Description     string
	Price           decimal.Decimal // precio unitario, no negativo
	Quantity        int64
	QuantityMinimum int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsBelowMinimum indica si el producto está bajo su umbral de stock.
func (p *Product) IsBelowMinimum() bool {
	return p.Quantity < p.QuantityMinimum
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// Quantity es el stock inicial; después solo cambia vía movimientos.
type CreateProductRequest struct {
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description" validate:"max=1000"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int64           `json:"quantity" validate:"gte=0"`
	QuantityMinimum *int64          `json:"quantity_minimum" validate:"omitempty,gte=0"`
	CategoryID      string          `json:"category_id" validate:"required,uuid"`
}

// UpdateProductRequest parche parcial del catálogo (sin Quantity).
type UpdateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=1000"`
	Price           *decimal.Decimal `json:"price"`
	QuantityMinimum *int64           `json:"quantity_minimum" validate:"omitempty,gte=0"`
	CategoryID      *string          `json:"category_id" validate:"omitempty,uuid"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int64           `json:"quantity"`
	QuantityMinimum int64           `json:"quantity_minimum"`
	LowStock        bool            `json:"low_stock"` // quantity < quantity_minimum
	CategoryID      string          `json:"category_id"`
	CategoryName    string          `json:"category_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ReplenishmentSuggestionDTO producto bajo mínimo con la cantidad sugerida de pedido.
type ReplenishmentSuggestionDTO struct {
	Priority          int    `json:"priority"`
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	CategoryName      string `json:"category_name"`
	CurrentQuantity   int64  `json:"current_quantity"`
	QuantityMinimum   int64  `json:"quantity_minimum"`
	IdealQuantity     int64  `json:"ideal_quantity"`
	SuggestedOrderQty int64  `json:"suggested_order_qty"`
}

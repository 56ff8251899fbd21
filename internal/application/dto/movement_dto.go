package dto

import "time"

// RegisterMovementRequest entrada HTTP para registrar un movimiento.
// Quantity es puntero para distinguir "ausente" de 0 (ajuste a cero es válido).
type RegisterMovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Type      string `json:"type" validate:"required,oneof=inbound outbound adjustment"`
	Quantity  *int64 `json:"quantity" validate:"required,gte=0"`
	Note      string `json:"note" validate:"max=500"`
}

// SweepResultDTO resumen de la revisión de stock bajo posterior al movimiento.
type SweepResultDTO struct {
	Triggered bool   `json:"triggered"`
	LowStock  int    `json:"low_stock"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// MovementCreatedResponse salida de POST /movements.
type MovementCreatedResponse struct {
	Message         string         `json:"message"`
	ID              string         `json:"id"`
	ProductQuantity int64          `json:"product_quantity"`
	Sweep           SweepResultDTO `json:"sweep"`
}

// MovementFilterRequest filtros opcionales del historial (query string).
type MovementFilterRequest struct {
	Type       string `query:"type" validate:"omitempty,oneof=inbound outbound adjustment"`
	CategoryID string `query:"category_id" validate:"omitempty,uuid"`
	Date       string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// MovementResponse movimiento con datos de producto y usuario.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	CategoryID  string    `json:"category_id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

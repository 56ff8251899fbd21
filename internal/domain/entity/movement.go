package entity

import "time"

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementTypeInbound    MovementType = "inbound"    // entrada: suma
	MovementTypeOutbound   MovementType = "outbound"   // salida: resta
	MovementTypeAdjustment MovementType = "adjustment" // ajuste: fija la cantidad absoluta
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeInbound, MovementTypeOutbound, MovementTypeAdjustment:
		return true
	}
	return false
}

// TriggersLowStockSweep indica si después del movimiento se revisa el stock bajo.
// Las entradas nunca disparan la revisión.
func (t MovementType) TriggersLowStockSweep() bool {
	return t == MovementTypeOutbound || t == MovementTypeAdjustment
}

// Apply devuelve la cantidad resultante de aplicar el movimiento sobre current.
func (t MovementType) Apply(current, quantity int64) int64 {
	switch t {
	case MovementTypeInbound:
		return current + quantity
	case MovementTypeOutbound:
		return current - quantity
	default:
		return quantity
	}
}

// Movement registro inmutable de un evento que afecta el stock.
// Quantity es un delta no negativo para entradas/salidas y el nivel absoluto para ajustes.
type Movement struct {
	ID        string
	ProductID string
	UserID    string
	Type      MovementType
	Quantity  int64
	Note      string
	CreatedAt time.Time
}

// MovementDetail movimiento con los datos de producto, categoría y usuario (lectura).
type MovementDetail struct {
	Movement
	ProductName string
	CategoryID  string
	UserName    string
}

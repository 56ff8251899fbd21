package entity

import "github.com/google/uuid"

// IsValidID indica si id es un UUID en forma canónica (8-4-4-4-12), el formato de las columnas id.
func IsValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

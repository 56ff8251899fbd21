package dto

import "github.com/jhoicas/estoque-api/internal/domain"

// ErrorResponse cuerpo de error HTTP: código estable + detalle legible.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// MessageResponse respuesta simple con mensaje (y opcionalmente el id afectado).
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

package cache

import (
	"context"
	"time"
)

// Entry respuesta guardada para una clave de idempotencia.
// Pending indica que la primera petición con esa clave todavía se está procesando.
type Entry struct {
	Pending     bool   `json:"pending"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore guarda la respuesta de POST /movements por clave.
type IdempotencyStore interface {
	// Reserve marca la clave como en proceso. false si ya existía.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get devuelve la entrada guardada; nil si no existe o expiró.
	Get(ctx context.Context, key string) (*Entry, error)
	// Complete guarda la respuesta final.
	Complete(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	// Release borra la clave (la petición falló y puede reintentarse).
	Release(ctx context.Context, key string) error
	Close() error
}

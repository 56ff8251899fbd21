package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/infrastructure/cache"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// Headers de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// Idempotency hace seguro el reintento de una petición con el mismo Idempotency-Key.
// La clave se aísla por usuario. Solo se guardan respuestas 2xx; ante error la clave
// se libera para permitir el reintento. Sin header la petición pasa sin cambios.
// Debe usarse DESPUÉS de AuthMiddleware.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > 200 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado largo"})
		}
		ctx := c.UserContext()
		scoped := GetUserID(c) + ":" + key

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			// Sin almacén no hay garantía, pero el movimiento puede registrarse igual.
			log.Warn().Err(err).Msg("idempotency: reserva fallida, se procesa sin clave")
			return c.Next()
		}
		if !reserved {
			entry, err := store.Get(ctx, scoped)
			if err != nil {
				return writeError(c, log, err)
			}
			if entry == nil || entry.Pending {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "una petición con la misma clave está en proceso"})
			}
			c.Set(HeaderReplayed, "true")
			if entry.ContentType != "" {
				c.Set(fiber.HeaderContentType, entry.ContentType)
			}
			return c.Status(entry.Status).Send(entry.Body)
		}

		if err := c.Next(); err != nil {
			releaseKey(c, store, scoped, log)
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			releaseKey(c, store, scoped, log)
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		entry := cache.Entry{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
		}
		if err := store.Complete(ctx, scoped, entry, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotency: no se pudo guardar la respuesta")
		}
		return nil
	}
}

func releaseKey(c *fiber.Ctx, store cache.IdempotencyStore, key string, log *logger.Logger) {
	if err := store.Release(c.UserContext(), key); err != nil {
		log.Warn().Err(err).Msg("idempotency: no se pudo liberar la clave")
	}
}

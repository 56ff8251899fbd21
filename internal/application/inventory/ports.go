package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// Notifier puerto de salida para alertas de stock bajo (SMTP, Kafka, log).
// El contexto lleva el timeout de cada envío.
type Notifier interface {
	SendLowStockAlert(ctx context.Context, recipient string, alert LowStockAlert) error
}

// ReportGenerator genera el PDF del historial de movimientos.
type ReportGenerator interface {
	GenerateMovementReport(ctx context.Context, report MovementReport) ([]byte, error)
}

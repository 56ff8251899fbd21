package notify

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

var _ inventory.Notifier = (*LogNotifier)(nil)

// LogNotifier registra las alertas en el log estructurado (desarrollo y entornos sin SMTP).
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendLowStockAlert(ctx context.Context, recipient string, alert inventory.LowStockAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Warn().
		Str("recipient", recipient).
		Str("product_id", alert.ProductID).
		Str("product_name", alert.ProductName).
		Str("category", alert.CategoryName).
		Int64("quantity", alert.Quantity).
		Int64("quantity_minimum", alert.QuantityMinimum).
		Msg(alert.Subject())
	return nil
}

package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// DefaultNotifyTimeout límite de cada envío cuando no se configura otro.
const DefaultNotifyTimeout = 10 * time.Second

// SweepReport resultado de una revisión de stock bajo.
type SweepReport struct {
	Triggered bool
	Found     int
	Sent      int
	Failed    int
	Err       error
}

// LowStockSweepUseCase busca productos bajo su mínimo y envía una alerta por producto.
// No guarda estado: cada ejecución vuelve a notificar todo lo que siga bajo mínimo.
type LowStockSweepUseCase struct {
	productRepo repository.ProductRepository
	notifier    Notifier
	timeout     time.Duration
	log         *logger.Logger
}

// NewLowStockSweepUseCase construye el caso de uso; timeout <= 0 usa DefaultNotifyTimeout.
func NewLowStockSweepUseCase(productRepo repository.ProductRepository, notifier Notifier, timeout time.Duration, log *logger.Logger) *LowStockSweepUseCase {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LowStockSweepUseCase{
		productRepo: productRepo,
		notifier:    notifier,
		timeout:     timeout,
		log:         log,
	}
}

// SweepAndNotify consulta los productos con quantity < quantity_minimum y envía una alerta
// por cada uno a recipient. Si la consulta falla se aborta y devuelve el error; los fallos
// de envío se registran y se continúa con el siguiente producto.
func (uc *LowStockSweepUseCase) SweepAndNotify(ctx context.Context, recipient string) (*SweepReport, error) {
	items, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	report := &SweepReport{Triggered: true, Found: len(items)}
	for _, item := range items {
		alert := NewLowStockAlert(item)
		if err := uc.send(ctx, recipient, alert); err != nil {
			report.Failed++
			uc.log.Warn().Err(err).
				Str("product_id", alert.ProductID).
				Str("recipient", recipient).
				Msg("no se pudo enviar alerta de stock bajo")
			continue
		}
		report.Sent++
	}
	if report.Found > 0 {
		uc.log.Info().
			Int("found", report.Found).
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Msg("revisión de stock bajo")
	}
	return report, nil
}

func (uc *LowStockSweepUseCase) send(ctx context.Context, recipient string, alert LowStockAlert) error {
	sendCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.notifier.SendLowStockAlert(sendCtx, recipient, alert)
}

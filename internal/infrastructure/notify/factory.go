package notify

import (
	"fmt"
	"strings"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// Drivers soportados por NOTIFIER_DRIVER.
const (
	DriverLog   = "log"
	DriverSMTP  = "smtp"
	DriverKafka = "kafka"
)

// New devuelve el notificador según cfg.Notifier.Driver y una función para liberar recursos.
func New(cfg *config.Config, log *logger.Logger) (inventory.Notifier, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Notifier.Driver)) {
	case "", DriverLog:
		return NewLogNotifier(log), noop, nil
	case DriverSMTP:
		n, err := NewSMTPNotifier(cfg.Mail)
		if err != nil {
			return nil, nil, err
		}
		return n, noop, nil
	case DriverKafka:
		n, err := NewKafkaNotifier(cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	default:
		return nil, nil, fmt.Errorf("notifier: driver desconocido %q", cfg.Notifier.Driver)
	}
}

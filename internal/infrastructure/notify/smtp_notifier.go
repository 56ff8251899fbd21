package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/pkg/config"
	"gopkg.in/gomail.v2"
)

var _ inventory.Notifier = (*SMTPNotifier)(nil)

// mailSender lo cumple *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier envía la alerta como correo HTML.
type SMTPNotifier struct {
	sender mailSender
	from   string
}

// NewSMTPNotifier construye el notificador con el servidor configurado.
func NewSMTPNotifier(cfg config.MailConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: EMAIL_HOST vacío")
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	if from == "" {
		return nil, errors.New("smtp: remitente vacío (EMAIL_FROM o EMAIL_USER)")
	}
	return &SMTPNotifier{
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}, nil
}

func (n *SMTPNotifier) SendLowStockAlert(ctx context.Context, recipient string, alert inventory.LowStockAlert) error {
	if recipient == "" {
		return errors.New("smtp: destinatario vacío")
	}
	body, err := alert.HTMLBody()
	if err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", alert.Subject())
	msg.SetBody("text/html", body)

	// gomail no recibe contexto: el envío corre aparte y se abandona si vence el timeout.
	done := make(chan error, 1)
	go func() { done <- n.sender.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: enviar alerta %s: %w", alert.ProductID, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp: enviar alerta %s: %w", alert.ProductID, ctx.Err())
	}
}

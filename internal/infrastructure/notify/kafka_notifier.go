package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/segmentio/kafka-go"
)

var _ inventory.Notifier = (*KafkaNotifier)(nil)

// messageWriter lo cumple *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// LowStockEvent evento publicado en el topic de alertas.
type LowStockEvent struct {
	Event      string                  `json:"event"`
	Recipient  string                  `json:"recipient"`
	Subject    string                  `json:"subject"`
	Alert      inventory.LowStockAlert `json:"alert"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// KafkaNotifier publica cada alerta como evento JSON; la entrega final queda a cargo de un consumidor.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
}

// NewKafkaNotifier construye el productor con los brokers configurados.
func NewKafkaNotifier(cfg config.KafkaConfig) (*KafkaNotifier, error) {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return nil, errors.New("kafka: KAFKA_BROKERS vacío")
	}
	if cfg.AlertTopic == "" {
		return nil, errors.New("kafka: KAFKA_ALERT_TOPIC vacío")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.AlertTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &KafkaNotifier{writer: writer, topic: cfg.AlertTopic}, nil
}

func (n *KafkaNotifier) SendLowStockAlert(ctx context.Context, recipient string, alert inventory.LowStockAlert) error {
	payload, err := json.Marshal(LowStockEvent{
		Event:      "inventory.low_stock",
		Recipient:  recipient,
		Subject:    alert.Subject(),
		Alert:      alert,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka: serializar alerta: %w", err)
	}
	// Key = producto: las alertas de un mismo producto caen en la misma partición.
	if err := n.writer.WriteMessages(ctx, kafka.Message{Key: []byte(alert.ProductID), Value: payload}); err != nil {
		return fmt.Errorf("kafka: publicar en %s: %w", n.topic, err)
	}
	return nil
}

// Close cierra el productor.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Package kafka publica los movimientos de stock confirmados.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/inventory"
	"github.com/jhoicas/almacen-bridge/pkg/retry"
)

var _ inventory.MovementPublisher = (*Publisher)(nil)

// EventType cabecera que identifica el evento.
const EventType = "stock.movement"

// Publisher productor síncrono: el evento queda confirmado por todos los ISR antes de retornar.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewPublisher conecta con los brokers reintentando según policy (el broker puede arrancar después).
func NewPublisher(ctx context.Context, brokers []string, topic string, policy retry.Policy, log zerolog.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_1_0_0
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = 5

	log = log.With().Str("component", "kafka").Str("topic", topic).Logger()

	var producer sarama.SyncProducer
	_, err := policy.Do(ctx, func(_ context.Context, attempt int) error {
		p, err := sarama.NewSyncProducer(brokers, config)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", policy.Attempts).Msg("esperando a Kafka")
			return err
		}
		producer = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kafka: producer: %w", err)
	}
	log.Info().Strs("brokers", brokers).Msg("producer Kafka inicializado")
	return NewPublisherWithProducer(producer, topic, log), nil
}

// NewPublisherWithProducer usa un productor ya creado (tests con sarama/mocks).
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, log: log}
}

// PublishMovement envía el evento con clave product_id: los movimientos de un producto conservan el orden.
func (p *Publisher) PublishMovement(_ context.Context, ev dto.MovementEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: marshal: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(strconv.FormatInt(ev.ProductID, 10)),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventType)},
			{Key: []byte("event_id"), Value: []byte(ev.EventID)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka: send: %w", err)
	}
	p.log.Debug().Str("event_id", ev.EventID).Int32("partition", partition).Int64("offset", offset).Msg("movimiento publicado")
	return nil
}

// Close libera el productor.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/membership-platform/pkg/logger"
)

// Publisher emits settled-checkout confirmations. It uses a sync producer
// with acks from all replicas: the confirmation email is the member's
// receipt, so a dropped event is worse than a slow checkout response.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher connects a sync producer to the given brokers.
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{producer: producer}, nil
}

// PublishCheckoutConfirmed emits one confirmation per settled registration or
// membership. Messages are keyed by record so redeliveries of the same
// settlement stay on one partition and reach the consumer in order.
func (p *Publisher) PublishCheckoutConfirmed(ctx context.Context, event CheckoutConfirmedEvent) error {
	ctx, span := otel.Tracer("kafka-publisher").Start(ctx, "kafka.publish.checkout_confirmed",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicCheckoutConfirmed),
			attribute.String("record.type", event.RecordType),
			attribute.Int64("record.id", int64(event.RecordID)),
		),
	)
	defer span.End()

	if event.EventID == "" {
		event.EventID = "evt_" + uuid.New().String()
	}
	event.EventType = EventTypeCheckoutConfirmed
	event.Timestamp = time.Now()
	span.SetAttributes(attribute.String("event.id", event.EventID))

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:   TopicCheckoutConfirmed,
		Key:     sarama.StringEncoder(fmt.Sprintf("%s_%d", event.RecordType, event.RecordID)),
		Value:   sarama.ByteEncoder(payload),
		Headers: messageHeaders(ctx, event.EventID),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("record_type", event.RecordType).
			Uint("record_id", event.RecordID).
			Msg("Failed to publish confirmation event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published")

	logger.Info(ctx).
		Str("event_id", event.EventID).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("record_type", event.RecordType).
		Uint("record_id", event.RecordID).
		Msg("Checkout confirmed event published")

	return nil
}

// messageHeaders builds the event headers plus the W3C trace context, so the
// notification consumer's spans join the checkout trace.
func messageHeaders(ctx context.Context, eventID string) []sarama.RecordHeader {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(EventTypeCheckoutConfirmed)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
	}
	return headers
}

// Close shuts down the producer.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

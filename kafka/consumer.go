package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/membership-platform/pkg/logger"
)

// ConfirmationHandler processes one settled-checkout event. A non-nil error
// marks the event as failed in the span but does not trigger redelivery;
// offsets are committed either way so a permanently broken event cannot
// wedge the group.
type ConfirmationHandler func(ctx context.Context, event CheckoutConfirmedEvent) error

// Consumer reads checkout confirmations off Kafka and feeds them to a single
// handler. The platform publishes exactly one event type on this topic, so
// there is no dispatch table; anything else on the topic is logged and
// skipped.
type Consumer struct {
	group   sarama.ConsumerGroup
	groupID string
	handler ConfirmationHandler
}

// NewConsumer joins the given consumer group on the confirmation topic.
func NewConsumer(brokers []string, groupID string, handler ConfirmationHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Str("topic", TopicCheckoutConfirmed).
		Msg("Kafka consumer initialized")

	return &Consumer{
		group:   group,
		groupID: groupID,
		handler: handler,
	}, nil
}

// Start begins consuming in the background until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer started without a handler")
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Logger.Info().Msg("Consumer context cancelled, stopping...")
				return
			default:
				if err := c.group.Consume(ctx, []string{TopicCheckoutConfirmed}, &sessionHandler{consumer: c}); err != nil {
					logger.Logger.Error().
						Err(err).
						Msg("Consumer session ended with error")
				}
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			logger.Logger.Error().
				Err(err).
				Msg("Consumer error")
		}
	}()

	logger.Logger.Info().
		Str("group_id", c.groupID).
		Str("topic", TopicCheckoutConfirmed).
		Msg("Kafka consumer started")

	return nil
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	if c.group != nil {
		return c.group.Close()
	}
	return nil
}

type sessionHandler struct {
	consumer *Consumer
}

func (h *sessionHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *sessionHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *sessionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.handleMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *sessionHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var eventType, eventID string
	carrier := propagation.MapCarrier{}
	for _, header := range message.Headers {
		switch string(header.Key) {
		case "traceparent", "tracestate":
			carrier[string(header.Key)] = string(header.Value)
		case "event_type":
			eventType = string(header.Value)
		case "event_id":
			eventID = string(header.Value)
		}
	}

	// Continue the trace the checkout coordinator or webhook handler started.
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	ctx, span := otel.Tracer("kafka-consumer").Start(ctx, "kafka.consume.checkout_confirmed",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	if eventType != EventTypeCheckoutConfirmed {
		span.SetStatus(codes.Error, "Unexpected event type")
		logger.Logger.Warn().
			Str("event_type", eventType).
			Str("topic", message.Topic).
			Msg("Skipping message with unexpected event type")
		return
	}

	var event CheckoutConfirmedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to unmarshal event")
		logger.Logger.Error().
			Err(err).
			Str("event_id", eventID).
			Msg("Failed to unmarshal confirmation event")
		return
	}

	if err := h.consumer.handler(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Handler failed")
		logger.Logger.Error().
			Err(err).
			Str("event_id", eventID).
			Str("public_id", event.PublicID).
			Msg("Confirmation handler failed")
		return
	}

	span.SetStatus(codes.Ok, "Event processed")
}

package event

import (
	"context"
	"log/slog"

	pkgkafka "github.com/dressly/storefront/pkg/kafka"
	"github.com/dressly/storefront/pkg/logger"
)

// Kafka topic for cart change events.
const TopicCartChanged = "storefront.cart.changed"

// Aggregate type constant.
const AggregateTypeCart = "cart"

// Source identifier for events originating from the storefront service.
const SourceStorefront = "storefront-service"

// Producer fans a cart change out to the in-process bus and to Kafka. Bus
// delivery feeds local subscribers (the cart badge); the Kafka event is for
// other services. Kafka publish errors are logged, never surfaced: the cart
// mutation that triggered the event has already succeeded.
type Producer struct {
	bus    *Bus
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a cart change producer. The Kafka producer may be nil,
// in which case only the in-process bus is notified.
func NewProducer(bus *Bus, kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		bus:    bus,
		kafka:  kafka,
		logger: logger,
	}
}

// CartChanged publishes a cart change. Implements reconciler.Notifier.
func (p *Producer) CartChanged(ctx context.Context, userID, productID string, lineCount int) {
	change := CartChange{
		UserID:    userID,
		ProductID: productID,
		LineCount: lineCount,
	}

	p.bus.Publish(change)

	if p.kafka == nil {
		return
	}

	evt, err := pkgkafka.NewEvent(TopicCartChanged, userID, AggregateTypeCart, SourceStorefront, change)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build cart.changed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicCartChanged, evt); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish cart.changed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

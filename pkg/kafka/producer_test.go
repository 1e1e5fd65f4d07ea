package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront.cart.changed", Topic("cart", "changed"))
	assert.Equal(t, "storefront.selection.cleared", Topic("selection", "cleared"))
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"broker1:9092", "broker2:9092"})

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestProducer_PingNoBrokers(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: nil}, slog.Default())
	defer func() { _ = p.Close() }()

	err := p.Ping(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

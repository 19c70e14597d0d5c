// Package kafka publishes completed prediction records to a sink topic so
// downstream consumers (notifications, analytics) can react to new forecasts.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/asthma-forecast-service/internal/config"
	"github.com/couchcryptid/asthma-forecast-service/internal/domain"
)

// Publisher produces prediction events to a Kafka topic.
// It implements forecast.EventSink.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and publishes prediction records to the sink topic in a
// single WriteMessages call for efficiency.
func (p *Publisher) Publish(ctx context.Context, recs []domain.PredictionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(recs))
	for i := range recs {
		msg, err := serializeToMessage(recs[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a PredictionRecord into a Kafka message. The
// deterministic record ID keys the message so recomputed windows compact
// cleanly.
func serializeToMessage(rec domain.PredictionRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "target", Value: []byte(rec.Target)},
			{Key: "tier", Value: []byte(rec.Tier)},
			{Key: "updated_at", Value: []byte(rec.UpdatedAt.Format(time.RFC3339))},
		},
	}, nil
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-state-service/internal/config"
	"github.com/couchcryptid/weather-state-service/internal/domain"
	"github.com/couchcryptid/weather-state-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// stateKey partitions all events together; there is a single state instance.
const stateKey = "app-state"

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes every state change to a Kafka topic as JSON.
// Its Publish method is meant to be registered with appstate.Store.Subscribe.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured state topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaStateTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
		Completion: func(msgs []kafkago.Message, err error) {
			if err != nil {
				metrics.EventPublishErrors.Add(float64(len(msgs)))
				logger.Warn("state event delivery failed", "error", err, "count", len(msgs))
				return
			}
			metrics.EventsPublished.Add(float64(len(msgs)))
		},
	}
	return &Publisher{writer: w, timeout: 5 * time.Second, logger: logger, metrics: metrics}
}

// Publish serializes st and hands it to the writer. Failures are logged and
// never reach the mutator that triggered the change.
func (p *Publisher) Publish(st domain.State) {
	msg, err := serializeToMessage(st)
	if err != nil {
		p.metrics.EventPublishErrors.Inc()
		p.logger.Error("serialize state event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventPublishErrors.Inc()
		p.logger.Warn("publish state event failed", "error", err)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a State into a Kafka message.
func serializeToMessage(st domain.State) (kafkago.Message, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize state: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(stateKey),
		Value: data,
		Time:  st.UpdatedAt,
		Headers: []kafkago.Header{
			{Key: "loading", Value: []byte(strconv.FormatBool(st.Loading))},
			{Key: "updated_at", Value: []byte(st.UpdatedAt.Format(time.RFC3339))},
		},
	}, nil
}

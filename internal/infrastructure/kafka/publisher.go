package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/letsema/mfi/internal/domain/event"
	pkgkafka "github.com/letsema/mfi/pkg/kafka"
)

// Producer is the subset of pkgkafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Topics maps event families to topics.
type Topics struct {
	Lending string
	Credit  string
}

// EventPublisher implements port.EventPublisher by writing events to Kafka.
// Lending events and credit events go to separate topics; each event is
// keyed by its aggregate so one aggregate's events stay ordered.
type EventPublisher struct {
	producer Producer
	topics   Topics
	logger   *slog.Logger
}

// NewEventPublisher creates a publisher over producer.
func NewEventPublisher(producer Producer, topics Topics, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		topics:   topics,
		logger:   logger,
	}
}

// Publish serialises and sends domain events, grouped by topic.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	byTopic := make(map[string][]pkgkafka.Message)
	var order []string
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		topic := p.topicFor(evt.EventType())
		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"institution_id", evt.TenantID(),
			"topic", topic,
			"payload_size", len(payload),
		)

		if _, seen := byTopic[topic]; !seen {
			order = append(order, topic)
		}
		byTopic[topic] = append(byTopic[topic], pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type":     evt.EventType(),
				"event_id":       evt.EventID(),
				"institution_id": evt.TenantID(),
			},
		})
	}

	for _, topic := range order {
		if err := p.producer.Publish(ctx, topic, byTopic[topic]...); err != nil {
			return fmt.Errorf("failed to publish events to topic %s: %w", topic, err)
		}
	}
	return nil
}

func (p *EventPublisher) topicFor(eventType string) string {
	if strings.HasPrefix(eventType, "credit.") {
		return p.topics.Credit
	}
	return p.topics.Lending
}

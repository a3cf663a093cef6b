package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/metrics"
	"github.com/prohmpiriya/postboard-api/pkg/kafka"
	"github.com/prohmpiriya/postboard-api/pkg/logger"
	"go.uber.org/zap"
)

// EventPublisher publishes user and post lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, eventType domain.EventType, aggregateID, actorID string, payload interface{}) error
	Close() error
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "postboard.events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "postboard-api"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = serviceName + "-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// Publish sends one event keyed by its aggregate
func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType domain.EventType, aggregateID, actorID string, payload interface{}) error {
	event := domain.NewEvent(uuid.New().String(), eventType, aggregateID, actorID, payload)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(eventType),
			"event_id":     event.ID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
		Timestamp: event.OccurredAt,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpEventPublisher is used when Kafka is disabled
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish is a no-op
func (p *NoOpEventPublisher) Publish(ctx context.Context, eventType domain.EventType, aggregateID, actorID string, payload interface{}) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}

// publishBestEffort never fails the caller: the write already committed
func publishBestEffort(ctx context.Context, p EventPublisher, eventType domain.EventType, aggregateID, actorID string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, aggregateID, actorID, payload); err != nil {
		metrics.RecordEventDropped(ctx, string(eventType))
		logger.Get().WithContext(ctx).Warn("Failed to publish event",
			zap.String("event_type", string(eventType)),
			zap.String("aggregate_id", aggregateID),
			zap.Error(err),
		)
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/RichMarin19/fast-life-sub000/internal/config"
	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// BehavioralEvent is one tracker-manager occurrence (session start/stop,
// stage entry, milestone crossing, periodic check) carried on the event
// topic. Each event turns into exactly one scheduling attempt.
type BehavioralEvent struct {
	ID         string                `json:"id"`
	Activity   guidance.ActivityType `json:"activity"`
	Trigger    guidance.Trigger      `json:"trigger"`
	Context    guidance.Context      `json:"context"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// NewBehavioralEvent assigns an event ID and stamps the occurrence time.
func NewBehavioralEvent(activity guidance.ActivityType, trigger guidance.Trigger, ctx guidance.Context) BehavioralEvent {
	return BehavioralEvent{
		ID:         uuid.New().String(),
		Activity:   activity,
		Trigger:    trigger,
		Context:    ctx,
		OccurredAt: time.Now(),
	}
}

// Producer handles publishing behavioral events to Kafka
type Producer struct {
	writer *kafka.Writer
}

// Consumer handles consuming behavioral events from Kafka
type Consumer struct {
	reader *kafka.Reader
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		Async:        false, // Synchronous for reliability
	}

	return &Producer{writer: writer}
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg config.KafkaConfig, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     groupID,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
		MaxWait:     1 * time.Second,
		StartOffset: kafka.LastOffset,
	})

	return &Consumer{reader: reader}
}

// PublishEvent publishes a behavioral event to Kafka
func (p *Producer) PublishEvent(ctx context.Context, event BehavioralEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal behavioral event: %w", err)
	}

	// Key by activity so events of one type stay ordered on one partition;
	// the scheduler's per-type serialization depends on that.
	kafkaMsg := kafka.Message{
		Key:   []byte(event.Activity),
		Value: data,
		Headers: []kafka.Header{
			{Key: "activity", Value: []byte(event.Activity)},
		},
		Time: time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to write event to Kafka: %w", err)
	}

	log.Printf("Published behavioral event %s (%s)", event.ID, event.Activity)
	return nil
}

// ConsumeEvents consumes behavioral events from Kafka
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(BehavioralEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("Error reading event from Kafka: %v", err)
				continue
			}

			var event BehavioralEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("Error unmarshaling behavioral event: %v", err)
				continue
			}

			if err := handler(event); err != nil {
				log.Printf("Error handling behavioral event %s: %v", event.ID, err)
				continue
			}
		}
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// Package kafka streams calendar changes to an optional Kafka feed.
// The feed is strictly fire-and-forget: the HTTP API never waits on it
// and never fails because of it.
package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"family-calendar/internal/models"

	"github.com/segmentio/kafka-go"
)

const (
	TopicEventCreated = "calendar.event.created"
	TopicEventUpdated = "calendar.event.updated"
	TopicEventDeleted = "calendar.event.deleted"
)

// Topics lists every topic the producer writes to.
var Topics = []string{TopicEventCreated, TopicEventUpdated, TopicEventDeleted}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// PublishEventCreated streams a freshly created event to the feed
func (p *Producer) PublishEventCreated(event models.Event) error {
	return p.publish(TopicEventCreated, event)
}

// PublishEventUpdated streams the replaced row after an update
func (p *Producer) PublishEventUpdated(event models.Event) error {
	return p.publish(TopicEventUpdated, event)
}

// PublishEventDeleted streams the last known row of a deleted event
func (p *Producer) PublishEventDeleted(event models.Event) error {
	return p.publish(TopicEventDeleted, event)
}

func (p *Producer) publish(topic string, event models.Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(strconv.FormatInt(event.ID, 10)),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// Noop is the feed used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishEventCreated(models.Event) error { return nil }
func (Noop) PublishEventUpdated(models.Event) error { return nil }
func (Noop) PublishEventDeleted(models.Event) error { return nil }

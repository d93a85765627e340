package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	HeaderContentType = "content-type"
	HeaderEventType   = "event-type"
)

// Event is an integration event that names its own type.
type Event interface {
	EventType() string
}

// Producer publishes storefront events as JSON. Each event goes to the
// topic registered for its type, or to the default topic.
type Producer struct {
	writer       *kafka.Writer
	defaultTopic string
	topics       map[string]string
	now          func() time.Time
}

// NewProducer routes events by type through topics. Unlisted types, and
// values that are not an Event, go to defaultTopic.
func NewProducer(brokers []string, defaultTopic string, topics map[string]string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, defaultTopic, topics)
}

func newProducer(writer *kafka.Writer, defaultTopic string, topics map[string]string) *Producer {
	routes := make(map[string]string, len(topics))
	for eventType, topic := range topics {
		if topic != "" {
			routes[eventType] = topic
		}
	}
	return &Producer{writer: writer, defaultTopic: defaultTopic, topics: routes, now: time.Now}
}

// Publish writes event keyed by key, so events of one order stay on one
// partition.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	msg, err := p.message(key, event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// TopicFor returns the topic events of eventType are written to.
func (p *Producer) TopicFor(eventType string) string {
	if topic, ok := p.topics[eventType]; ok {
		return topic
	}
	return p.defaultTopic
}

func (p *Producer) message(key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	var eventType string
	if e, ok := event.(Event); ok {
		eventType = e.EventType()
	}

	headers := []kafka.Header{{Key: HeaderContentType, Value: []byte("application/json")}}
	if eventType != "" {
		headers = append(headers, kafka.Header{Key: HeaderEventType, Value: []byte(eventType)})
	}

	msg := kafka.Message{
		Topic:   p.TopicFor(eventType),
		Value:   data,
		Time:    p.now(),
		Headers: headers,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

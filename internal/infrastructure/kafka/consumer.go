package kafka

import (
	"context"

	"github.com/example/festisolde/internal/logging"
	"github.com/segmentio/kafka-go"
)

var logger = logging.New("kafka")

type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads a topic as part of a consumer group. Offsets are committed
// after the handler returns, whether it failed or not.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("fetch message")
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			logger.Error().Err(err).
				Str("key", string(msg.Key)).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("handle message")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("commit offset")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

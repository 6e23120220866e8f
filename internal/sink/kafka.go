package sink

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"basesignals/internal/model"
)

// KafkaSink publishes each bundle to a topic keyed by address, so downstream
// consumers see the latest signals per address in partition order.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Deliver(ctx context.Context, signals model.UserSignals) error {
	payload, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(signals.Address),
		Value: payload,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// Package kafka mirrors broadcast events to a Kafka topic so
// consumers outside the process (analytics, search indexing) can
// follow content updates. Live delivery never depends on it.
package kafka

import (
	"context"
	"encoding/json"

	"social-service/internal/websocket"

	"github.com/IBM/sarama"
)

type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventProducer(brokers []string, topic string) (*EventProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "social-service"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &EventProducer{producer: producer, topic: topic}, nil
}

// Publish sends the event keyed by its type, so one event type keeps
// per-partition ordering.
func (p *EventProducer) Publish(ctx context.Context, event *websocket.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Type),
		Value: sarama.ByteEncoder(data),
	})
	return err
}

func (p *EventProducer) Close() error {
	return p.producer.Close()
}

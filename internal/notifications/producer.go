package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"tickethub/internal/orders"
	"tickethub/internal/shared/config"
	"tickethub/pkg/logger"
)

// Producer publishes order confirmations to Kafka. It satisfies
// orders.ConfirmationPublisher so the purchase path never imports sarama.
type Producer interface {
	PublishOrderConfirmation(ctx context.Context, confirmation orders.OrderConfirmation) error
	// PublishDeadLetter parks an envelope the consumer could not process.
	PublishDeadLetter(envelope *ConfirmationEnvelope) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	dlqTopic string
}

func NewKafkaProducer(cfg config.KafkaConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("kafka producer ready", "brokers", cfg.Brokers, "topic", cfg.OrdersTopic)
	return &kafkaProducer{
		producer: producer,
		topic:    cfg.OrdersTopic,
		dlqTopic: cfg.DeadLetterTopic,
	}, nil
}

func (p *kafkaProducer) PublishOrderConfirmation(ctx context.Context, confirmation orders.OrderConfirmation) error {
	envelope := NewConfirmationEnvelope(confirmation)
	return p.send(p.topic, envelope)
}

func (p *kafkaProducer) PublishDeadLetter(envelope *ConfirmationEnvelope) error {
	envelope.Attempts++
	return p.send(p.dlqTopic, envelope)
}

func (p *kafkaProducer) send(topic string, envelope *ConfirmationEnvelope) error {
	value, err := envelope.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(envelope.PartitionKey()),
		Value:     sarama.ByteEncoder(value),
		Timestamp: envelope.EnqueuedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send confirmation to Kafka: %w", err)
	}

	logger.GetDefault().Info("order confirmation published",
		"topic", topic,
		"partition", partition,
		"offset", offset,
		"order_ref", envelope.Confirmation.OrderRef,
	)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}

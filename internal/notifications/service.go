package notifications

import (
	"context"

	"tickethub/internal/orders"
	"tickethub/internal/shared/config"
	"tickethub/pkg/logger"
)

// Pipeline owns the Kafka producer and consumer for order confirmations.
// When Kafka is disabled both sides are nil and Publisher returns nil,
// which the orders service treats as "no notifications".
type Pipeline struct {
	producer Producer
	consumer *Consumer
}

func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	if !cfg.Kafka.Enabled {
		logger.GetDefault().Info("kafka disabled, order confirmations will not be sent")
		return &Pipeline{}, nil
	}

	producer, err := NewKafkaProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	sender, err := NewSMTPSender(cfg.Email)
	if err != nil {
		logger.GetDefault().Warn("SMTP unavailable, falling back to log sender", "reason", err)
		sender = NewLogSender()
	}

	consumer, err := NewConsumer(cfg.Kafka, sender, producer)
	if err != nil {
		producer.Close()
		return nil, err
	}

	return &Pipeline{producer: producer, consumer: consumer}, nil
}

// Publisher exposes the producer for injection into the orders service.
func (p *Pipeline) Publisher() orders.ConfirmationPublisher {
	if p.producer == nil {
		return nil
	}
	return p.producer
}

func (p *Pipeline) Start(ctx context.Context) {
	if p.consumer != nil {
		p.consumer.Start(ctx)
	}
}

func (p *Pipeline) Close() {
	if p.consumer != nil {
		if err := p.consumer.Stop(); err != nil {
			logger.GetDefault().Warn("failed to stop notification consumer", "error", err)
		}
	}
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			logger.GetDefault().Warn("failed to close kafka producer", "error", err)
		}
	}
}

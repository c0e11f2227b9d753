package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"tickethub/internal/orders"
	"tickethub/internal/shared/config"
	"tickethub/pkg/logger"
)

const (
	consumerMaxRetries   = 3
	consumerRetryBackoff = time.Second
)

// Consumer drains the orders topic and delivers confirmation emails.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topics        []string
	workers       int
	sender        EmailSender
	deadLetter    Producer
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewConsumer(cfg config.KafkaConfig, sender EmailSender, deadLetter Producer) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	workers := cfg.ConsumerWorkers
	if workers < 1 {
		workers = 1
	}

	return &Consumer{
		consumerGroup: consumerGroup,
		topics:        []string{cfg.OrdersTopic},
		workers:       workers,
		sender:        sender,
		deadLetter:    deadLetter,
	}, nil
}

// Start launches the consumer workers. It returns immediately; workers
// run until Stop is called.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.consumerGroup.Errors() {
			logger.GetDefault().Warn("consumer group error", "error", err)
		}
	}()

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	logger.GetDefault().Info("notification consumers started", "workers", c.workers, "topics", c.topics)
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	handler := &confirmationHandler{consumer: c, workerID: workerID}
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
				logger.GetDefault().Warn("consumer worker error", "worker", workerID, "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return c.consumerGroup.Close()
}

type confirmationHandler struct {
	consumer *Consumer
	workerID int
}

func (h *confirmationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *confirmationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *confirmationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			h.processMessage(session.Context(), message)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// processMessage never returns an error: a confirmation that cannot be
// delivered goes to the dead letter topic instead of blocking the claim.
func (h *confirmationHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var envelope ConfirmationEnvelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		logger.GetDefault().Warn("dropping malformed confirmation message",
			"worker", h.workerID,
			"topic", message.Topic,
			"offset", message.Offset,
			"error", err,
		)
		return
	}

	if err := h.sendWithRetry(ctx, envelope.Confirmation); err != nil {
		logger.GetDefault().Warn("confirmation delivery failed, dead lettering",
			"worker", h.workerID,
			"order_ref", envelope.Confirmation.OrderRef,
			"error", err,
		)
		if h.consumer.deadLetter != nil {
			if dlqErr := h.consumer.deadLetter.PublishDeadLetter(&envelope); dlqErr != nil {
				logger.GetDefault().ErrorWithContext(ctx, "failed to dead letter confirmation", dlqErr, map[string]interface{}{
					"order_ref": envelope.Confirmation.OrderRef,
				})
			}
		}
	}
}

func (h *confirmationHandler) sendWithRetry(ctx context.Context, confirmation orders.OrderConfirmation) error {
	var lastErr error
	for attempt := 0; attempt <= consumerMaxRetries; attempt++ {
		if attempt > 0 {
			delay := consumerRetryBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = h.consumer.sender.SendOrderConfirmation(ctx, confirmation)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

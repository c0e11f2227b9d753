package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tickethub/internal/orders"
)

// ConfirmationEnvelope is the wire format for order confirmations on Kafka.
// Attempts is bumped each time the message is re-published to the dead
// letter topic so poison messages can be spotted.
type ConfirmationEnvelope struct {
	ID           uuid.UUID                `json:"id"`
	Confirmation orders.OrderConfirmation `json:"confirmation"`
	Attempts     int                      `json:"attempts"`
	EnqueuedAt   time.Time                `json:"enqueued_at"`
}

func NewConfirmationEnvelope(confirmation orders.OrderConfirmation) *ConfirmationEnvelope {
	return &ConfirmationEnvelope{
		ID:           uuid.New(),
		Confirmation: confirmation,
		EnqueuedAt:   time.Now(),
	}
}

func (e *ConfirmationEnvelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all confirmations for one buyer to the same
// partition so their emails arrive in purchase order.
func (e *ConfirmationEnvelope) PartitionKey() string {
	if e.Confirmation.UserID != "" {
		return e.Confirmation.UserID
	}
	return e.Confirmation.OrderRef
}

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, EventStatusDraft.CanTransitionTo(EventStatusPublished))
	assert.True(t, EventStatusDraft.CanTransitionTo(EventStatusCancelled))
	assert.False(t, EventStatusDraft.CanTransitionTo(EventStatusCompleted))

	assert.True(t, EventStatusPublished.CanTransitionTo(EventStatusCancelled))
	assert.True(t, EventStatusPublished.CanTransitionTo(EventStatusCompleted))
	assert.False(t, EventStatusPublished.CanTransitionTo(EventStatusDraft))

	// Terminal states go nowhere.
	assert.False(t, EventStatusCancelled.CanTransitionTo(EventStatusPublished))
	assert.False(t, EventStatusCompleted.CanTransitionTo(EventStatusPublished))
}

func TestOnlyPublishedEventsAcceptPurchases(t *testing.T) {
	assert.True(t, EventStatusPublished.CanAcceptPurchases())
	assert.False(t, EventStatusDraft.CanAcceptPurchases())
	assert.False(t, EventStatusCancelled.CanAcceptPurchases())
	assert.False(t, EventStatusCompleted.CanAcceptPurchases())
}

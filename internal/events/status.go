package events

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// CanBeUpdated reports whether the event is in a state that allows edits.
func (s EventStatus) CanBeUpdated() bool {
	return s == EventStatusDraft || s == EventStatusPublished
}

// CanAcceptPurchases reports whether tickets for the event can be sold.
func (s EventStatus) CanAcceptPurchases() bool {
	return s == EventStatusPublished
}

// ValidTransitions returns the statuses this status may move to.
func (s EventStatus) ValidTransitions() []EventStatus {
	switch s {
	case EventStatusDraft:
		return []EventStatus{EventStatusPublished, EventStatusCancelled}
	case EventStatusPublished:
		return []EventStatus{EventStatusCancelled, EventStatusCompleted}
	default:
		return nil
	}
}

func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	for _, allowed := range s.ValidTransitions() {
		if allowed == target {
			return true
		}
	}
	return false
}
